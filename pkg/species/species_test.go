package species_test

import (
	"sync"
	"testing"

	"github.com/eufgis/fgrdb/pkg/species"
	"github.com/stretchr/testify/assert"
)

func TestCanonical(t *testing.T) {
	p := species.NewPool(2)
	defer p.Close()

	tests := []struct {
		msg, name, want string
	}{
		{"author", "Fagus sylvatica L.", "Fagus sylvatica"},
		{"plain", "Abies alba", "Abies alba"},
		{"spaces", "  Picea   abies ", "Picea abies"},
		{"infraspecies", "Pinus nigra subsp. laricio Maire", "Pinus nigra laricio"},
		{"empty", "", ""},
	}

	for _, v := range tests {
		assert.Equal(t, v.want, p.Canonical(v.name), v.msg)
	}
}

func TestCanonicalConcurrent(t *testing.T) {
	p := species.NewPool(0)
	defer p.Close()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "Quercus robur", p.Canonical("Quercus robur L."))
		}()
	}
	wg.Wait()
}

func TestMatcher(t *testing.T) {
	p := species.NewPool(1)
	defer p.Close()

	m := species.NewMatcher(p, []string{"Fagus sylvatica", "Abies alba Mill."})

	tests := []struct {
		msg, name, want string
		ok              bool
	}{
		{"exact", "Fagus sylvatica", "Fagus sylvatica", true},
		{"exact with author", "Abies alba Mill.", "Abies alba Mill.", true},
		{"canonical", "Fagus sylvatica L.", "Fagus sylvatica", true},
		{"declared has author", "Abies alba", "Abies alba Mill.", true},
		{"unknown", "Picea abies", "", false},
		{"empty", "", "", false},
	}

	for _, v := range tests {
		res, ok := m.Match(v.name)
		assert.Equal(t, v.ok, ok, v.msg)
		assert.Equal(t, v.want, res, v.msg)
	}
}

func TestMatcherExactOnly(t *testing.T) {
	m := species.NewMatcher(nil, []string{"Fagus sylvatica"})

	res, ok := m.Match("Fagus sylvatica")
	assert.True(t, ok)
	assert.Equal(t, "Fagus sylvatica", res)

	_, ok = m.Match("Fagus sylvatica L.")
	assert.False(t, ok)
}
