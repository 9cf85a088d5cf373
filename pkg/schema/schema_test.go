package schema_test

import (
	"strings"
	"testing"

	"github.com/eufgis/fgrdb/pkg/schema"
	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	tests := []struct {
		model schema.Indexer
		table string
	}{
		{schema.Dataset{}, "datasets"},
		{schema.Data{}, "data"},
		{schema.Term{}, "terms"},
	}
	for _, v := range tests {
		assert.Equal(t, v.table, v.model.TableName())
	}
}

func TestIndexes(t *testing.T) {
	idx := schema.Indexes()
	assert.Len(t, idx, 3)
	for _, v := range idx {
		assert.True(t, strings.HasPrefix(v, "CREATE INDEX IF NOT EXISTS"), v)
	}
	assert.Contains(t, idx[0], "ON datasets USING GIN (doc)")
	assert.Contains(t, idx[1], "ON data USING GIN (doc)")
}

func TestAllModels(t *testing.T) {
	models := schema.AllModels()
	assert.Len(t, models, 3)
	for _, m := range models {
		_, ok := m.(schema.Indexer)
		assert.True(t, ok)
	}
}
