// Package species matches scientific names found in data records with
// names declared by dataset markers. Names that differ only by
// authorship, spacing or rank notation are matched by their canonical
// botanical form.
// This is a pure package, parsing is computation, not I/O.
package species

import (
	"runtime"
	"strings"

	"github.com/gnames/gnlib/ent/nomcode"
	"github.com/gnames/gnparser"
)

// Canonicalizer returns canonical forms of scientific names.
type Canonicalizer interface {
	// Canonical returns the simple canonical form of a name, or the
	// trimmed name if it cannot be parsed. Safe for concurrent use.
	Canonical(name string) string

	// Close releases parsers. The Canonicalizer cannot be used after.
	Close()
}

// Pool is a Canonicalizer backed by a pool of botanical parsers.
type Pool struct {
	ch chan gnparser.GNparser
}

// NewPool creates a pool of jobsNum parsers. If jobsNum is 0,
// runtime.NumCPU() parsers are created.
func NewPool(jobsNum int) *Pool {
	if jobsNum <= 0 {
		jobsNum = runtime.NumCPU()
	}
	cfg := gnparser.NewConfig(gnparser.OptCode(nomcode.Botanical))
	return &Pool{ch: gnparser.NewPool(cfg, jobsNum)}
}

// Canonical implements Canonicalizer.
func (p *Pool) Canonical(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	gnp := <-p.ch
	res := gnp.ParseName(name)
	p.ch <- gnp

	if !res.Parsed || res.Canonical == nil {
		return name
	}
	return res.Canonical.Simple
}

// Close implements Canonicalizer.
func (p *Pool) Close() {
	if p.ch == nil {
		return
	}
	close(p.ch)
	for range p.ch {
	}
	p.ch = nil
}

// Matcher finds which declared name a species name refers to.
type Matcher struct {
	c        Canonicalizer
	declared []string
	canon    map[string]string
}

// NewMatcher creates a Matcher for declared names. If several declared
// names share a canonical form, the first one wins. With nil
// Canonicalizer only exact matches are found.
func NewMatcher(c Canonicalizer, declared []string) *Matcher {
	res := &Matcher{
		c:        c,
		declared: declared,
		canon:    make(map[string]string, len(declared)),
	}
	if c == nil {
		return res
	}
	for _, v := range declared {
		cn := c.Canonical(v)
		if _, ok := res.canon[cn]; !ok {
			res.canon[cn] = v
		}
	}
	return res
}

// Match returns the declared name for a species name. An exact match
// is preferred, then the canonical forms are compared.
func (m *Matcher) Match(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	for _, v := range m.declared {
		if v == name {
			return v, true
		}
	}
	if m.c == nil {
		return "", false
	}
	res, ok := m.canon[m.c.Canonical(name)]
	return res, ok
}
