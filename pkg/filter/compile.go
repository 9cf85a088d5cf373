package filter

import (
	"encoding/json"
	"log/slog"
	"slices"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Range is the shape of a range parameter. Bounds are inclusive unless
// the corresponding flag is set to false.
//
// Bounds can also be given as min and max, or as std_date_start and
// std_date_end. Start and end take precedence over them.
type Range struct {
	Start        any   `mapstructure:"start"`
	End          any   `mapstructure:"end"`
	IncludeStart *bool `mapstructure:"include_start"`
	IncludeEnd   *bool `mapstructure:"include_end"`

	Min       any `mapstructure:"min"`
	Max       any `mapstructure:"max"`
	DateStart any `mapstructure:"std_date_start"`
	DateEnd   any `mapstructure:"std_date_end"`
}

// normalize moves alias bounds to Start and End.
func (r *Range) normalize() {
	r.Start = firstBound(r.Start, r.Min, r.DateStart)
	r.End = firstBound(r.End, r.Max, r.DateEnd)
	r.Min, r.Max, r.DateStart, r.DateEnd = nil, nil, nil, nil
}

func firstBound(vals ...any) any {
	for _, v := range vals {
		if !isEmpty(v) {
			return v
		}
	}
	return nil
}

// Selector is the shape of a multi-value category parameter.
type Selector struct {
	Items []string `mapstructure:"items"`
	DoAll bool     `mapstructure:"doAll"`
}

// Compiler converts query parameters into predicates according to
// a Schema.
type Compiler struct {
	schema   Schema
	language string
}

// Option modifies a Compiler.
type Option func(*Compiler)

// OptLanguage restricts text search of multilingual fields to one
// language code.
func OptLanguage(lang string) Option {
	return func(c *Compiler) {
		c.language = strings.TrimSpace(lang)
	}
}

// New creates a Compiler for a schema.
func New(schema Schema, opts ...Option) Compiler {
	res := Compiler{schema: schema}
	for _, opt := range opts {
		opt(&res)
	}
	return res
}

// Compile is a shortcut for New(schema).Compile(params).
func Compile(schema Schema, params map[string]any) []Predicate {
	return New(schema).Compile(params)
}

// Compile returns one predicate per recognised parameter that has a
// non-empty value of the right shape. Predicates are ordered by
// parameter name.
func (c Compiler) Compile(params map[string]any) []Predicate {
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	slices.Sort(names)

	var res []Predicate
	for _, name := range names {
		f, ok := c.schema[name]
		if !ok {
			continue
		}
		v := params[name]
		if isEmpty(v) {
			continue
		}
		p, ok := c.compileField(name, f, v)
		if !ok {
			slog.Debug("Skipping filter of unexpected shape",
				"field", name, "value", v)
			continue
		}
		res = append(res, p)
	}
	return res
}

func (c Compiler) compileField(name string, f Field, v any) (Predicate, bool) {
	target := name
	if f.Target != "" {
		target = f.Target
	}

	switch f.Semantics {
	case SemIn:
		vals, ok := toStrings(v)
		if !ok || len(vals) == 0 {
			return Predicate{}, false
		}
		return In(target, vals...), true

	case SemLike:
		s, ok := v.(string)
		if !ok {
			return Predicate{}, false
		}
		return Like(target, s), true

	case SemText:
		s, ok := v.(string)
		if !ok {
			return Predicate{}, false
		}
		p := Text(target, s)
		if len(p.Tokens) == 0 {
			return Predicate{}, false
		}
		p.Language = c.language
		return p, true

	case SemRange:
		var r Range
		if err := mapstructure.Decode(v, &r); err != nil {
			return Predicate{}, false
		}
		r.normalize()
		lower, ok := toBound(r.Start, r.IncludeStart)
		if !ok {
			return Predicate{}, false
		}
		upper, ok := toBound(r.End, r.IncludeEnd)
		if !ok || (lower == nil && upper == nil) {
			return Predicate{}, false
		}
		p := InRange(target, lower, upper)
		if f.UpperTarget != "" {
			p.UpperField = f.UpperTarget
		}
		return p, true

	case SemSelect:
		var sel Selector
		if err := mapstructure.Decode(v, &sel); err != nil {
			return Predicate{}, false
		}
		// an empty selection carries no constraint
		if len(sel.Items) == 0 {
			return Predicate{}, false
		}
		return Select(target, sel.DoAll, sel.Items...), true
	}
	return Predicate{}, false
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

func toStrings(v any) ([]string, bool) {
	switch t := v.(type) {
	case string:
		return []string{t}, true
	case []string:
		return t, true
	case []any:
		res := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			res = append(res, s)
		}
		return res, true
	}
	return nil, false
}

// toBound returns nil bound for a missing value, false for a value
// that cannot be compared.
func toBound(v any, inclusive *bool) (*Bound, bool) {
	incl := inclusive == nil || *inclusive
	switch t := v.(type) {
	case nil:
		return nil, true
	case string:
		if t == "" {
			return nil, true
		}
		return &Bound{Value: t, Inclusive: incl}, true
	case float64:
		return &Bound{Value: t, Inclusive: incl}, true
	case float32:
		return &Bound{Value: float64(t), Inclusive: incl}, true
	case int:
		return &Bound{Value: float64(t), Inclusive: incl}, true
	case int64:
		return &Bound{Value: float64(t), Inclusive: incl}, true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, false
		}
		return &Bound{Value: f, Inclusive: incl}, true
	}
	return nil, false
}
