package filter

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/patrickmn/go-cache"
)

// likeCache keeps compiled LIKE patterns of recent searches.
var likeCache = cache.New(10*time.Minute, 20*time.Minute)

// Tokens is the text analyzer. It lower-cases the text, splits it on
// everything that is not a letter or a digit and removes duplicates.
func Tokens(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var res []string
	for _, w := range words {
		if !slices.Contains(res, w) {
			res = append(res, w)
		}
	}
	return res
}

// Matches returns true if the document satisfies predicates chained
// by op. Empty predicate list never matches.
func Matches(doc map[string]any, preds []Predicate, op Op) bool {
	if len(preds) == 0 {
		return false
	}
	for _, p := range preds {
		ok := p.Match(doc)
		if op == Or && ok {
			return true
		}
		if op != Or && !ok {
			return false
		}
	}
	return op != Or
}

// Match evaluates the predicate against a flat document.
func (p Predicate) Match(doc map[string]any) bool {
	v, ok := doc[p.Field]
	if !ok && p.Kind != KindRange {
		return false
	}

	switch p.Kind {
	case KindIn, KindAny:
		for _, s := range valueStrings(v) {
			if slices.Contains(p.Values, s) {
				return true
			}
		}
		return false

	case KindAll:
		have := valueStrings(v)
		for _, s := range p.Values {
			if !slices.Contains(have, s) {
				return false
			}
		}
		return true

	case KindLike:
		s, ok := v.(string)
		return ok && likeRegexp(p.Pattern).MatchString(s)

	case KindText:
		have := Tokens(strings.Join(textValues(v, p.Language), " "))
		for _, t := range p.Tokens {
			if slices.Contains(have, t) {
				return true
			}
		}
		return false

	case KindRange:
		if p.Lower != nil && !inBound(doc[p.Field], p.Lower, true) {
			return false
		}
		upperField := p.UpperField
		if upperField == "" {
			upperField = p.Field
		}
		if p.Upper != nil && !inBound(doc[upperField], p.Upper, false) {
			return false
		}
		return p.Lower != nil || p.Upper != nil
	}
	return false
}

// valueStrings returns string values of a scalar or an array.
func valueStrings(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []string:
		return t
	case []any:
		res := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				res = append(res, s)
			}
		}
		return res
	}
	return nil
}

// textValues flattens a string, a list of strings or a multilingual
// object into texts.
func textValues(v any, lang string) []string {
	switch t := v.(type) {
	case map[string]any:
		if lang != "" {
			if s, ok := t[lang].(string); ok {
				return []string{s}
			}
			return nil
		}
		var res []string
		for _, e := range t {
			if s, ok := e.(string); ok {
				res = append(res, s)
			}
		}
		return res
	case map[string]string:
		if lang != "" {
			return []string{t[lang]}
		}
		res := make([]string, 0, len(t))
		for _, s := range t {
			res = append(res, s)
		}
		return res
	}
	return valueStrings(v)
}

// inBound compares a document value with a bound. String bounds compare
// byte-wise with strings, numeric bounds compare with numbers or with
// strings that parse as numbers.
func inBound(v any, b *Bound, lower bool) bool {
	var cmp int
	switch bv := b.Value.(type) {
	case string:
		s, ok := v.(string)
		if !ok {
			return false
		}
		cmp = strings.Compare(s, bv)
	case float64:
		f, ok := toFloat(v)
		if !ok {
			return false
		}
		switch {
		case f < bv:
			cmp = -1
		case f > bv:
			cmp = 1
		}
	default:
		return false
	}

	if cmp == 0 {
		return b.Inclusive
	}
	if lower {
		return cmp > 0
	}
	return cmp < 0
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	}
	return 0, false
}

// likeRegexp returns the compiled form of a LIKE pattern.
func likeRegexp(pattern string) *regexp.Regexp {
	if re, ok := likeCache.Get(pattern); ok {
		return re.(*regexp.Regexp)
	}
	re := compileLike(pattern)
	likeCache.Set(pattern, re, cache.DefaultExpiration)
	return re
}

// compileLike converts an SQL LIKE pattern into an anchored regular
// expression. '%' matches any run of characters, '_' matches one
// character, '\' escapes the next character.
func compileLike(pattern string) *regexp.Regexp {
	var sb strings.Builder
	sb.WriteString(`(?s)^`)
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			sb.WriteString(regexp.QuoteMeta(string(r)))
			escaped = false
		case r == '\\':
			escaped = true
		case r == '%':
			sb.WriteString(`.*`)
		case r == '_':
			sb.WriteString(`.`)
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	if escaped {
		sb.WriteString(`\\`)
	}
	sb.WriteString(`$`)
	return regexp.MustCompile(sb.String())
}
