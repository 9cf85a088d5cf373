// Package filter compiles declarative query parameters into typed search
// predicates.
//
// Compilation is permissive: fields that are unknown, absent, empty or of
// a wrong shape are skipped and never produce an error. Shape checks are
// done beforehand by Validate, which the route layer calls.
//
// Predicates are plain values. Storage backends render them into their
// own query language with bound parameters, and Match gives the reference
// semantics for in-memory evaluation.
package filter

import (
	"fmt"
	"strings"

	"github.com/eufgis/fgrdb/pkg/record"
)

// Semantics defines how a query parameter is matched against a field.
type Semantics int

const (
	// SemIn means exact membership in a list of values.
	SemIn Semantics = iota
	// SemLike means case-sensitive wildcard pattern match.
	SemLike
	// SemText means tokenized text search.
	SemText
	// SemRange means a range with optional inclusive bounds.
	SemRange
	// SemSelect means ALL/ANY set matching of a multi-value field.
	SemSelect
)

// Field describes a query parameter.
type Field struct {
	Semantics Semantics
	// Target is the document field, if it differs from the parameter name.
	Target string
	// UpperTarget is the field compared against the end of a range,
	// if it differs from Target.
	UpperTarget string
}

// Schema maps query parameter names to their matching semantics.
type Schema map[string]Field

// DatasetSchema is the set of filters available for datasets.
var DatasetSchema = Schema{
	record.FieldKey:     {Semantics: SemIn},
	record.FieldProject: {Semantics: SemIn},
	"std_dataset_group": {Semantics: SemIn},
	record.FieldSubject: {Semantics: SemIn},
	"_url":              {Semantics: SemIn},

	record.FieldDataset: {Semantics: SemLike},

	record.FieldTitle:       {Semantics: SemText},
	record.FieldDescription: {Semantics: SemText},
	record.FieldCitation:    {Semantics: SemText},
	record.FieldSpeciesList: {Semantics: SemText},

	record.FieldDateSubmission: {Semantics: SemRange},
	record.FieldCount:          {Semantics: SemRange},
	record.FieldDate: {
		Semantics:   SemRange,
		Target:      record.FieldDateStart,
		UpperTarget: record.FieldDateEnd,
	},

	record.FieldClasses:      {Semantics: SemSelect},
	record.FieldDomain:       {Semantics: SemSelect},
	record.FieldTag:          {Semantics: SemSelect},
	record.FieldTerms:        {Semantics: SemSelect},
	record.FieldTermsQuant:   {Semantics: SemSelect},
	record.FieldTermsKey:     {Semantics: SemSelect},
	record.FieldTermsSummary: {Semantics: SemSelect},
}

// DataSchema is the set of filters available for data records.
var DataSchema = Schema{
	record.FieldKey:       {Semantics: SemIn},
	record.FieldDatasetID: {Semantics: SemIn},
	record.FieldTreeCode:  {Semantics: SemIn},

	record.FieldGCUID: {Semantics: SemLike},

	record.FieldSpecies: {Semantics: SemText},

	record.FieldDate: {Semantics: SemRange},
}

// Op chains predicates together.
type Op string

const (
	// And requires all predicates to match.
	And Op = "AND"
	// Or requires at least one predicate to match.
	Or Op = "OR"
)

// ParseOp converts a string into Op. Empty string means And.
func ParseOp(s string) (Op, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(And):
		return And, nil
	case string(Or):
		return Or, nil
	}
	return And, InvalidOpError(s)
}

// Kind is the type of a compiled predicate.
type Kind int

const (
	KindIn Kind = iota
	KindLike
	KindText
	KindRange
	KindAll
	KindAny
)

// String returns the name of the predicate kind.
func (k Kind) String() string {
	switch k {
	case KindIn:
		return "IN"
	case KindLike:
		return "LIKE"
	case KindText:
		return "TEXT"
	case KindRange:
		return "RANGE"
	case KindAll:
		return "ALL"
	case KindAny:
		return "ANY"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Bound is one end of a range. Value is a string (compared
// lexicographically) or a float64 (compared numerically).
type Bound struct {
	Value     any
	Inclusive bool
}

// Predicate is one compiled search condition over a document field.
type Predicate struct {
	Kind  Kind
	Field string

	// Values are used by In, All and Any.
	Values []string

	// Pattern is used by Like.
	Pattern string

	// Tokens and Language are used by Text. Empty Language means
	// all languages of a multilingual field.
	Tokens   []string
	Language string

	// Lower and Upper are used by Range. UpperField is the field
	// Upper applies to, it is the same as Field by default.
	Lower      *Bound
	Upper      *Bound
	UpperField string
}

// String gives a readable form of the predicate for logs.
func (p Predicate) String() string {
	switch p.Kind {
	case KindLike:
		return fmt.Sprintf("%s LIKE %q", p.Field, p.Pattern)
	case KindText:
		return fmt.Sprintf("%s TOKENS %v", p.Field, p.Tokens)
	case KindRange:
		return fmt.Sprintf("%s RANGE %s..%s", p.Field,
			boundString(p.Lower), boundString(p.Upper))
	default:
		return fmt.Sprintf("%s %s %v", p.Field, p.Kind, p.Values)
	}
}

func boundString(b *Bound) string {
	if b == nil {
		return "*"
	}
	if b.Inclusive {
		return fmt.Sprintf("[%v]", b.Value)
	}
	return fmt.Sprintf("(%v)", b.Value)
}

// In creates a membership predicate.
func In(field string, values ...string) Predicate {
	return Predicate{Kind: KindIn, Field: field, Values: values}
}

// Like creates a wildcard predicate.
func Like(field, pattern string) Predicate {
	return Predicate{Kind: KindLike, Field: field, Pattern: pattern}
}

// Text creates a tokenized text predicate.
func Text(field, text string) Predicate {
	return Predicate{Kind: KindText, Field: field, Tokens: Tokens(text)}
}

// Select creates an ALL or ANY predicate.
func Select(field string, all bool, items ...string) Predicate {
	k := KindAny
	if all {
		k = KindAll
	}
	return Predicate{Kind: k, Field: field, Values: items}
}

// InRange creates a range predicate. A nil bound means the range is
// open on that side.
func InRange(field string, lower, upper *Bound) Predicate {
	return Predicate{
		Kind:       KindRange,
		Field:      field,
		Lower:      lower,
		Upper:      upper,
		UpperField: field,
	}
}
