// Package summary computes derived facets of a dataset from its data
// records: counts, date extrema, species, observed variables and the
// categories those variables belong to in the term catalogue.
package summary

import (
	"slices"

	"github.com/eufgis/fgrdb/pkg/record"
)

// DefaultQuantClasses are term classes of quantitative variables.
var DefaultQuantClasses = []string{
	"_class_quantity",
	"_class_quantity_averaged",
	"_class_quantity_calculated",
	"_class_quantity_statistic",
}

// Accumulator collects facets of data records in one pass.
// It is not safe for concurrent use.
type Accumulator struct {
	count   int
	fields  map[string]struct{}
	species map[string]struct{}
	dateMin string
	dateMax string
}

// NewAccumulator creates an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		fields:  make(map[string]struct{}),
		species: make(map[string]struct{}),
	}
}

// Add accounts for one data record.
func (a *Accumulator) Add(d record.Data) {
	a.count++
	for _, f := range d.Fields() {
		a.fields[f] = struct{}{}
	}
	if d.Species != "" {
		a.species[d.Species] = struct{}{}
	}
	if d.Date != "" {
		if a.dateMin == "" || d.Date < a.dateMin {
			a.dateMin = d.Date
		}
		if d.Date > a.dateMax {
			a.dateMax = d.Date
		}
	}
}

// Count returns the number of added records.
func (a *Accumulator) Count() int {
	return a.count
}

// Fields returns sorted names of all fields seen, reserved excluded.
func (a *Accumulator) Fields() []string {
	return sortedKeys(a.fields)
}

// Species returns sorted distinct species names.
func (a *Accumulator) Species() []string {
	return sortedKeys(a.species)
}

// DateRange returns the earliest and the latest std_date.
func (a *Accumulator) DateRange() (string, string) {
	return a.dateMin, a.dateMax
}

// Summary is the set of derived dataset fields. Empty values are
// omitted from its JSON form.
type Summary struct {
	Count      int      `json:"count"`
	DateStart  string   `json:"std_date_start,omitempty"`
	DateEnd    string   `json:"std_date_end,omitempty"`
	Classes    []string `json:"_classes,omitempty"`
	Domains    []string `json:"_domain,omitempty"`
	Tags       []string `json:"_tag,omitempty"`
	Subjects   []string `json:"_subject,omitempty"`
	Species    []string `json:"species_list,omitempty"`
	Terms      []string `json:"std_terms,omitempty"`
	TermsQuant []string `json:"std_terms_quant,omitempty"`
}

// Resolve converts accumulated facets into a Summary. Categories are
// taken from terms whose identifier is one of the observed fields.
// Fields of terms with a class from quantClasses form the quantitative
// subset.
func Resolve(acc *Accumulator, terms []record.Term, quantClasses []string) Summary {
	if len(quantClasses) == 0 {
		quantClasses = DefaultQuantClasses
	}
	fields := acc.Fields()
	res := Summary{
		Count:   acc.Count(),
		Species: acc.Species(),
		Terms:   fields,
	}
	res.DateStart, res.DateEnd = acc.DateRange()

	classes := make(map[string]struct{})
	domains := make(map[string]struct{})
	tags := make(map[string]struct{})
	subjects := make(map[string]struct{})
	quant := make(map[string]struct{})
	for _, t := range terms {
		if _, ok := slices.BinarySearch(fields, t.GID); !ok {
			continue
		}
		if t.Class != "" {
			classes[t.Class] = struct{}{}
			if slices.Contains(quantClasses, t.Class) {
				quant[t.GID] = struct{}{}
			}
		}
		addAll(domains, t.Domains)
		addAll(tags, t.Tags)
		addAll(subjects, t.Subjects)
	}
	res.Classes = sortedKeys(classes)
	res.Domains = sortedKeys(domains)
	res.Tags = sortedKeys(tags)
	res.Subjects = sortedKeys(subjects)
	res.TermsQuant = sortedKeys(quant)
	return res
}

// Fields returns derived fields that have a value, keyed by their
// dataset field names. Empty strings and empty lists are left out.
func (s Summary) Fields() map[string]any {
	res := map[string]any{record.FieldCount: s.Count}
	setStr := func(k, v string) {
		if v != "" {
			res[k] = v
		}
	}
	setList := func(k string, v []string) {
		if len(v) > 0 {
			res[k] = v
		}
	}
	setStr(record.FieldDateStart, s.DateStart)
	setStr(record.FieldDateEnd, s.DateEnd)
	setList(record.FieldClasses, s.Classes)
	setList(record.FieldDomain, s.Domains)
	setList(record.FieldTag, s.Tags)
	setList(record.FieldSubject, s.Subjects)
	setList(record.FieldSpeciesList, s.Species)
	setList(record.FieldTerms, s.Terms)
	setList(record.FieldTermsQuant, s.TermsQuant)
	return res
}

// Apply merges non-empty derived fields into the dataset. Fields that
// resolved to empty keep their stored values.
func (s Summary) Apply(d *record.Dataset) {
	count := s.Count
	d.Count = &count
	if s.DateStart != "" {
		d.DateStart = s.DateStart
	}
	if s.DateEnd != "" {
		d.DateEnd = s.DateEnd
	}
	apply := func(dst *record.Strings, v []string) {
		if len(v) > 0 {
			*dst = slices.Clone(v)
		}
	}
	apply(&d.Classes, s.Classes)
	apply(&d.Domains, s.Domains)
	apply(&d.Tags, s.Tags)
	apply(&d.Subjects, s.Subjects)
	apply(&d.Species, s.Species)
	apply(&d.Terms, s.Terms)
	apply(&d.TermsQuant, s.TermsQuant)
}

func addAll(set map[string]struct{}, vals []string) {
	for _, v := range vals {
		if v != "" {
			set[v] = struct{}{}
		}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	res := make([]string, 0, len(set))
	for k := range set {
		res = append(res, k)
	}
	slices.Sort(res)
	return res
}
