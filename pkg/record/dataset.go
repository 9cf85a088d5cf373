package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// Dataset field names used by summaries and filters.
const (
	FieldProject        = "std_project"
	FieldDataset        = "std_dataset"
	FieldDateSubmission = "std_date_submission"
	FieldTitle          = "_title"
	FieldDescription    = "_description"
	FieldCitation       = "_citation"
	FieldDomain         = "_domain"
	FieldSubject        = "_subject"
	FieldTermsKey       = "std_terms_key"
	FieldTermsSummary   = "std_terms_summary"
	FieldCount          = "count"
	FieldDateStart      = "std_date_start"
	FieldDateEnd        = "std_date_end"
	FieldClasses        = "_classes"
	FieldTag            = "_tag"
	FieldSpeciesList    = "species_list"
	FieldTerms          = "std_terms"
	FieldTermsQuant     = "std_terms_quant"
	FieldMarkers        = "std_dataset_markers"
)

// Kind tells how a dataset is summarised and how its data are shaped.
type Kind int

const (
	// Standard datasets are summarised by an arbitrary declared pivot.
	Standard Kind = iota
	// Genetic datasets declare markers and are summarised by species.
	Genetic
)

// String returns the name of the kind.
func (k Kind) String() string {
	if k == Genetic {
		return "genetic"
	}
	return "standard"
}

// Marker declares a data field that carries a genetic index measured
// for a species.
type Marker struct {
	Species        string `json:"species"`
	GenIndex       string `json:"chr_GenIndex"`
	MarkerType     string `json:"chr_MarkerType"`
	NumberOfLoci   int    `json:"chr_NumberOfLoci"`
	SequenceLength *int   `json:"chr_SequenceLength,omitempty"`
	GenoTech       string `json:"chr_GenoTech"`
}

// Metadata returns the descriptive part of the marker keyed by its
// field names. Sequence length is present only if declared.
func (m Marker) Metadata() map[string]any {
	res := map[string]any{
		"chr_MarkerType":   m.MarkerType,
		"chr_NumberOfLoci": m.NumberOfLoci,
		"chr_GenoTech":     m.GenoTech,
	}
	if m.SequenceLength != nil {
		res["chr_SequenceLength"] = *m.SequenceLength
	}
	return res
}

// Dataset is the metadata of a data submission together with its
// cached summary.
type Dataset struct {
	Key string `json:"_key,omitempty"`
	Rev string `json:"_rev,omitempty"`

	// Project is the code of the project the dataset belongs to.
	Project string `json:"std_project"`

	// Code is the dataset acronym.
	Code string `json:"std_dataset"`

	// DateSubmission is the submission date (YYYYMMDD).
	DateSubmission string `json:"std_date_submission"`

	Title       Text `json:"_title,omitempty"`
	Description Text `json:"_description,omitempty"`
	Citation    Text `json:"_citation,omitempty"`

	Domains  Strings `json:"_domain,omitempty"`
	Subjects Strings `json:"_subject,omitempty"`

	// TermsKey lists the fields that identify a data record.
	TermsKey Strings `json:"std_terms_key,omitempty"`

	// TermsSummary lists the fields data can be summarised by.
	TermsSummary Strings `json:"std_terms_summary,omitempty"`

	// Derived fields maintained by refresh.
	Count      *int    `json:"count,omitempty"`
	DateStart  string  `json:"std_date_start,omitempty"`
	DateEnd    string  `json:"std_date_end,omitempty"`
	Classes    Strings `json:"_classes,omitempty"`
	Tags       Strings `json:"_tag,omitempty"`
	Species    Strings `json:"species_list,omitempty"`
	Terms      Strings `json:"std_terms,omitempty"`
	TermsQuant Strings `json:"std_terms_quant,omitempty"`

	Markers []Marker `json:"std_dataset_markers,omitempty"`

	// Kind is decided once when the dataset is decoded or normalised.
	Kind Kind `json:"-"`

	// Attrs keeps fields without a typed counterpart.
	Attrs map[string]any `json:"-"`
}

var datasetFields = []string{
	FieldKey, FieldID, FieldRev, FieldProject, FieldDataset,
	FieldDateSubmission, FieldTitle, FieldDescription, FieldCitation,
	FieldDomain, FieldSubject, FieldTermsKey, FieldTermsSummary,
	FieldCount, FieldDateStart, FieldDateEnd, FieldClasses, FieldTag,
	FieldSpeciesList, FieldTerms, FieldTermsQuant, FieldMarkers,
}

// UnmarshalJSON decodes typed fields, collects the rest into Attrs
// and decides the Kind of the dataset.
func (d *Dataset) UnmarshalJSON(b []byte) error {
	type alias Dataset
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	attrs, err := extraAttrs(b, datasetFields)
	if err != nil {
		return err
	}
	a.Attrs = attrs
	*d = Dataset(a)
	d.Normalize()
	return nil
}

// MarshalJSON encodes the dataset as one flat document.
func (d Dataset) MarshalJSON() ([]byte, error) {
	doc, err := d.Doc()
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// Doc returns the dataset as a flat document.
func (d Dataset) Doc() (map[string]any, error) {
	type alias Dataset
	return docWithAttrs(alias(d), d.Attrs)
}

// Normalize sets the Kind according to declared markers.
func (d *Dataset) Normalize() {
	d.Kind = Standard
	if len(d.Markers) > 0 {
		d.Kind = Genetic
	}
}

// MarkersFor returns markers declared for a species. The match is exact.
func (d Dataset) MarkersFor(species string) []Marker {
	var res []Marker
	for _, v := range d.Markers {
		if v.Species == species {
			res = append(res, v)
		}
	}
	return res
}

// MarkerSpecies returns the distinct species that have markers, in
// the order of declaration.
func (d Dataset) MarkerSpecies() []string {
	var res []string
	for _, v := range d.Markers {
		if !slices.Contains(res, v.Species) {
			res = append(res, v.Species)
		}
	}
	return res
}

// IsPivot returns true if the field is declared as a key or summary
// field of the dataset.
func (d Dataset) IsPivot(field string) bool {
	return slices.Contains(d.TermsKey, field) ||
		slices.Contains(d.TermsSummary, field)
}

// Validate checks required descriptive fields.
func (d Dataset) Validate() error {
	var errs []error
	if d.Project == "" {
		errs = append(errs, fmt.Errorf("%s is required", FieldProject))
	}
	if d.Code == "" {
		errs = append(errs, fmt.Errorf("%s is required", FieldDataset))
	}
	if d.DateSubmission != "" && !datePattern.MatchString(d.DateSubmission) {
		errs = append(errs, fmt.Errorf("%s must be YYYY or YYYYMMDD",
			FieldDateSubmission))
	}
	for i, m := range d.Markers {
		if m.Species == "" || m.GenIndex == "" {
			errs = append(errs, fmt.Errorf(
				"%s[%d] needs species and chr_GenIndex", FieldMarkers, i))
		}
	}
	return errors.Join(errs...)
}
