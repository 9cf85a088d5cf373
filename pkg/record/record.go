// Package record provides the documents of the catalogue: datasets,
// data (measurement) records and descriptor terms.
//
// Records have an open schema. Known fields are typed struct fields,
// everything else is kept in an explicit Attrs side-map and survives
// a decode/encode round trip unchanged.
package record

import (
	"encoding/json"
	"slices"
)

// Field names shared by datasets and data records.
const (
	FieldKey     = "_key"
	FieldID      = "_id"
	FieldRev     = "_rev"
	FieldPrivate = "_private"

	FieldDatasetID = "std_dataset_id"
	FieldDate      = "std_date"
	FieldSpecies   = "species"
	FieldGCUID     = "gcu_id_number"
	FieldTreeCode  = "chr_tree_code"
)

// ReservedFields are identity, revision and internal fields. They are
// never reported as dataset variables.
var ReservedFields = []string{FieldKey, FieldID, FieldRev, FieldPrivate}

// IsReserved returns true if the field name is reserved.
func IsReserved(field string) bool {
	return slices.Contains(ReservedFields, field)
}

// Strings is a list of strings that also accepts a single JSON string.
type Strings []string

// UnmarshalJSON decodes either a string or a list of strings.
func (s *Strings) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*s = Strings{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

// Text is a multilingual text keyed by language code
// (for example "iso_639_3_eng").
type Text map[string]string

// docWithAttrs encodes v as a flat document and adds attrs that are
// not shadowed by typed fields.
func docWithAttrs(v any, attrs map[string]any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	doc := make(map[string]any)
	if err = json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	for k, v := range attrs {
		if _, ok := doc[k]; !ok {
			doc[k] = v
		}
	}
	return doc, nil
}

// extraAttrs decodes b as a map and removes the known fields, leaving
// the open part of the document. Returns nil if nothing is left.
func extraAttrs(b []byte, known []string) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(m, k)
	}
	if len(m) == 0 {
		return nil, nil
	}
	return m, nil
}
