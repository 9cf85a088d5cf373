package record

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
)

var (
	datePattern  = regexp.MustCompile(`^[0-9]{4}([0-9]{4})?$`)
	gcuIDPattern = regexp.MustCompile(`^[A-Z]{3}[0-9]{4}$`)
)

// Data is a single measurement or observation that belongs to a dataset.
type Data struct {
	// Key is the record identifier.
	Key string `json:"_key,omitempty"`

	// Rev is the revision of the stored document.
	Rev string `json:"_rev,omitempty"`

	// DatasetID references the owning Dataset key.
	DatasetID string `json:"std_dataset_id"`

	// Date is the measurement date as YYYY or YYYYMMDD.
	Date string `json:"std_date"`

	// Species is the scientific name of the measured species.
	Species string `json:"species,omitempty"`

	// GCUID is the code of a gene conservation unit, e.g. ESP0012.
	GCUID string `json:"gcu_id_number,omitempty"`

	// TreeCode identifies a tree.
	TreeCode string `json:"chr_tree_code,omitempty"`

	// Attrs keeps all the descriptor fields (variables) of the record.
	Attrs map[string]any `json:"-"`
}

var dataFields = []string{
	FieldKey, FieldID, FieldRev, FieldDatasetID, FieldDate,
	FieldSpecies, FieldGCUID, FieldTreeCode,
}

// UnmarshalJSON decodes typed fields and collects the rest into Attrs.
func (d *Data) UnmarshalJSON(b []byte) error {
	type alias Data
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	attrs, err := extraAttrs(b, dataFields)
	if err != nil {
		return err
	}
	a.Attrs = attrs
	*d = Data(a)
	return nil
}

// MarshalJSON encodes the record as one flat document.
func (d Data) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Doc())
}

// Doc returns the record as a flat document. Empty optional fields
// are absent.
func (d Data) Doc() map[string]any {
	res := make(map[string]any, len(d.Attrs)+7)
	for k, v := range d.Attrs {
		res[k] = v
	}
	set := func(k, v string) {
		if v != "" {
			res[k] = v
		}
	}
	set(FieldKey, d.Key)
	set(FieldRev, d.Rev)
	set(FieldDatasetID, d.DatasetID)
	set(FieldDate, d.Date)
	set(FieldSpecies, d.Species)
	set(FieldGCUID, d.GCUID)
	set(FieldTreeCode, d.TreeCode)
	return res
}

// Fields returns the sorted names of fields present in the record,
// reserved fields excluded.
func (d Data) Fields() []string {
	doc := d.Doc()
	res := make([]string, 0, len(doc))
	for k := range doc {
		if !IsReserved(k) {
			res = append(res, k)
		}
	}
	slices.Sort(res)
	return res
}

// Value returns the value of a field, typed or not.
func (d Data) Value(field string) (any, bool) {
	switch field {
	case FieldDatasetID:
		return d.DatasetID, d.DatasetID != ""
	case FieldDate:
		return d.Date, d.Date != ""
	case FieldSpecies:
		return d.Species, d.Species != ""
	case FieldGCUID:
		return d.GCUID, d.GCUID != ""
	case FieldTreeCode:
		return d.TreeCode, d.TreeCode != ""
	case FieldKey:
		return d.Key, d.Key != ""
	}
	v, ok := d.Attrs[field]
	return v, ok && v != nil
}

// Validate checks required fields and their formats.
func (d Data) Validate() error {
	if d.DatasetID == "" {
		return fmt.Errorf("%s is required", FieldDatasetID)
	}
	if !datePattern.MatchString(d.Date) {
		return fmt.Errorf("%s must be YYYY or YYYYMMDD, got '%s'",
			FieldDate, d.Date)
	}
	if d.GCUID != "" && !gcuIDPattern.MatchString(d.GCUID) {
		return fmt.Errorf("%s must match [A-Z]{3}[0-9]{4}, got '%s'",
			FieldGCUID, d.GCUID)
	}
	return nil
}
