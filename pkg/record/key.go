package record

import (
	"encoding/json"

	"github.com/gnames/gnuuid"
)

// DatasetKey generates a deterministic key from project and dataset
// codes, so the same submission cannot be created twice.
func DatasetKey(d Dataset) string {
	return gnuuid.New(d.Project + "/" + d.Code).String()
}

// DataKey generates a deterministic key from the owning dataset and the
// content of the record. Identity and revision fields are ignored, so
// importing identical measurements twice leads to a key conflict.
func DataKey(d Data) string {
	doc := d.Doc()
	delete(doc, FieldKey)
	delete(doc, FieldRev)
	// map keys are sorted by encoding/json
	b, err := json.Marshal(doc)
	if err != nil {
		return gnuuid.New(d.DatasetID).String()
	}
	return gnuuid.New(d.DatasetID + "/" + string(b)).String()
}
