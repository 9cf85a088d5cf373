package iostore

import (
	"encoding/json"

	"github.com/eufgis/fgrdb/pkg/record"
)

// Revisions live in their own column and are not part of stored
// documents.

func encodeDataset(d record.Dataset) ([]byte, error) {
	doc, err := d.Doc()
	if err != nil {
		return nil, err
	}
	delete(doc, record.FieldRev)
	return json.Marshal(doc)
}

func decodeDataset(rev string, doc []byte) (record.Dataset, error) {
	var res record.Dataset
	if err := json.Unmarshal(doc, &res); err != nil {
		return res, err
	}
	res.Rev = rev
	return res, nil
}

func encodeData(d record.Data) ([]byte, error) {
	doc := d.Doc()
	delete(doc, record.FieldRev)
	return json.Marshal(doc)
}

func decodeData(rev string, doc []byte) (record.Data, error) {
	var res record.Data
	if err := json.Unmarshal(doc, &res); err != nil {
		return res, err
	}
	res.Rev = rev
	return res, nil
}
