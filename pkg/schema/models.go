// Package schema provides database models for fgrdb. Every collection
// is a table of JSONB documents keyed by text identifiers, filters are
// evaluated against the documents.
package schema

import (
	"fmt"
	"time"
)

// Indexer is implemented by models that need indexes GORM cannot
// declare with struct tags.
type Indexer interface {
	// TableName returns the PostgreSQL table name for this model.
	TableName() string

	// IndexDDL returns CREATE INDEX statements for this model.
	// Statements are idempotent.
	IndexDDL() []string
}

// Dataset keeps dataset metadata together with its cached summary.
type Dataset struct {
	// Key is the dataset identifier.
	Key string `gorm:"column:key;type:text;primaryKey"`

	// Rev changes on every write of the document.
	Rev string `gorm:"column:rev;type:text;not null"`

	// Doc is the flat JSON document of the dataset.
	Doc []byte `gorm:"column:doc;type:jsonb;not null"`

	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName implements Indexer.
func (Dataset) TableName() string {
	return "datasets"
}

// IndexDDL implements Indexer.
func (d Dataset) IndexDDL() []string {
	return []string{docIndex(d.TableName())}
}

// Data keeps data records. DatasetID duplicates std_dataset_id of the
// document, so records of a dataset can be scanned by index.
type Data struct {
	Key       string    `gorm:"column:key;type:text;primaryKey"`
	Rev       string    `gorm:"column:rev;type:text;not null"`
	DatasetID string    `gorm:"column:dataset_id;type:text;not null;index:data_dataset_id_idx"`
	Doc       []byte    `gorm:"column:doc;type:jsonb;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName implements Indexer.
func (Data) TableName() string {
	return "data"
}

// IndexDDL implements Indexer.
func (d Data) IndexDDL() []string {
	return []string{
		docIndex(d.TableName()),
		`CREATE INDEX IF NOT EXISTS data_std_date_idx ` +
			`ON data ((doc->>'std_date') COLLATE "C")`,
	}
}

// Term is an entry of the data dictionary.
type Term struct {
	GID   string `gorm:"column:gid;type:text;primaryKey"`
	Class string `gorm:"column:class;type:text;index:terms_class_idx"`
	Doc   []byte `gorm:"column:doc;type:jsonb;not null"`
}

// TableName implements Indexer.
func (Term) TableName() string {
	return "terms"
}

// IndexDDL implements Indexer.
func (Term) IndexDDL() []string {
	return nil
}

func docIndex(table string) string {
	return fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS %[1]s_doc_idx ON %[1]s USING GIN (doc)",
		table,
	)
}
