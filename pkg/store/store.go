// Package store defines contracts for persistence of datasets, data
// records and terms. Implementations live in internal/iostore
// (PostgreSQL) and internal/iomem (in-memory).
package store

import (
	"context"
	"errors"

	"github.com/eufgis/fgrdb/pkg/filter"
	"github.com/eufgis/fgrdb/pkg/record"
)

var (
	// ErrNotFound is returned (possibly wrapped) when a document does
	// not exist.
	ErrNotFound = errors.New("document not found")

	// ErrConflict is returned (possibly wrapped) when a document with
	// the same key exists, or when the stored revision differs from
	// the expected one.
	ErrConflict = errors.New("document conflict")
)

// Page selects a window of results ordered by key. Limit 0 means
// no limit.
type Page struct {
	Start int
	Limit int
}

// Sort orders a page of results by fields, all in the same direction.
type Sort struct {
	Fields []string
	Desc   bool
}

// Query is a search over one collection.
type Query struct {
	// Predicates are chained by Op.
	Predicates []filter.Predicate
	Op         filter.Op

	// Scope predicates are always joined by AND, for example to
	// restrict data to one dataset.
	Scope []filter.Predicate

	// Page is applied to matching documents before Sort.
	Page Page
	Sort Sort
}

// Datasets persists dataset records.
type Datasets interface {
	// ListDatasets returns a page of datasets ordered by key.
	ListDatasets(ctx context.Context, page Page) ([]record.Dataset, error)

	// GetDataset returns a dataset or ErrNotFound.
	GetDataset(ctx context.Context, key string) (record.Dataset, error)

	// CreateDataset saves a dataset with a key set by the caller and
	// assigns a new revision. Returns ErrConflict if the key exists.
	CreateDataset(ctx context.Context, d record.Dataset) (record.Dataset, error)

	// ReplaceDataset replaces the whole stored document. If ifRev is
	// not empty and differs from the stored revision, ErrConflict is
	// returned.
	ReplaceDataset(
		ctx context.Context,
		d record.Dataset,
		ifRev string,
	) (record.Dataset, error)

	// DeleteDataset removes a dataset or returns ErrNotFound.
	DeleteDataset(ctx context.Context, key string) error

	// SearchDatasets returns datasets that match the query.
	SearchDatasets(ctx context.Context, q Query) ([]record.Dataset, error)

	// SearchDatasetKeys returns keys of datasets that match the query.
	SearchDatasetKeys(ctx context.Context, q Query) ([]string, error)
}

// Data persists data records.
type Data interface {
	ListData(ctx context.Context, page Page) ([]record.Data, error)
	GetData(ctx context.Context, key string) (record.Data, error)
	CreateData(ctx context.Context, d record.Data) (record.Data, error)
	ReplaceData(ctx context.Context, d record.Data, ifRev string) (record.Data, error)
	DeleteData(ctx context.Context, key string) error
	SearchData(ctx context.Context, q Query) ([]record.Data, error)
	SearchDataKeys(ctx context.Context, q Query) ([]string, error)

	// ScanData calls fn for every record of a dataset. Scanning stops
	// on the first error returned by fn.
	ScanData(
		ctx context.Context,
		datasetKey string,
		fn func(record.Data) error,
	) error
}

// Terms gives read access to the term catalogue.
type Terms interface {
	// TermsByIDs returns terms whose identifiers are in ids. Unknown
	// identifiers are ignored.
	TermsByIDs(ctx context.Context, ids []string) ([]record.Term, error)

	// PutTerms creates or replaces terms.
	PutTerms(ctx context.Context, terms []record.Term) error
}

// Store combines all collections.
type Store interface {
	Datasets
	Data
	Terms

	// Close releases resources of the store.
	Close() error
}
