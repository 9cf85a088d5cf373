// Package catalog implements the operations of the forest genetic
// resources catalogue on top of a store: records CRUD, filtered
// searches, dataset summaries, statistics and refresh of cached
// dataset facets.
//
// Catalog is stateless between calls. Its dependencies are injected by
// New and it is safe for concurrent use.
package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"runtime"
	"slices"

	"github.com/eufgis/fgrdb/pkg/config"
	"github.com/eufgis/fgrdb/pkg/record"
	"github.com/eufgis/fgrdb/pkg/species"
	"github.com/eufgis/fgrdb/pkg/store"
	"github.com/eufgis/fgrdb/pkg/summary"
)

// Catalog provides catalogue operations.
type Catalog struct {
	store        store.Store
	names        species.Canonicalizer
	quantClasses []string
	language     string
	jobsNumber   int
}

// New creates a Catalog. The canonicalizer is used to match species of
// data records with species of genetic markers.
func New(
	cfg *config.Config,
	st store.Store,
	names species.Canonicalizer,
) *Catalog {
	res := &Catalog{
		store:        st,
		names:        names,
		quantClasses: cfg.Catalog.QuantClasses,
		language:     cfg.Catalog.Language,
		jobsNumber:   cfg.JobsNumber,
	}
	if len(res.quantClasses) == 0 {
		res.quantClasses = summary.DefaultQuantClasses
	}
	if res.jobsNumber < 1 {
		res.jobsNumber = runtime.NumCPU()
	}
	return res
}

// ListDatasets returns a page of datasets.
func (c *Catalog) ListDatasets(
	ctx context.Context,
	page store.Page,
) ([]record.Dataset, error) {
	return c.store.ListDatasets(ctx, page)
}

// GetDataset returns a dataset by key.
func (c *Catalog) GetDataset(
	ctx context.Context,
	key string,
) (record.Dataset, error) {
	res, err := c.store.GetDataset(ctx, key)
	if err != nil {
		return res, datasetError(key, err)
	}
	return res, nil
}

// CreateDataset validates and saves a new dataset. A missing key is
// generated from project and dataset codes.
func (c *Catalog) CreateDataset(
	ctx context.Context,
	d record.Dataset,
) (record.Dataset, error) {
	if err := d.Validate(); err != nil {
		return d, InvalidRecordError("dataset", err)
	}
	if d.Key == "" {
		d.Key = record.DatasetKey(d)
	}
	d.Rev = ""
	d.Normalize()

	res, err := c.store.CreateDataset(ctx, d)
	if err != nil {
		if isConflict(err) {
			return d, DuplicateKeyError("dataset", d.Key)
		}
		return d, err
	}
	slog.Info("Dataset created", "key", res.Key, "kind", res.Kind)
	return res, nil
}

// ReplaceDataset replaces a stored dataset. If ifRev is not empty, the
// stored revision must be the same.
func (c *Catalog) ReplaceDataset(
	ctx context.Context,
	key string,
	d record.Dataset,
	ifRev string,
) (record.Dataset, error) {
	d.Key = key
	if err := d.Validate(); err != nil {
		return d, InvalidRecordError("dataset", err)
	}
	d.Normalize()

	res, err := c.store.ReplaceDataset(ctx, d, ifRev)
	if err != nil {
		return d, datasetError(key, err)
	}
	return res, nil
}

// PatchDataset merges a patch into a stored dataset. Objects merge
// recursively and null values remove fields.
func (c *Catalog) PatchDataset(
	ctx context.Context,
	key string,
	patch map[string]any,
	ifRev string,
) (record.Dataset, error) {
	old, err := c.GetDataset(ctx, key)
	if err != nil {
		return old, err
	}
	if ifRev != "" && ifRev != old.Rev {
		return old, RevisionConflictError("dataset", key)
	}

	doc, err := old.Doc()
	if err != nil {
		return old, err
	}
	var res record.Dataset
	if err = patchDoc(doc, patch, &res); err != nil {
		return old, InvalidRecordError("dataset", err)
	}
	return c.ReplaceDataset(ctx, key, res, old.Rev)
}

// DeleteDataset removes a dataset. Its data records are not removed.
func (c *Catalog) DeleteDataset(ctx context.Context, key string) error {
	if err := c.store.DeleteDataset(ctx, key); err != nil {
		return datasetError(key, err)
	}
	slog.Info("Dataset deleted", "key", key)
	return nil
}

// DatasetKeys returns keys of all stored datasets in key order.
func (c *Catalog) DatasetKeys(ctx context.Context) ([]string, error) {
	ds, err := c.store.ListDatasets(ctx, store.Page{})
	if err != nil {
		return nil, err
	}
	res := make([]string, len(ds))
	for i := range ds {
		res[i] = ds[i].Key
	}
	return res, nil
}

// ListData returns a page of data records.
func (c *Catalog) ListData(
	ctx context.Context,
	page store.Page,
) ([]record.Data, error) {
	return c.store.ListData(ctx, page)
}

// GetData returns a data record by key.
func (c *Catalog) GetData(ctx context.Context, key string) (record.Data, error) {
	res, err := c.store.GetData(ctx, key)
	if err != nil {
		return res, dataError(key, err)
	}
	return res, nil
}

// CreateData validates and saves a new data record. The owning dataset
// must exist. A missing key is generated from the record content.
func (c *Catalog) CreateData(
	ctx context.Context,
	d record.Data,
) (record.Data, error) {
	if err := c.checkData(ctx, d); err != nil {
		return d, err
	}
	if d.Key == "" {
		d.Key = record.DataKey(d)
	}
	d.Rev = ""

	res, err := c.store.CreateData(ctx, d)
	if err != nil {
		if isConflict(err) {
			return d, DuplicateKeyError("data", d.Key)
		}
		return d, err
	}
	return res, nil
}

// ReplaceData replaces a stored data record. If ifRev is not empty,
// the stored revision must be the same.
func (c *Catalog) ReplaceData(
	ctx context.Context,
	key string,
	d record.Data,
	ifRev string,
) (record.Data, error) {
	d.Key = key
	if err := c.checkData(ctx, d); err != nil {
		return d, err
	}

	res, err := c.store.ReplaceData(ctx, d, ifRev)
	if err != nil {
		return d, dataError(key, err)
	}
	return res, nil
}

// PatchData merges a patch into a stored data record.
func (c *Catalog) PatchData(
	ctx context.Context,
	key string,
	patch map[string]any,
	ifRev string,
) (record.Data, error) {
	old, err := c.GetData(ctx, key)
	if err != nil {
		return old, err
	}
	if ifRev != "" && ifRev != old.Rev {
		return old, RevisionConflictError("data", key)
	}

	var res record.Data
	if err = patchDoc(old.Doc(), patch, &res); err != nil {
		return old, InvalidRecordError("data", err)
	}
	return c.ReplaceData(ctx, key, res, old.Rev)
}

// DeleteData removes a data record.
func (c *Catalog) DeleteData(ctx context.Context, key string) error {
	if err := c.store.DeleteData(ctx, key); err != nil {
		return dataError(key, err)
	}
	return nil
}

func (c *Catalog) checkData(ctx context.Context, d record.Data) error {
	if err := d.Validate(); err != nil {
		return InvalidRecordError("data", err)
	}
	if _, err := c.GetDataset(ctx, d.DatasetID); err != nil {
		return err
	}
	return nil
}

// patchDoc merges patch into doc and decodes the result into out.
// Identity and revision fields cannot be patched.
func patchDoc(doc, patch map[string]any, out any) error {
	patch = withoutFields(patch, record.ReservedFields)
	doc = store.Merge(doc, patch)
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func withoutFields(m map[string]any, keys []string) map[string]any {
	res := make(map[string]any, len(m))
	for k, v := range m {
		if !slices.Contains(keys, k) {
			res[k] = v
		}
	}
	return res
}
