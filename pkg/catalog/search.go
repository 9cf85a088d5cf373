package catalog

import (
	"context"
	"log/slog"
	"maps"

	"github.com/eufgis/fgrdb/pkg/filter"
	"github.com/eufgis/fgrdb/pkg/record"
	"github.com/eufgis/fgrdb/pkg/species"
	"github.com/eufgis/fgrdb/pkg/store"
)

// Search is a filtered search request.
type Search struct {
	// Params maps filter names to their raw values.
	Params map[string]any

	// Op chains the filters, AND by default.
	Op filter.Op

	Page store.Page
	Sort store.Sort
}

// QueryDatasets returns datasets matching the search. If no filter is
// recognised, the result is empty and the store is not queried.
func (c *Catalog) QueryDatasets(
	ctx context.Context,
	s Search,
) ([]record.Dataset, error) {
	q, ok, err := c.query(filter.DatasetSchema, s)
	if err != nil || !ok {
		return []record.Dataset{}, err
	}
	return c.store.SearchDatasets(ctx, q)
}

// QueryDatasetKeys returns keys of datasets matching the search.
func (c *Catalog) QueryDatasetKeys(
	ctx context.Context,
	s Search,
) ([]string, error) {
	q, ok, err := c.query(filter.DatasetSchema, s)
	if err != nil || !ok {
		return []string{}, err
	}
	return c.store.SearchDatasetKeys(ctx, q)
}

// QueryData returns data records of any dataset matching the search.
func (c *Catalog) QueryData(
	ctx context.Context,
	s Search,
) ([]record.Data, error) {
	q, ok, err := c.query(filter.DataSchema, s)
	if err != nil || !ok {
		return []record.Data{}, err
	}
	return c.store.SearchData(ctx, q)
}

// QueryDataKeys returns keys of data records matching the search.
func (c *Catalog) QueryDataKeys(
	ctx context.Context,
	s Search,
) ([]string, error) {
	q, ok, err := c.query(filter.DataSchema, s)
	if err != nil || !ok {
		return []string{}, err
	}
	return c.store.SearchDataKeys(ctx, q)
}

// QueryDatasetData returns data records of one dataset matching the
// search. Records of genetic datasets are reshaped by ReshapeMarkers.
func (c *Catalog) QueryDatasetData(
	ctx context.Context,
	datasetKey string,
	s Search,
) ([]record.Data, error) {
	ds, err := c.GetDataset(ctx, datasetKey)
	if err != nil {
		return nil, err
	}
	q, ok, err := c.query(filter.DataSchema, s)
	if err != nil || !ok {
		return []record.Data{}, err
	}
	q.Scope = datasetScope(datasetKey)

	res, err := c.store.SearchData(ctx, q)
	if err != nil {
		return nil, err
	}
	return c.ReshapeMarkers(ds, res), nil
}

// QueryDatasetDataKeys returns keys of data records of one dataset
// matching the search.
func (c *Catalog) QueryDatasetDataKeys(
	ctx context.Context,
	datasetKey string,
	s Search,
) ([]string, error) {
	if _, err := c.GetDataset(ctx, datasetKey); err != nil {
		return nil, err
	}
	q, ok, err := c.query(filter.DataSchema, s)
	if err != nil || !ok {
		return []string{}, err
	}
	q.Scope = datasetScope(datasetKey)
	return c.store.SearchDataKeys(ctx, q)
}

// DataByDataset returns a page of data records of a dataset, sorted
// if requested. Records of genetic datasets are reshaped.
func (c *Catalog) DataByDataset(
	ctx context.Context,
	datasetKey string,
	page store.Page,
	sort store.Sort,
) ([]record.Data, error) {
	ds, err := c.GetDataset(ctx, datasetKey)
	if err != nil {
		return nil, err
	}
	q := store.Query{
		Op:    filter.And,
		Scope: datasetScope(datasetKey),
		Page:  page,
		Sort:  sort,
	}
	res, err := c.store.SearchData(ctx, q)
	if err != nil {
		return nil, err
	}
	return c.ReshapeMarkers(ds, res), nil
}

// query validates and compiles search parameters. It returns false if
// there is nothing to search for.
func (c *Catalog) query(
	schema filter.Schema,
	s Search,
) (store.Query, bool, error) {
	if err := filter.Validate(schema, s.Params); err != nil {
		return store.Query{}, false, err
	}
	comp := filter.New(schema, filter.OptLanguage(c.language))
	preds := comp.Compile(s.Params)
	if len(preds) == 0 {
		slog.Debug("No recognised filters, skipping search")
		return store.Query{}, false, nil
	}

	op := s.Op
	if op == "" {
		op = filter.And
	}
	q := store.Query{
		Predicates: preds,
		Op:         op,
		Page:       s.Page,
		Sort:       s.Sort,
	}
	return q, true, nil
}

func datasetScope(key string) []filter.Predicate {
	return []filter.Predicate{filter.In(record.FieldDatasetID, key)}
}

// ReshapeMarkers moves genetic index values of records into marker
// objects. For a record of species S and a marker with index I declared
// for S, the field I is replaced by I_marker that holds the value under
// I together with the marker metadata. Records of standard datasets are
// returned unchanged.
func (c *Catalog) ReshapeMarkers(
	ds record.Dataset,
	data []record.Data,
) []record.Data {
	if ds.Kind != record.Genetic || len(data) == 0 {
		return data
	}

	m := species.NewMatcher(c.names, ds.MarkerSpecies())
	res := make([]record.Data, len(data))
	for i, d := range data {
		res[i] = d
		sp, ok := m.Match(d.Species)
		if !ok {
			continue
		}
		markers := ds.MarkersFor(sp)
		if len(markers) == 0 {
			continue
		}

		attrs := maps.Clone(d.Attrs)
		for _, mk := range markers {
			v, ok := attrs[mk.GenIndex]
			if !ok {
				continue
			}
			obj := mk.Metadata()
			obj[mk.GenIndex] = v
			delete(attrs, mk.GenIndex)
			attrs[mk.GenIndex+"_marker"] = obj
		}
		res[i].Attrs = attrs
	}
	return res
}
