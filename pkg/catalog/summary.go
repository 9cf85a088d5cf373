package catalog

import (
	"context"
	"log/slog"

	"github.com/eufgis/fgrdb/pkg/record"
	"github.com/eufgis/fgrdb/pkg/species"
	"github.com/eufgis/fgrdb/pkg/summary"
)

// Qualify computes derived facets of a dataset from its data records
// without persisting them.
func (c *Catalog) Qualify(
	ctx context.Context,
	key string,
) (summary.Summary, error) {
	ds, err := c.GetDataset(ctx, key)
	if err != nil {
		return summary.Summary{}, err
	}
	return c.qualify(ctx, ds)
}

func (c *Catalog) qualify(
	ctx context.Context,
	ds record.Dataset,
) (summary.Summary, error) {
	acc := summary.NewAccumulator()
	err := c.store.ScanData(ctx, ds.Key, func(d record.Data) error {
		acc.Add(d)
		return nil
	})
	if err != nil {
		return summary.Summary{}, err
	}

	var terms []record.Term
	if fields := acc.Fields(); len(fields) > 0 {
		terms, err = c.store.TermsByIDs(ctx, fields)
		if err != nil {
			return summary.Summary{}, err
		}
	}

	res := summary.Resolve(acc, terms, c.quantClasses)
	slog.Debug("Dataset qualified",
		"key", ds.Key,
		"count", res.Count,
		"terms", len(res.Terms),
	)
	return res, nil
}

// Row is one row of dataset statistics.
type Row map[string]any

// Statistics computes a statistic of data grouped by a pivot field.
//
// Standard datasets are grouped by a declared key or summary field,
// and every quantitative variable of the dataset gets the statistic.
// Genetic datasets are grouped by species, and every marker declared
// for a species gets the statistic of its index under
// "<index>_marker". Species without declared markers get rows with
// the species only. Values that cannot be computed are left out.
// Rows are sorted by pivot value.
func (c *Catalog) Statistics(
	ctx context.Context,
	key, pivot, statName string,
) ([]Row, error) {
	ds, err := c.GetDataset(ctx, key)
	if err != nil {
		return nil, err
	}
	if n := len(ds.TermsKey); n < 2 {
		return nil, InsufficientKeysError(key, n)
	}
	stat, err := summary.ParseStat(statName)
	if err != nil {
		return nil, err
	}

	if ds.Kind == record.Genetic {
		if pivot != record.FieldSpecies {
			return nil, GeneticPivotError(key, pivot)
		}
		return c.markerStatistics(ctx, ds, stat)
	}

	if !ds.IsPivot(pivot) {
		return nil, PivotNotDeclaredError(key, pivot)
	}
	return c.termStatistics(ctx, ds, pivot, stat)
}

func (c *Catalog) termStatistics(
	ctx context.Context,
	ds record.Dataset,
	pivot string,
	stat summary.Stat,
) ([]Row, error) {
	groups := summary.NewGroups(pivot, ds.TermsQuant...)
	err := c.store.ScanData(ctx, ds.Key, func(d record.Data) error {
		groups.Add(d)
		return nil
	})
	if err != nil {
		return nil, err
	}

	keys := groups.Keys()
	res := make([]Row, 0, len(keys))
	for _, k := range keys {
		row := Row{pivot: k}
		for _, f := range ds.TermsQuant {
			if v, ok := stat.Compute(groups.Values(k, f)); ok {
				row[f] = v
			}
		}
		res = append(res, row)
	}
	return res, nil
}

func (c *Catalog) markerStatistics(
	ctx context.Context,
	ds record.Dataset,
	stat summary.Stat,
) ([]Row, error) {
	indices := make([]string, 0, len(ds.Markers))
	for _, v := range ds.Markers {
		indices = append(indices, v.GenIndex)
	}

	m := species.NewMatcher(c.names, ds.MarkerSpecies())
	groups := summary.NewGroups(record.FieldSpecies, indices...)
	err := c.store.ScanData(ctx, ds.Key, func(d record.Data) error {
		if sp, ok := m.Match(d.Species); ok {
			d.Species = sp
		}
		groups.Add(d)
		return nil
	})
	if err != nil {
		return nil, err
	}

	keys := groups.Keys()
	res := make([]Row, 0, len(keys))
	for _, sp := range keys {
		row := Row{record.FieldSpecies: sp}
		for _, mk := range ds.MarkersFor(sp) {
			v, ok := stat.Compute(groups.Values(sp, mk.GenIndex))
			if !ok {
				continue
			}
			obj := mk.Metadata()
			obj[mk.GenIndex] = v
			row[mk.GenIndex+"_marker"] = obj
		}
		res = append(res, row)
	}
	return res, nil
}
