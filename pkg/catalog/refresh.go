package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"golang.org/x/sync/errgroup"
)

// RefreshResult is the outcome of refreshing one dataset.
type RefreshResult struct {
	Key   string `json:"key"`
	Rev   string `json:"_rev,omitempty"`
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`

	// Err is the error of a failed refresh.
	Err error `json:"-"`
}

// RefreshReport collects results of a refresh in the order of keys.
type RefreshReport struct {
	Results   []RefreshResult `json:"results"`
	Refreshed int             `json:"refreshed"`
	Failed    int             `json:"failed"`
}

// Refresh recomputes derived facets of datasets and stores them. See
// RefreshWithProgress.
func (c *Catalog) Refresh(
	ctx context.Context,
	keys []string,
) (RefreshReport, error) {
	return c.RefreshWithProgress(ctx, keys, nil)
}

// RefreshWithProgress recomputes derived facets of every dataset and
// merges non-empty ones over the stored document. Datasets are
// processed independently by a limited number of workers, a failure
// of one dataset does not stop the others. The stored document is
// replaced only if it was not modified during the refresh, otherwise
// the dataset fails with a revision conflict.
//
// The progress function, if given, is called after each dataset.
// An error is returned only if all datasets failed. If all of them
// failed with the same error code, the error of the first dataset is
// returned, otherwise AllRefreshFailedError. The report is returned
// in both cases.
func (c *Catalog) RefreshWithProgress(
	ctx context.Context,
	keys []string,
	progress func(RefreshResult),
) (RefreshReport, error) {
	keys = uniqueKeys(keys)
	report := RefreshReport{Results: make([]RefreshResult, len(keys))}
	if len(keys) == 0 {
		return report, nil
	}

	start := time.Now()
	slog.Info("Refreshing datasets",
		"datasets", len(keys),
		"workers", c.jobsNumber,
	)

	var mu sync.Mutex
	g := &errgroup.Group{}
	g.SetLimit(c.jobsNumber)
	for i, key := range keys {
		g.Go(func() error {
			res := c.refreshOne(ctx, key)
			report.Results[i] = res
			if progress != nil {
				mu.Lock()
				progress(res)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, v := range report.Results {
		if v.Err != nil {
			report.Failed++
			continue
		}
		report.Refreshed++
	}

	slog.Info("Refresh finished",
		"refreshed", humanize.Comma(int64(report.Refreshed)),
		"failed", humanize.Comma(int64(report.Failed)),
		"duration", gnfmt.TimeString(time.Since(start).Seconds()),
	)

	if report.Refreshed == 0 {
		return report, refreshFailure(report.Results)
	}
	return report, nil
}

// refreshFailure returns the error of a refresh where every dataset
// failed.
func refreshFailure(results []RefreshResult) error {
	var first *gn.Error
	for _, v := range results {
		var gnErr *gn.Error
		if !errors.As(v.Err, &gnErr) {
			return AllRefreshFailedError(len(results), v.Err)
		}
		if first == nil {
			first = gnErr
			continue
		}
		if gnErr.Code != first.Code {
			return AllRefreshFailedError(len(results), v.Err)
		}
	}
	return first
}

func (c *Catalog) refreshOne(ctx context.Context, key string) RefreshResult {
	res := RefreshResult{Key: key}
	fail := func(err error) RefreshResult {
		if errors.Is(err, context.Canceled) ||
			errors.Is(err, context.DeadlineExceeded) {
			err = RefreshCancelledError(key, err)
		}
		slog.Warn("Cannot refresh dataset", "key", key, "error", err)
		res.Err = err
		res.Error = err.Error()
		return res
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	ds, err := c.GetDataset(ctx, key)
	if err != nil {
		return fail(err)
	}

	smr, err := c.qualify(ctx, ds)
	if err != nil {
		return fail(err)
	}
	smr.Apply(&ds)

	stored, err := c.store.ReplaceDataset(ctx, ds, ds.Rev)
	if err != nil {
		return fail(datasetError(key, err))
	}

	res.Rev = stored.Rev
	res.Count = smr.Count
	slog.Debug("Dataset refreshed", "key", key, "count", smr.Count)
	return res
}

func uniqueKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	res := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok || k == "" {
			continue
		}
		seen[k] = struct{}{}
		res = append(res, k)
	}
	return res
}
