package catalog_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/eufgis/fgrdb/internal/iomem"
	"github.com/eufgis/fgrdb/pkg/catalog"
	"github.com/eufgis/fgrdb/pkg/errcode"
	"github.com/eufgis/fgrdb/pkg/record"
	"github.com/eufgis/fgrdb/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// derived returns the stored dataset without its revision.
func derived(t *testing.T, c *catalog.Catalog, key string) string {
	ds, err := c.GetDataset(context.Background(), key)
	require.NoError(t, err)
	ds.Rev = ""
	b, err := json.Marshal(ds)
	require.NoError(t, err)
	return string(b)
}

func TestRefresh(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	ctx := context.Background()
	st := iomem.New()
	seed(t, st)
	c := catalog.New(testConfig(), st, nil)

	var mu sync.Mutex
	var seen []string
	report, err := c.RefreshWithProgress(ctx,
		[]string{stdKey, genKey, stdKey, "missing"},
		func(r catalog.RefreshResult) {
			mu.Lock()
			seen = append(seen, r.Key)
			mu.Unlock()
		},
	)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Refreshed)
	assert.Equal(t, 1, report.Failed)
	assert.ElementsMatch(t, []string{stdKey, genKey, "missing"}, seen)

	require.Len(t, report.Results, 3)
	assert.Equal(t, stdKey, report.Results[0].Key)
	assert.Equal(t, 3, report.Results[0].Count)
	assert.NotEmpty(t, report.Results[0].Rev)
	assert.Equal(t, 4, report.Results[1].Count)
	assert.Equal(t, errcode.DatasetNotFoundError, errCode(t, report.Results[2].Err))
	assert.NotEmpty(t, report.Results[2].Error)

	ds, err := c.GetDataset(ctx, stdKey)
	require.NoError(t, err)
	require.NotNil(t, ds.Count)
	assert.Equal(t, 3, *ds.Count)
	assert.Equal(t, "1999", ds.DateStart)
	assert.Equal(t, "2020", ds.DateEnd)
	assert.Equal(t, record.Strings{"Abies alba", "Fagus sylvatica"}, ds.Species)
	assert.Equal(t, record.Strings{"chr_Dbh", "chr_Height"}, ds.TermsQuant)
	assert.Equal(t, record.Strings{"_tag_tree"}, ds.Tags)
	// descriptive fields survive
	assert.Equal(t, "HEIGHT", ds.Code)
	assert.Equal(t, "Height of beech trees", ds.Title["iso_639_3_eng"])
	assert.Equal(t, record.Strings{"gcu_id_number"}, ds.TermsSummary)

	gen, err := c.GetDataset(ctx, genKey)
	require.NoError(t, err)
	assert.Equal(t, record.Genetic, gen.Kind)
	assert.Len(t, gen.Markers, 3)
	assert.Equal(t, record.Strings{"chr_ExpHet"}, gen.TermsQuant)
}

func TestRefreshIdempotent(t *testing.T) {
	ctx := context.Background()
	c, _ := newCatalog(t)

	_, err := c.Refresh(ctx, []string{stdKey, genKey})
	require.NoError(t, err)
	std1 := derived(t, c, stdKey)
	gen1 := derived(t, c, genKey)

	_, err = c.Refresh(ctx, []string{stdKey, genKey})
	require.NoError(t, err)
	assert.Equal(t, std1, derived(t, c, stdKey))
	assert.Equal(t, gen1, derived(t, c, genKey))
}

func TestRefreshNoNulls(t *testing.T) {
	ctx := context.Background()
	c, _ := newCatalog(t)

	ds, err := c.CreateDataset(ctx, record.Dataset{
		Project: "P",
		Code:    "SPARSE",
		Classes: record.Strings{"_class_kept"},
	})
	require.NoError(t, err)
	_, err = c.CreateData(ctx, record.Data{DatasetID: ds.Key, Date: "2005"})
	require.NoError(t, err)

	_, err = c.Refresh(ctx, []string{ds.Key})
	require.NoError(t, err)

	res, err := c.GetDataset(ctx, ds.Key)
	require.NoError(t, err)
	doc, err := res.Doc()
	require.NoError(t, err)
	for k, v := range doc {
		assert.NotNil(t, v, k)
		if l, ok := v.([]any); ok {
			assert.NotEmpty(t, l, k)
			assert.NotContains(t, l, nil, k)
		}
	}
	assert.NotContains(t, doc, "species_list")
	assert.NotContains(t, doc, "std_terms_quant")
	// empty derived values do not erase stored ones
	assert.Equal(t, record.Strings{"_class_kept"}, res.Classes)
	assert.Equal(t, 1, *res.Count)
}

func TestRefreshAllFailed(t *testing.T) {
	ctx := context.Background()
	c, _ := newCatalog(t)

	// the same cause for all datasets is reported as such
	report, err := c.Refresh(ctx, []string{"a", "b"})
	assert.Equal(t, errcode.DatasetNotFoundError, errCode(t, err))
	assert.Contains(t, err.Error(), "dataset a:")
	assert.Equal(t, 2, report.Failed)
	assert.Len(t, report.Results, 2)

	report, err = c.Refresh(ctx, []string{"missing"})
	assert.Equal(t, errcode.DatasetNotFoundError, errCode(t, err))
	assert.Equal(t, 1, report.Failed)

	report, err = c.Refresh(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, report.Results)
}

func TestRefreshAllFailedMixed(t *testing.T) {
	ctx := context.Background()
	st := iomem.New()
	seed(t, st)

	m := &mockStore{Store: st}
	m.On("ScanData", mock.Anything, mock.Anything).Return(nil)
	m.On("ReplaceDataset", mock.Anything, stdKey).
		Return(fmt.Errorf("concurrent write: %w", store.ErrConflict))
	c := catalog.New(testConfig(), m, nil)

	report, err := c.Refresh(ctx, []string{"missing", stdKey})
	assert.Equal(t, errcode.AllRefreshFailedError, errCode(t, err))
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, errcode.DatasetNotFoundError, errCode(t, report.Results[0].Err))
	assert.Equal(t, errcode.RevisionConflictError, errCode(t, report.Results[1].Err))
}

func TestRefreshConflict(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	ctx := context.Background()
	st := iomem.New()
	seed(t, st)

	m := &mockStore{Store: st}
	m.On("ScanData", mock.Anything, mock.Anything).Return(nil)
	m.On("ReplaceDataset", mock.Anything, stdKey).
		Return(fmt.Errorf("concurrent write: %w", store.ErrConflict))
	m.On("ReplaceDataset", mock.Anything, genKey).Return(nil)
	c := catalog.New(testConfig(), m, nil)

	report, err := c.Refresh(ctx, []string{stdKey, genKey})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Refreshed)
	assert.Equal(t, errcode.RevisionConflictError, errCode(t, report.Results[0].Err))
	assert.NoError(t, report.Results[1].Err)
	m.AssertExpectations(t)
}

func TestRefreshScanFailure(t *testing.T) {
	ctx := context.Background()
	st := iomem.New()
	seed(t, st)

	scanErr := fmt.Errorf("connection reset")
	m := &mockStore{Store: st}
	m.On("ScanData", mock.Anything, stdKey).Return(scanErr)
	m.On("ScanData", mock.Anything, genKey).Return(nil)
	m.On("ReplaceDataset", mock.Anything, genKey).Return(nil)
	c := catalog.New(testConfig(), m, nil)

	report, err := c.Refresh(ctx, []string{stdKey, genKey})
	require.NoError(t, err)
	// store errors pass through unchanged
	assert.ErrorIs(t, report.Results[0].Err, scanErr)
	assert.NoError(t, report.Results[1].Err)
}

func TestRefreshCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c, _ := newCatalog(t)

	report, err := c.Refresh(ctx, []string{stdKey, genKey})
	assert.Equal(t, errcode.RefreshCancelledError, errCode(t, err))
	for _, v := range report.Results {
		assert.Equal(t, errcode.RefreshCancelledError, errCode(t, v.Err))
	}
}
