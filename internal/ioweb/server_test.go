package ioweb_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eufgis/fgrdb/internal/iomem"
	"github.com/eufgis/fgrdb/internal/ioweb"
	"github.com/eufgis/fgrdb/pkg/catalog"
	"github.com/eufgis/fgrdb/pkg/config"
	"github.com/eufgis/fgrdb/pkg/errcode"
	"github.com/eufgis/fgrdb/pkg/record"
	"github.com/eufgis/fgrdb/pkg/species"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	base   = "/api/v1"
	stdKey = "ds-std"
)

func newServer(t *testing.T) http.Handler {
	ctx := context.Background()
	cfg := config.New()
	cfg.Update([]config.Option{config.OptJobsNumber(2)})

	pool := species.NewPool(1)
	t.Cleanup(pool.Close)
	cat := catalog.New(cfg, iomem.New(), pool)

	_, err := cat.CreateDataset(ctx, record.Dataset{
		Key:          stdKey,
		Project:      "EUFGIS",
		Code:         "HEIGHT",
		Title:        record.Text{"iso_639_3_eng": "Height of beech trees"},
		TermsKey:     record.Strings{"chr_tree_code", "std_date"},
		TermsSummary: record.Strings{"gcu_id_number"},
		TermsQuant:   record.Strings{"chr_Height"},
	})
	require.NoError(t, err)

	data := []record.Data{
		{Key: "d1", DatasetID: stdKey, Date: "1999", GCUID: "ESP0001",
			Species: "Fagus sylvatica", TreeCode: "T1",
			Attrs: map[string]any{"chr_Height": 10.0}},
		{Key: "d2", DatasetID: stdKey, Date: "2000", GCUID: "ESP0001",
			Species: "Fagus sylvatica", TreeCode: "T2",
			Attrs: map[string]any{"chr_Height": 20.0}},
		{Key: "d3", DatasetID: stdKey, Date: "2020", GCUID: "FRA0001",
			Species: "Abies alba", TreeCode: "T3",
			Attrs: map[string]any{"chr_Height": 30.0}},
	}
	for _, v := range data {
		_, err = cat.CreateData(ctx, v)
		require.NoError(t, err)
	}

	return ioweb.New(cfg, cat).Handler()
}

func call(
	t *testing.T,
	h http.Handler,
	method, path string,
	body any,
	header ...string,
) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var res T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res), w.Body.String())
	return res
}

func TestVersionHealth(t *testing.T) {
	h := newServer(t)

	w := call(t, h, http.MethodGet, base+"/version", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode[map[string]string](t, w), "version")

	w = call(t, h, http.MethodGet, base+"/healthcheck", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[map[string]any](t, w)["healthy"])
}

func TestDatasetCRUD(t *testing.T) {
	h := newServer(t)
	path := base + "/dataset"

	w := call(t, h, http.MethodPost, path, map[string]any{
		"std_project":   "EUFGIS",
		"std_dataset":   "DBH",
		"std_terms_key": []string{"chr_tree_code", "std_date"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]any](t, w)
	key := created["_key"].(string)
	rev := created["_rev"].(string)
	assert.NotEmpty(t, key)
	assert.NotEmpty(t, rev)

	w = call(t, h, http.MethodPost, path, map[string]any{
		"_key": key, "std_project": "EUFGIS", "std_dataset": "DBH",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = call(t, h, http.MethodGet, path+"/"+key, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DBH", decode[map[string]any](t, w)["std_dataset"])

	// stale revision in the header
	w = call(t, h, http.MethodPut, path+"/"+key, map[string]any{
		"std_project": "EUFGIS", "std_dataset": "DBH2",
	}, "If-Match", "stale")
	assert.Equal(t, http.StatusConflict, w.Code)
	errRes := decode[ioweb.ErrorResponse](t, w)
	assert.Equal(t, int(errcode.RevisionConflictError), errRes.Code)
	assert.NotContains(t, errRes.Message, "<em>")

	w = call(t, h, http.MethodPut, path+"/"+key, map[string]any{
		"_rev": rev, "std_project": "EUFGIS", "std_dataset": "DBH2",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rev = decode[map[string]any](t, w)["_rev"].(string)

	w = call(t, h, http.MethodPatch, path+"/"+key, map[string]any{
		"_rev": rev, "_title": map[string]any{"iso_639_3_eng": "Diameter"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	patched := decode[map[string]any](t, w)
	assert.Equal(t, "DBH2", patched["std_dataset"])
	assert.Equal(t, map[string]any{"iso_639_3_eng": "Diameter"}, patched["_title"])

	w = call(t, h, http.MethodGet, path+"?start=0&limit=1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = call(t, h, http.MethodGet, path+"?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(t, h, http.MethodDelete, path+"/"+key, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = call(t, h, http.MethodGet, path+"/"+key, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, int(errcode.DatasetNotFoundError),
		decode[ioweb.ErrorResponse](t, w).Code)
}

func TestDataCRUD(t *testing.T) {
	h := newServer(t)
	path := base + "/data"

	w := call(t, h, http.MethodPost, path, map[string]any{
		"_key": "d9", "std_dataset_id": "missing", "std_date": "2001",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = call(t, h, http.MethodPost, path, map[string]any{
		"_key": "d9", "std_dataset_id": stdKey, "std_date": "2001",
		"chr_tree_code": "T9", "chr_Height": 12.5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = call(t, h, http.MethodPatch, path+"/d9", map[string]any{
		"chr_Height": nil, "chr_Note": "wet",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[map[string]any](t, w)
	assert.NotContains(t, res, "chr_Height")
	assert.Equal(t, "wet", res["chr_Note"])

	w = call(t, h, http.MethodDelete, path+"/d9", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = call(t, h, http.MethodDelete, path+"/d9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQuery(t *testing.T) {
	h := newServer(t)

	tests := []struct {
		msg    string
		path   string
		params map[string]any
		status int
		keys   []string
	}{
		{"date range", "/data/query/keys", map[string]any{
			"std_date": map[string]any{"start": "2000", "end": "2020"},
		}, http.StatusOK, []string{"d2", "d3"}},
		{"or", "/data/query/keys?op=OR", map[string]any{
			"gcu_id_number": "FRA%", "chr_tree_code": []string{"T1"},
		}, http.StatusOK, []string{"d1", "d3"}},
		{"and", "/data/query/keys?op=and", map[string]any{
			"gcu_id_number": "ESP%", "species": "fagus",
		}, http.StatusOK, []string{"d1", "d2"}},
		{"page", "/data/query/keys?start=1&limit=1", map[string]any{
			"gcu_id_number": "ESP%",
		}, http.StatusOK, []string{"d2"}},
		{"nothing to search", "/data/query/keys", map[string]any{
			"colour": "red",
		}, http.StatusOK, []string{}},
		{"no body", "/data/query/keys", nil, http.StatusOK, []string{}},
		{"dataset", "/data/dataset/" + stdKey + "/query/keys", map[string]any{
			"species": "abies",
		}, http.StatusOK, []string{"d3"}},
		{"datasets", "/dataset/query/keys", map[string]any{
			"_title": "beech",
		}, http.StatusOK, []string{stdKey}},
		{"bad op", "/data/query/keys?op=XOR", map[string]any{
			"species": "abies",
		}, http.StatusBadRequest, nil},
		{"bad filter", "/data/query/keys", map[string]any{
			"std_date": "2000",
		}, http.StatusBadRequest, nil},
		{"missing dataset", "/data/dataset/missing/query/keys", map[string]any{
			"species": "abies",
		}, http.StatusNotFound, nil},
	}

	for _, v := range tests {
		w := call(t, h, http.MethodPost, base+v.path, v.params)
		require.Equal(t, v.status, w.Code, v.msg+": "+w.Body.String())
		if v.status != http.StatusOK {
			continue
		}
		assert.Equal(t, v.keys, decode[[]string](t, w), v.msg)
	}
}

func TestQueryDocuments(t *testing.T) {
	h := newServer(t)

	w := call(t, h, http.MethodPost, base+"/data/query?sort=chr_Height&desc=true",
		map[string]any{"gcu_id_number": "ESP%"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[[]map[string]any](t, w)
	require.Len(t, res, 2)
	assert.Equal(t, "d2", res[0]["_key"])
	assert.Equal(t, 20.0, res[0]["chr_Height"])

	w = call(t, h, http.MethodGet,
		base+"/data/dataset/"+stdKey+"?sort=std_date&desc=true&limit=0", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res = decode[[]map[string]any](t, w)
	require.Len(t, res, 3)
	assert.Equal(t, "d3", res[0]["_key"])
}

func TestSummaries(t *testing.T) {
	h := newServer(t)

	w := call(t, h, http.MethodGet, base+"/dataset/qualify/"+stdKey, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	smr := decode[map[string]any](t, w)
	assert.Equal(t, 3.0, smr["count"])
	assert.Equal(t, "1999", smr["std_date_start"])

	w = call(t, h, http.MethodGet,
		base+"/dataset/stats/"+stdKey+"?pivot=gcu_id_number&stat=AVG", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []map[string]any{
		{"gcu_id_number": "ESP0001", "chr_Height": 15.0},
		{"gcu_id_number": "FRA0001", "chr_Height": 30.0},
	}, decode[[]map[string]any](t, w))

	w = call(t, h, http.MethodGet,
		base+"/dataset/stats/"+stdKey+"?pivot=gcu_id_number&stat=SUM", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(t, h, http.MethodGet, base+"/dataset/stats/"+stdKey, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefresh(t *testing.T) {
	h := newServer(t)

	w := call(t, h, http.MethodPost, base+"/dataset/refresh?all=true", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decode[catalog.RefreshReport](t, w)
	assert.Equal(t, 1, report.Refreshed)
	require.Len(t, report.Results, 1)
	assert.Equal(t, 3, report.Results[0].Count)

	w = call(t, h, http.MethodGet, base+"/dataset/"+stdKey, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3.0, decode[map[string]any](t, w)["count"])

	w = call(t, h, http.MethodPost, base+"/dataset/refresh", []string{"missing"})
	require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
	res := decode[ioweb.ErrorResponse](t, w)
	assert.Equal(t, int(errcode.DatasetNotFoundError), res.Code)
	assert.Equal(t, "Dataset missing not found", res.Message)
	details, ok := res.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 1.0, details["failed"])
	results, ok := details["results"].([]any)
	require.True(t, ok)
	require.Len(t, results, 1)
	assert.Equal(t, "missing", results[0].(map[string]any)["key"])
}

func TestMetrics(t *testing.T) {
	h := newServer(t)
	call(t, h, http.MethodGet, base+"/version", nil)

	w := call(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(),
		`fgrdb_http_requests_total{method="GET",route="/api/v1/version",status="200"} 1`)
}
