// Package iomem implements store.Store in memory. It evaluates
// predicates with filter.Matches and is used by tests and by
// `fgrdb serve --memory`.
package iomem

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/eufgis/fgrdb/pkg/filter"
	"github.com/eufgis/fgrdb/pkg/record"
	"github.com/eufgis/fgrdb/pkg/store"
	"github.com/google/uuid"
)

type memStore struct {
	mu       sync.RWMutex
	datasets map[string]record.Dataset
	data     map[string]record.Data
	terms    map[string]record.Term
}

// New creates an empty in-memory store.
func New() store.Store {
	return &memStore{
		datasets: make(map[string]record.Dataset),
		data:     make(map[string]record.Data),
		terms:    make(map[string]record.Term),
	}
}

func (m *memStore) Close() error {
	return nil
}

func (m *memStore) ListDatasets(
	ctx context.Context,
	page store.Page,
) ([]record.Dataset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := paginate(sortedKeys(m.datasets), page)
	res := make([]record.Dataset, 0, len(keys))
	for _, k := range keys {
		res = append(res, clone(m.datasets[k]))
	}
	return res, nil
}

func (m *memStore) GetDataset(
	ctx context.Context,
	key string,
) (record.Dataset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.datasets[key]
	if !ok {
		return record.Dataset{}, fmt.Errorf("dataset %s: %w", key, store.ErrNotFound)
	}
	return clone(d), nil
}

func (m *memStore) CreateDataset(
	ctx context.Context,
	d record.Dataset,
) (record.Dataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.datasets[d.Key]; ok {
		return d, fmt.Errorf("dataset %s: %w", d.Key, store.ErrConflict)
	}
	d.Rev = uuid.NewString()
	m.datasets[d.Key] = clone(d)
	return d, nil
}

func (m *memStore) ReplaceDataset(
	ctx context.Context,
	d record.Dataset,
	ifRev string,
) (record.Dataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.datasets[d.Key]
	if !ok {
		return d, fmt.Errorf("dataset %s: %w", d.Key, store.ErrNotFound)
	}
	if ifRev != "" && ifRev != old.Rev {
		return d, fmt.Errorf("dataset %s rev %s: %w", d.Key, ifRev, store.ErrConflict)
	}
	d.Rev = uuid.NewString()
	m.datasets[d.Key] = clone(d)
	return d, nil
}

func (m *memStore) DeleteDataset(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.datasets[key]; !ok {
		return fmt.Errorf("dataset %s: %w", key, store.ErrNotFound)
	}
	delete(m.datasets, key)
	return nil
}

func (m *memStore) SearchDatasets(
	ctx context.Context,
	q store.Query,
) ([]record.Dataset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs := make(map[string]map[string]any, len(m.datasets))
	for k, v := range m.datasets {
		doc, err := v.Doc()
		if err != nil {
			return nil, err
		}
		docs[k] = doc
	}
	keys := search(docs, q)
	res := make([]record.Dataset, 0, len(keys))
	for _, k := range keys {
		res = append(res, clone(m.datasets[k]))
	}
	return res, nil
}

func (m *memStore) SearchDatasetKeys(
	ctx context.Context,
	q store.Query,
) ([]string, error) {
	res, err := m.SearchDatasets(ctx, q)
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(res))
	for i, v := range res {
		keys[i] = v.Key
	}
	return keys, nil
}

func (m *memStore) ListData(
	ctx context.Context,
	page store.Page,
) ([]record.Data, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := paginate(sortedKeys(m.data), page)
	res := make([]record.Data, 0, len(keys))
	for _, k := range keys {
		res = append(res, clone(m.data[k]))
	}
	return res, nil
}

func (m *memStore) GetData(ctx context.Context, key string) (record.Data, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.data[key]
	if !ok {
		return record.Data{}, fmt.Errorf("data %s: %w", key, store.ErrNotFound)
	}
	return clone(d), nil
}

func (m *memStore) CreateData(
	ctx context.Context,
	d record.Data,
) (record.Data, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[d.Key]; ok {
		return d, fmt.Errorf("data %s: %w", d.Key, store.ErrConflict)
	}
	d.Rev = uuid.NewString()
	m.data[d.Key] = clone(d)
	return d, nil
}

func (m *memStore) ReplaceData(
	ctx context.Context,
	d record.Data,
	ifRev string,
) (record.Data, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.data[d.Key]
	if !ok {
		return d, fmt.Errorf("data %s: %w", d.Key, store.ErrNotFound)
	}
	if ifRev != "" && ifRev != old.Rev {
		return d, fmt.Errorf("data %s rev %s: %w", d.Key, ifRev, store.ErrConflict)
	}
	d.Rev = uuid.NewString()
	m.data[d.Key] = clone(d)
	return d, nil
}

func (m *memStore) DeleteData(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; !ok {
		return fmt.Errorf("data %s: %w", key, store.ErrNotFound)
	}
	delete(m.data, key)
	return nil
}

func (m *memStore) SearchData(
	ctx context.Context,
	q store.Query,
) ([]record.Data, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs := make(map[string]map[string]any, len(m.data))
	for k, v := range m.data {
		docs[k] = v.Doc()
	}
	keys := search(docs, q)
	res := make([]record.Data, 0, len(keys))
	for _, k := range keys {
		res = append(res, clone(m.data[k]))
	}
	return res, nil
}

func (m *memStore) SearchDataKeys(
	ctx context.Context,
	q store.Query,
) ([]string, error) {
	res, err := m.SearchData(ctx, q)
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(res))
	for i, v := range res {
		keys[i] = v.Key
	}
	return keys, nil
}

func (m *memStore) ScanData(
	ctx context.Context,
	datasetKey string,
	fn func(record.Data) error,
) error {
	m.mu.RLock()
	var recs []record.Data
	for _, k := range sortedKeys(m.data) {
		if d := m.data[k]; d.DatasetID == datasetKey {
			recs = append(recs, clone(d))
		}
	}
	m.mu.RUnlock()

	for _, d := range recs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(d); err != nil {
			return err
		}
	}
	return nil
}

func (m *memStore) TermsByIDs(
	ctx context.Context,
	ids []string,
) ([]record.Term, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []record.Term
	for _, id := range ids {
		if t, ok := m.terms[id]; ok {
			res = append(res, t)
		}
	}
	return res, nil
}

func (m *memStore) PutTerms(ctx context.Context, terms []record.Term) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range terms {
		m.terms[t.GID] = t
	}
	return nil
}

// search returns keys of matching documents: scope predicates joined
// by AND, then predicates joined by the query operator. The page is
// taken in key order and then sorted.
func search(docs map[string]map[string]any, q store.Query) []string {
	var keys []string
	for _, k := range sortedKeys(docs) {
		doc := docs[k]
		if len(q.Scope) > 0 && !filter.Matches(doc, q.Scope, filter.And) {
			continue
		}
		if len(q.Predicates) > 0 && !filter.Matches(doc, q.Predicates, q.Op) {
			continue
		}
		keys = append(keys, k)
	}
	keys = paginate(keys, q.Page)

	if len(q.Sort.Fields) > 0 {
		slices.SortStableFunc(keys, func(a, b string) int {
			for _, f := range q.Sort.Fields {
				c := compareValues(docs[a][f], docs[b][f])
				if q.Sort.Desc {
					c = -c
				}
				if c != 0 {
					return c
				}
			}
			return 0
		})
	}
	return keys
}

func paginate(keys []string, page store.Page) []string {
	if page.Start > 0 {
		if page.Start >= len(keys) {
			return nil
		}
		keys = keys[page.Start:]
	}
	if page.Limit > 0 && page.Limit < len(keys) {
		keys = keys[:page.Limit]
	}
	return keys
}

// compareValues orders missing values first, numbers before strings.
func compareValues(a, b any) int {
	fa, aNum := toFloat(a)
	fb, bNum := toFloat(b)
	sa, aStr := a.(string)
	sb, bStr := b.(string)
	switch {
	case aNum && bNum:
		return cmp.Compare(fa, fb)
	case aStr && bStr:
		return strings.Compare(sa, sb)
	}
	return cmp.Compare(rank(a, aNum, aStr), rank(b, bNum, bStr))
}

func rank(v any, isNum, isStr bool) int {
	switch {
	case v == nil:
		return 0
	case isNum:
		return 1
	case isStr:
		return 2
	}
	return 3
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	}
	return 0, false
}

func sortedKeys[T any](m map[string]T) []string {
	res := make([]string, 0, len(m))
	for k := range m {
		res = append(res, k)
	}
	slices.Sort(res)
	return res
}

// clone makes a deep copy of a record through its JSON form.
func clone[T any](v T) T {
	var res T
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	if err = json.Unmarshal(b, &res); err != nil {
		return v
	}
	return res
}
