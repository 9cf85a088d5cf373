package catalog_test

import (
	"context"

	"github.com/eufgis/fgrdb/pkg/record"
	"github.com/eufgis/fgrdb/pkg/store"
	"github.com/stretchr/testify/mock"
)

// mockStore wraps a real store and lets tests override some calls.
type mockStore struct {
	store.Store
	mock.Mock
}

func (m *mockStore) SearchDatasets(ctx context.Context, q store.Query) ([]record.Dataset, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]record.Dataset), args.Error(1)
}

func (m *mockStore) SearchDatasetKeys(ctx context.Context, q store.Query) ([]string, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockStore) SearchData(ctx context.Context, q store.Query) ([]record.Data, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]record.Data), args.Error(1)
}

func (m *mockStore) SearchDataKeys(ctx context.Context, q store.Query) ([]string, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockStore) ScanData(
	ctx context.Context,
	key string,
	fn func(record.Data) error,
) error {
	args := m.Called(ctx, key)
	if err := args.Error(0); err != nil {
		return err
	}
	return m.Store.ScanData(ctx, key, fn)
}

func (m *mockStore) ReplaceDataset(
	ctx context.Context,
	d record.Dataset,
	ifRev string,
) (record.Dataset, error) {
	args := m.Called(ctx, d.Key)
	if err := args.Error(0); err != nil {
		return d, err
	}
	return m.Store.ReplaceDataset(ctx, d, ifRev)
}
