package catalog

import (
	"errors"
	"fmt"

	"github.com/eufgis/fgrdb/pkg/errcode"
	"github.com/eufgis/fgrdb/pkg/store"
	"github.com/gnames/gn"
)

// DatasetNotFoundError is returned when a dataset does not exist.
func DatasetNotFoundError(key string) error {
	msg := "Dataset <em>%s</em> not found"
	vars := []any{key}
	return &gn.Error{
		Code: errcode.DatasetNotFoundError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("dataset %s: %w", key, store.ErrNotFound),
	}
}

// DataNotFoundError is returned when a data record does not exist.
func DataNotFoundError(key string) error {
	msg := "Data record <em>%s</em> not found"
	vars := []any{key}
	return &gn.Error{
		Code: errcode.DataNotFoundError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("data %s: %w", key, store.ErrNotFound),
	}
}

// DuplicateKeyError is returned when a record with the same key
// already exists.
func DuplicateKeyError(collection, key string) error {
	msg := "A %s record with key <em>%s</em> already exists"
	vars := []any{collection, key}
	return &gn.Error{
		Code: errcode.DuplicateKeyError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("duplicate %s key %s: %w", collection, key, store.ErrConflict),
	}
}

// RevisionConflictError is returned when a record was modified since
// it was read.
func RevisionConflictError(collection, key string) error {
	msg := "The %s record <em>%s</em> was modified by someone else"
	vars := []any{collection, key}
	return &gn.Error{
		Code: errcode.RevisionConflictError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("revision conflict on %s %s: %w", collection, key, store.ErrConflict),
	}
}

// InvalidRecordError is returned when a record misses required fields
// or has malformed values.
func InvalidRecordError(collection string, err error) error {
	msg := "Invalid %s record: %s"
	vars := []any{collection, err.Error()}
	return &gn.Error{
		Code: errcode.InvalidRecordError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("invalid %s record: %w", collection, err),
	}
}

// InsufficientKeysError is returned when a dataset declares fewer than
// two key fields and cannot be summarised by a pivot.
func InsufficientKeysError(key string, n int) error {
	msg := "Dataset <em>%s</em> declares %d key field(s), at least 2 are needed"
	vars := []any{key, n}
	return &gn.Error{
		Code: errcode.InsufficientKeysError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("dataset %s has %d key fields", key, n),
	}
}

// PivotNotDeclaredError is returned when the pivot is neither a key
// nor a summary field of the dataset.
func PivotNotDeclaredError(key, pivot string) error {
	msg := "Field <em>%s</em> is not a key or summary field of dataset <em>%s</em>"
	vars := []any{pivot, key}
	return &gn.Error{
		Code: errcode.PivotNotDeclaredError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("pivot %s is not declared in dataset %s", pivot, key),
	}
}

// GeneticPivotError is returned when a genetic dataset is summarised
// by anything but species.
func GeneticPivotError(key, pivot string) error {
	msg := "Genetic dataset <em>%s</em> can only be summarised by species, not <em>%s</em>"
	vars := []any{key, pivot}
	return &gn.Error{
		Code: errcode.GeneticPivotError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("genetic dataset %s pivot %s", key, pivot),
	}
}

// RefreshCancelledError is returned for datasets that were not
// refreshed because the operation was cancelled.
func RefreshCancelledError(key string, err error) error {
	msg := "Refresh of dataset <em>%s</em> was cancelled"
	vars := []any{key}
	return &gn.Error{
		Code: errcode.RefreshCancelledError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("refresh of %s cancelled: %w", key, err),
	}
}

// AllRefreshFailedError is returned when none of the datasets could
// be refreshed.
func AllRefreshFailedError(n int, err error) error {
	msg := "None of %d dataset(s) could be refreshed"
	vars := []any{n}
	return &gn.Error{
		Code: errcode.AllRefreshFailedError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("all %d refreshes failed: %w", n, err),
	}
}

func datasetError(key string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return DatasetNotFoundError(key)
	case errors.Is(err, store.ErrConflict):
		return RevisionConflictError("dataset", key)
	}
	return err
}

func dataError(key string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return DataNotFoundError(key)
	case errors.Is(err, store.ErrConflict):
		return RevisionConflictError("data", key)
	}
	return err
}

func isConflict(err error) bool {
	return errors.Is(err, store.ErrConflict)
}
