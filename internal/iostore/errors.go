package iostore

import (
	"fmt"

	"github.com/eufgis/fgrdb/pkg/errcode"
	"github.com/gnames/gn"
)

// QueryError is returned when a statement over a table fails.
func QueryError(table string, err error) error {
	msg := "Cannot query <em>%s</em>"
	vars := []any{table}
	return &gn.Error{
		Code: errcode.DBQueryError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("query of %s failed: %w", table, err),
	}
}

// ScanError is returned when a stored document cannot be decoded.
func ScanError(table string, err error) error {
	msg := "Cannot read a document from <em>%s</em>"
	vars := []any{table}
	return &gn.Error{
		Code: errcode.DBScanError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("scan of %s failed: %w", table, err),
	}
}

// WriteError is returned when a document cannot be saved or removed.
func WriteError(table, key string, err error) error {
	msg := "Cannot write <em>%s</em> to <em>%s</em>"
	vars := []any{key, table}
	return &gn.Error{
		Code: errcode.DBWriteError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("write of %s/%s failed: %w", table, key, err),
	}
}
