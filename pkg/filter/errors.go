package filter

import (
	"fmt"

	"github.com/eufgis/fgrdb/pkg/errcode"
	"github.com/gnames/gn"
)

// InvalidFilterError is returned when a filter parameter has a wrong
// shape.
func InvalidFilterError(field string, err error) error {
	msg := "Filter <em>%s</em> is malformed: %s"
	vars := []any{field, err.Error()}
	return &gn.Error{
		Code: errcode.InvalidFilterError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("invalid filter %s: %w", field, err),
	}
}

// InvalidOpError is returned for an unknown chain operator.
func InvalidOpError(op string) error {
	msg := "Operator <em>%s</em> is not supported, use AND or OR"
	vars := []any{op}
	return &gn.Error{
		Code: errcode.InvalidFilterError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("unsupported operator: %s", op),
	}
}
