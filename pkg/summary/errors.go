package summary

import (
	"fmt"

	"github.com/eufgis/fgrdb/pkg/errcode"
	"github.com/gnames/gn"
)

// UnsupportedStatError is returned for an unknown statistic name.
func UnsupportedStatError(name string) error {
	msg := "Statistic <em>%s</em> is not supported"
	vars := []any{name}
	return &gn.Error{
		Code: errcode.UnsupportedStatError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("unsupported statistic: %s", name),
	}
}
