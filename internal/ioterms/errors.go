package ioterms

import (
	"fmt"

	"github.com/eufgis/fgrdb/pkg/errcode"
	"github.com/gnames/gn"
)

// DecodeError is returned when a terms file is not a JSON array of
// terms or JSON lines with one term per line.
func DecodeError(path string, line int, err error) error {
	msg := "Cannot decode terms from <em>%s</em>"
	vars := []any{path}
	if line > 0 {
		msg += " at line <em>%d</em>"
		vars = append(vars, line)
	}
	return &gn.Error{
		Code: errcode.TermsDecodeError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot decode terms from %s: %w", path, err),
	}
}
