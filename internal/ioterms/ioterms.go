// Package ioterms reads term catalogue files. A file is either a JSON
// array of terms or JSON lines with one term per line, as produced by
// document store exports.
package ioterms

import (
	"bytes"
	"os"

	"github.com/eufgis/fgrdb/internal/iofs"
	"github.com/eufgis/fgrdb/pkg/record"
	"github.com/gnames/gnfmt"
)

// ReadFile reads terms from a file.
func ReadFile(path string) ([]record.Term, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, iofs.ReadFileError(path, err)
	}
	return Decode(path, b)
}

// Decode decodes terms from the content of a file. The path is used
// only in error messages.
func Decode(path string, b []byte) ([]record.Term, error) {
	var res []record.Term
	enc := gnfmt.GNjson{}

	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return res, nil
	}

	if b[0] == '[' {
		if err := enc.Decode(b, &res); err != nil {
			return nil, DecodeError(path, 0, err)
		}
		return res, nil
	}

	for i, line := range bytes.Split(b, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var t record.Term
		if err := enc.Decode(line, &t); err != nil {
			return nil, DecodeError(path, i+1, err)
		}
		res = append(res, t)
	}
	return res, nil
}
