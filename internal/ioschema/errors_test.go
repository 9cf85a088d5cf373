package ioschema

import (
	"errors"
	"testing"

	"github.com/eufgis/fgrdb/pkg/errcode"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotConnectedError(t *testing.T) {
	gnErr, ok := NotConnectedError().(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.DBNotConnectedError, gnErr.Code)
	assert.NotEmpty(t, gnErr.Msg)
}

func TestErrors(t *testing.T) {
	orig := errors.New("boom")
	tests := []struct {
		name  string
		err   error
		code  gn.ErrorCode
		nVars int
	}{
		{"gorm", GORMConnectionError(orig), errcode.SchemaGORMConnectionError, 0},
		{"create", CreateSchemaError(orig), errcode.SchemaCreateError, 0},
		{"migrate", MigrateSchemaError(orig), errcode.SchemaMigrateError, 0},
		{"collation", CollationError("data", "key", orig),
			errcode.SchemaCollationError, 2},
		{"index", IndexError("CREATE INDEX", orig), errcode.SchemaIndexError, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gnErr, ok := tt.err.(*gn.Error)
			require.True(t, ok)
			assert.Equal(t, tt.code, gnErr.Code)
			assert.Len(t, gnErr.Vars, tt.nVars)
			assert.ErrorIs(t, gnErr.Err, orig)
		})
	}
}
