package db_test

import (
	"testing"

	"github.com/eufgis/fgrdb/internal/iodb"
	"github.com/eufgis/fgrdb/pkg/db"
)

// TestPgxOperatorImplementsInterface is a compile-time contract check.
func TestPgxOperatorImplementsInterface(t *testing.T) {
	var _ db.Operator = iodb.NewPgxOperator()
}
