// Package lifecycle defines contracts of the database lifecycle stages.
package lifecycle

import (
	"context"

	"github.com/eufgis/fgrdb/pkg/config"
)

// SchemaManager defines the interface for database schema management.
// It uses GORM AutoMigrate to create tables and then adds document
// indexes. Schema management is idempotent, safe to run multiple times.
type SchemaManager interface {
	// Create creates the initial database schema.
	Create(ctx context.Context, cfg *config.Config) error

	// Migrate updates the database schema to the latest version.
	Migrate(ctx context.Context, cfg *config.Config) error
}
