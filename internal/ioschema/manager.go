// Package ioschema implements SchemaManager interface for
// database schema management. This is an impure I/O package
// that wraps GORM AutoMigrate functionality.
package ioschema

import (
	"context"
	"log/slog"

	"github.com/eufgis/fgrdb/pkg/config"
	"github.com/eufgis/fgrdb/pkg/db"
	"github.com/eufgis/fgrdb/pkg/lifecycle"
	"github.com/eufgis/fgrdb/pkg/schema"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// manager implements the lifecycle.SchemaManager interface
// using GORM AutoMigrate.
type manager struct {
	operator db.Operator
}

// NewManager creates a new SchemaManager.
func NewManager(op db.Operator) lifecycle.SchemaManager {
	return &manager{operator: op}
}

// Create creates tables, sets "C" collation on keys and creates
// document indexes.
func (m *manager) Create(
	ctx context.Context,
	cfg *config.Config,
) error {
	gormDB, err := m.gorm()
	if err != nil {
		return err
	}

	if err := schema.Migrate(gormDB.WithContext(ctx)); err != nil {
		return CreateSchemaError(err)
	}

	if err := m.setCollation(ctx); err != nil {
		return err
	}

	if err := m.createIndexes(ctx); err != nil {
		return err
	}

	slog.Info("Database schema created", "database", cfg.Database.Database)
	return nil
}

// Migrate updates the database schema to the latest version
// using GORM AutoMigrate. Missing indexes are created.
func (m *manager) Migrate(
	ctx context.Context,
	cfg *config.Config,
) error {
	gormDB, err := m.gorm()
	if err != nil {
		return err
	}

	if err := schema.Migrate(gormDB.WithContext(ctx)); err != nil {
		return MigrateSchemaError(err)
	}

	if err := m.createIndexes(ctx); err != nil {
		return err
	}

	slog.Info("Database schema migrated", "database", cfg.Database.Database)
	return nil
}

func (m *manager) gorm() (*gorm.DB, error) {
	pool := m.operator.Pool()
	if pool == nil {
		return nil, NotConnectedError()
	}

	sqlDB := stdlib.OpenDBFromPool(pool)

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{Conn: sqlDB}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		return nil, GORMConnectionError(err)
	}
	return gormDB, nil
}

// setCollation sets "C" collation on key columns, so keys are
// ordered byte-wise.
func (m *manager) setCollation(ctx context.Context) error {
	pool := m.operator.Pool()

	type columnDef struct {
		table, column string
	}

	columns := []columnDef{
		{"datasets", "key"},
		{"data", "key"},
		{"data", "dataset_id"},
		{"terms", "gid"},
	}

	qStr := `ALTER TABLE %s ALTER COLUMN %s TYPE TEXT COLLATE "C"`

	for _, col := range columns {
		q := formatCollationSQL(qStr, col.table, col.column)
		if _, err := pool.Exec(ctx, q); err != nil {
			return CollationError(col.table, col.column, err)
		}
	}

	return nil
}

func (m *manager) createIndexes(ctx context.Context) error {
	pool := m.operator.Pool()
	for _, q := range schema.Indexes() {
		if _, err := pool.Exec(ctx, q); err != nil {
			return IndexError(q, err)
		}
	}
	return nil
}
