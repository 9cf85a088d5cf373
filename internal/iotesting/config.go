// Package iotesting provides shared utilities for integration tests.
package iotesting

import (
	"github.com/eufgis/fgrdb/internal/ioconfig"
	"github.com/eufgis/fgrdb/pkg/config"
)

const (
	// TestDatabaseName is the database name used for all integration tests.
	// This ensures tests never accidentally run against production databases.
	TestDatabaseName = "fgrdb_test"
)

// GetTestConfig returns a configuration suitable for integration tests.
// It takes defaults and FGRDB_ environment variables and overrides the
// database name with TestDatabaseName.
//
// Usage in integration tests:
//
//	func TestSomething(t *testing.T) {
//	    if testing.Short() {
//	        t.Skip("Skipping integration test")
//	    }
//	    cfg := iotesting.GetTestConfig()
//	    // ... use cfg for database operations
//	}
func GetTestConfig() *config.Config {
	cfg, err := ioconfig.Load("")
	if err != nil {
		cfg = config.New()
	}
	cfg.Update([]config.Option{
		config.OptDatabaseDatabase(TestDatabaseName),
		config.OptJobsNumber(2),
	})
	return cfg
}

// GetTestDatabaseConfig returns only the database configuration for tests.
func GetTestDatabaseConfig() *config.DatabaseConfig {
	cfg := GetTestConfig()
	return &cfg.Database
}
