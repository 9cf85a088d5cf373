// Package config provides configuration management for fgrdb.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - Database: host, port, user, password, database, ssl_mode, max_conns
//   - Server: port, base_path
//   - Catalog: quant_classes, text_config, language
//   - Log: level, format, destination
//   - General: jobs_number
//
// Runtime-only fields (set by CLI):
//   - HomeDir (set once at startup)
//
// # Environment Variables
//
// Use FGRDB_ prefix with underscores for nesting:
//
//	FGRDB_DATABASE_HOST=localhost
//	FGRDB_DATABASE_PORT=5432
//	FGRDB_SERVER_PORT=8080
//	FGRDB_LOG_LEVEL=info
//	FGRDB_JOBS_NUMBER=8
package config

import (
	"runtime"
	"slices"

	"github.com/eufgis/fgrdb/pkg/summary"
)

// Config represents the complete fgrdb configuration.
type Config struct {
	// Database contains PostgreSQL connection settings.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Server contains settings of the REST service.
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Catalog contains settings of searches and summaries.
	Catalog CatalogConfig `mapstructure:"catalog" yaml:"catalog"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber is the number of datasets refreshed concurrently.
	// Default value is set according to the number of available threads.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// HomeDir determines where config and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string `yaml:"-"`
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`

	// MaxConns limits the size of the connection pool.
	MaxConns int `mapstructure:"max_conns" yaml:"max_conns"`
}

// ServerConfig contains settings of the REST service.
type ServerConfig struct {
	// Port the service listens on.
	Port int `mapstructure:"port" yaml:"port"`

	// BasePath is the prefix of all routes, for example "/api/v1".
	BasePath string `mapstructure:"base_path" yaml:"base_path"`
}

// CatalogConfig contains settings of searches and summaries.
type CatalogConfig struct {
	// QuantClasses are term classes that mark quantitative variables.
	QuantClasses []string `mapstructure:"quant_classes" yaml:"quant_classes"`

	// TextConfig is the PostgreSQL text search configuration used
	// as the analyzer of text filters.
	TextConfig string `mapstructure:"text_config" yaml:"text_config"`

	// Language restricts text search of multilingual fields to one
	// language code. Empty means all languages.
	Language string `mapstructure:"language" yaml:"language"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json' or 'text'.
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "postgres",
			Database: "fgrdb",
			SSLMode:  "disable",
			MaxConns: 10,
		},
		Server: ServerConfig{
			Port:     8080,
			BasePath: "/api/v1",
		},
		Catalog: CatalogConfig{
			QuantClasses: slices.Clone(summary.DefaultQuantClasses),
			TextConfig:   "simple",
		},
		Log: LogConfig{
			Format:      "json",
			Level:       "info",
			Destination: "file",
		},
		JobsNumber: runtime.NumCPU(),
	}

	return res
}
