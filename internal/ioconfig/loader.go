// Package ioconfig loads configuration from config.yaml and FGRDB_
// environment variables.
package ioconfig

import (
	"strings"

	"github.com/eufgis/fgrdb/internal/iofs"
	"github.com/eufgis/fgrdb/pkg/config"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override
// settings of config.yaml.
const EnvPrefix = "FGRDB"

// Load reads the config file at cfgPath and applies environment
// variables on top of it. Empty cfgPath means environment only.
// The result is validated by converting it to options of a default
// Config, so invalid values are reported and replaced by defaults.
func Load(cfgPath string) (*config.Config, error) {
	v := viper.New()
	initEnvVars(v)

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, iofs.ReadFileError(cfgPath, err)
		}
	}

	// absent keys keep default values, lists are taken whole
	raw := config.New()
	raw.Catalog.QuantClasses = nil
	if err := v.Unmarshal(raw); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	res := config.New()
	res.Update(raw.ToOptions())
	return res, nil
}

func initEnvVars(v *viper.Viper) {
	// Variables are bound one by one, so it is clear which of them
	// are allowed. They match the fields of config.ToOptions().
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Database configuration
	v.BindEnv("database.host", "FGRDB_DATABASE_HOST")
	v.BindEnv("database.port", "FGRDB_DATABASE_PORT")
	v.BindEnv("database.user", "FGRDB_DATABASE_USER")
	v.BindEnv("database.password", "FGRDB_DATABASE_PASSWORD")
	v.BindEnv("database.database", "FGRDB_DATABASE_DATABASE")
	v.BindEnv("database.ssl_mode", "FGRDB_DATABASE_SSL_MODE")
	v.BindEnv("database.max_conns", "FGRDB_DATABASE_MAX_CONNS")

	// Server configuration
	v.BindEnv("server.port", "FGRDB_SERVER_PORT")
	v.BindEnv("server.base_path", "FGRDB_SERVER_BASE_PATH")

	// Catalog configuration
	v.BindEnv("catalog.quant_classes", "FGRDB_CATALOG_QUANT_CLASSES")
	v.BindEnv("catalog.text_config", "FGRDB_CATALOG_TEXT_CONFIG")
	v.BindEnv("catalog.language", "FGRDB_CATALOG_LANGUAGE")

	// Log configuration
	v.BindEnv("log.level", "FGRDB_LOG_LEVEL")
	v.BindEnv("log.format", "FGRDB_LOG_FORMAT")
	v.BindEnv("log.destination", "FGRDB_LOG_DESTINATION")

	// General configuration
	v.BindEnv("jobs_number", "FGRDB_JOBS_NUMBER")

	v.AutomaticEnv()
}
