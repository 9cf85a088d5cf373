package ioconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/eufgis/fgrdb/internal/ioconfig"
	"github.com/eufgis/fgrdb/internal/iofs"
	"github.com/eufgis/fgrdb/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultFile(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, iofs.EnsureDirs(home))
	require.NoError(t, iofs.EnsureConfigFile(home))

	cfg, err := ioconfig.Load(config.ConfigFilePath(home))
	require.NoError(t, err)
	def := config.New()
	assert.Equal(t, def.Database, cfg.Database)
	assert.Equal(t, def.Server, cfg.Server)
	assert.Equal(t, def.Catalog, cfg.Catalog)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
database:
  host: db.example.org
  port: 6432
server:
  base_path: /fgr/
catalog:
  quant_classes: [_class_quantity]
log:
  format: yaml
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("FGRDB_DATABASE_USER", "fgr")
	t.Setenv("FGRDB_SERVER_PORT", "9090")
	t.Setenv("FGRDB_DATABASE_PORT", "7432")

	cfg, err := ioconfig.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "db.example.org", cfg.Database.Host)
	// env wins over file
	assert.Equal(t, 7432, cfg.Database.Port)
	assert.Equal(t, "fgr", cfg.Database.User)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/fgr", cfg.Server.BasePath)
	assert.Equal(t, []string{"_class_quantity"}, cfg.Catalog.QuantClasses)
	// invalid value falls back to default
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := ioconfig.Load(filepath.Join(t.TempDir(), "none.yaml"))
	assert.Error(t, err)
}
