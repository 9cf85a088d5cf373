// Package iofs prepares the file system layout of fgrdb: config and
// log directories and the default config file.
package iofs

import (
	"bytes"
	"os"

	"github.com/eufgis/fgrdb/pkg/config"
	"gopkg.in/yaml.v3"
)

const configHeader = `# fgrdb configuration.
#
# Every setting can be overridden by an environment variable with
# FGRDB_ prefix, for example FGRDB_DATABASE_HOST or FGRDB_LOG_LEVEL.

`

// EnsureDirs creates config and log directories if they are missing.
func EnsureDirs(homeDir string) error {
	dirs := []string{
		config.ConfigDir(homeDir),
		config.LogDir(homeDir),
	}
	for _, v := range dirs {
		if err := touchDir(v); err != nil {
			return err
		}
	}
	return nil
}

func touchDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return CreateDirError(dir, err)
	}

	return nil
}

// ConfigYAML renders the default configuration as YAML.
func ConfigYAML() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(configHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(config.New()); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EnsureConfigFile writes the default configuration unless a config
// file already exists.
func EnsureConfigFile(homeDir string) error {
	configPath := config.ConfigFilePath(homeDir)

	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	bs, err := ConfigYAML()
	if err != nil {
		return CopyFileError(configPath, err)
	}

	if err := os.WriteFile(configPath, bs, 0644); err != nil {
		return CopyFileError(configPath, err)
	}

	return nil
}
