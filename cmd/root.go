/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>
Copyright © 2025 The fgrdb Authors

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/eufgis/fgrdb/internal/ioconfig"
	"github.com/eufgis/fgrdb/internal/iofs"
	"github.com/eufgis/fgrdb/internal/iologger"
	app "github.com/eufgis/fgrdb/pkg"
	"github.com/eufgis/fgrdb/pkg/config"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

var (
	homeDir string
	cfgFile string
	cfg     *config.Config
)

// getRootCmd returns the root command with all subcommands attached.
func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Version: fmt.Sprintf("version: %s\nbuild:   %s", app.Version, app.Build),
		Use:     "fgrdb",
		Short:   "FGRdb serves the catalogue of forest genetic resources",
		Long: `FGRdb keeps the catalogue of forest genetic resources in PostgreSQL
and serves it as a REST service.

Features:
  - Schema Management: create and migrate document tables
  - Search: filtered queries over datasets and data records
  - Summaries: derived facets and grouped statistics of datasets
  - Refresh: recompute and store derived facets of datasets
  - Terms: import the term catalogue of data fields

Configuration precedence (highest to lowest):
  1. CLI flags (--port, etc.)
  2. Environment variables (FGRDB_*)
  3. Config file (~/.config/fgrdb/config.yaml)
  4. Built-in defaults

Environment Variables:
  Nested fields use underscores (database.host → FGRDB_DATABASE_HOST).

  Examples:
    FGRDB_DATABASE_HOST         PostgreSQL host
    FGRDB_DATABASE_PASSWORD     PostgreSQL password
    FGRDB_SERVER_PORT           Port of the REST service
    FGRDB_LOG_LEVEL             Log level (debug/info/warn/error)
    FGRDB_JOBS_NUMBER           Number of concurrent workers`,
		PersistentPreRunE: bootstrap,
		RunE:              runRoot,
		SilenceErrors:     true,
		SilenceUsage:      true,
	}

	// Remove the automatic "fgrdb version" prefix
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ~/.config/fgrdb/config.yaml)")
	rootCmd.Flags().BoolP("version", "V", false, "version for fgrdb")

	rootCmd.AddCommand(
		getCreateCmd(),
		getMigrateCmd(),
		getServeCmd(),
		getRefreshCmd(),
		getQualifyCmd(),
		getStatsCmd(),
		getTermsCmd(),
	)
	return rootCmd
}

func bootstrap(cmd *cobra.Command, args []string) error {
	var err error
	homeDir, err = os.UserHomeDir()
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureDirs(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	// Logging with defaults until the user's settings are known
	defaultLog := config.LogConfig{
		Format:      "json",
		Level:       "info",
		Destination: "file",
	}
	if err = iologger.Init(config.LogDir(homeDir), defaultLog); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	path := cfgFile
	if path == "" {
		if err = iofs.EnsureConfigFile(homeDir); err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
		path = config.ConfigFilePath(homeDir)
	}

	if cfg, err = ioconfig.Load(path); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	cfg.Update([]config.Option{config.OptHomeDir(homeDir)})

	if err = iologger.Init(config.LogDir(cfg.HomeDir), cfg.Log); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	slog.Info("Configuration loaded", "config_file", path)
	return nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	versionFlag(cmd)
	return cmd.Help()
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := getRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
