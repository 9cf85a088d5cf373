package cmd

import (
	"fmt"
	"os"

	app "github.com/eufgis/fgrdb/pkg"
	"github.com/eufgis/fgrdb/pkg/config"
	"github.com/spf13/cobra"
)

type funcFlag func(cmd *cobra.Command) []config.Option

func versionFlag(cmd *cobra.Command) {
	hasVersionFlag, _ := cmd.Flags().GetBool("version")
	if hasVersionFlag {
		fmt.Printf("\nversion: %s\nbuild: %s\n\n", app.Version, app.Build)
		os.Exit(0)
	}
}

func portFlag(cmd *cobra.Command) []config.Option {
	port, _ := cmd.Flags().GetInt("port")
	if port == 0 {
		return nil
	}
	return []config.Option{config.OptServerPort(port)}
}

func jobsFlag(cmd *cobra.Command) []config.Option {
	jobs, _ := cmd.Flags().GetInt("jobs")
	if jobs == 0 {
		return nil
	}
	return []config.Option{config.OptJobsNumber(jobs)}
}

// applyFlags updates the configuration with values of given flags.
func applyFlags(cmd *cobra.Command, flags ...funcFlag) {
	var opts []config.Option
	for _, f := range flags {
		opts = append(opts, f(cmd)...)
	}
	cfg.Update(opts)
}
