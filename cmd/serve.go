/*
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
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/eufgis/fgrdb/internal/ioweb"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getServeCmd returns the serve command.
func getServeCmd() *cobra.Command {
	var (
		memory    bool
		termsFile string
	)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST service of the catalogue",
		Long: `Serve the catalogue as a REST service.

Routes are registered under the base path of the configuration
(server.base_path). Besides the catalogue routes, the service
exposes /version, /healthcheck and Prometheus /metrics.

The service stops gracefully on SIGINT or SIGTERM.

Use --memory to run without PostgreSQL, for example for a demo.
Use --terms to import a term catalogue before the service starts,
see 'fgrdb terms import' for the file format.

Examples:
  fgrdb serve
  fgrdb serve --port 8888
  fgrdb serve -m -t terms.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyFlags(cmd, portFlag, jobsFlag)
			return runServe(memory, termsFile)
		},
	}

	serveCmd.Flags().IntP("port", "p", 0, "port of the REST service")
	serveCmd.Flags().IntP("jobs", "j", 0, "number of concurrent workers")
	serveCmd.Flags().BoolVarP(&memory, "memory", "m", false,
		"keep documents in memory instead of PostgreSQL")
	serveCmd.Flags().StringVarP(&termsFile, "terms", "t", "",
		"import terms from a JSON file before serving")

	return serveCmd
}

func runServe(memory bool, termsFile string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	cat, closeFn, err := openCatalog(ctx, memory)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	defer closeFn()

	if termsFile != "" {
		if _, err = importTerms(ctx, cat, termsFile, 0); err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
	}

	gn.Info("Starting service on port <em>%d</em>", cfg.Server.Port)
	if err = ioweb.New(cfg, cat).Run(ctx); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	gn.Info("Service stopped")
	return nil
}
