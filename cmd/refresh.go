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
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/eufgis/fgrdb/pkg/catalog"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getRefreshCmd returns the refresh command.
func getRefreshCmd() *cobra.Command {
	var all bool

	refreshCmd := &cobra.Command{
		Use:   "refresh [KEY...]",
		Short: "Recompute derived facets of datasets",
		Long: `Refresh recomputes derived facets of datasets from their data records
and stores them in dataset documents.

Derived facets are the record count, date range, species list, terms,
quantitative terms, classes, domains, tags and subjects. Datasets are
refreshed concurrently, a failure of one dataset does not stop others.
A dataset modified during its refresh is reported as a conflict.

Examples:
  fgrdb refresh 5c1a9e0e-7a4b-5d56-9b8f-3ea1e2a7b0c1
  fgrdb refresh --all
  fgrdb refresh -a -j 8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyFlags(cmd, jobsFlag)
			return runRefresh(args, all)
		},
	}

	refreshCmd.Flags().BoolVarP(&all, "all", "a", false,
		"refresh all datasets")
	refreshCmd.Flags().IntP("jobs", "j", 0, "number of concurrent workers")

	return refreshCmd
}

func runRefresh(keys []string, all bool) error {
	if len(keys) == 0 && !all {
		err := errors.New("no dataset keys given, use --all to refresh all datasets")
		gn.PrintErrorMessage(err)
		return err
	}

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	cat, closeFn, err := openCatalog(ctx, false)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	defer closeFn()

	if all {
		if keys, err = cat.DatasetKeys(ctx); err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
	}

	bar := pb.Full.Start(len(keys))
	bar.Set("prefix", "Refreshing datasets: ")
	bar.Set(pb.CleanOnFinish, true)
	report, err := cat.RefreshWithProgress(ctx, keys,
		func(catalog.RefreshResult) { bar.Increment() },
	)
	bar.Finish()

	for _, v := range report.Results {
		if v.Err != nil {
			gn.Warn("Dataset <em>%s</em> failed: %s", v.Key, v.Error)
		}
	}
	gn.Info("Refreshed <em>%s</em> datasets, <em>%s</em> failed",
		humanize.Comma(int64(report.Refreshed)),
		humanize.Comma(int64(report.Failed)),
	)

	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	return nil
}
