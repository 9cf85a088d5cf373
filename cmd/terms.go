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

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/eufgis/fgrdb/internal/ioterms"
	"github.com/eufgis/fgrdb/pkg/catalog"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getTermsCmd returns the terms command.
func getTermsCmd() *cobra.Command {
	termsCmd := &cobra.Command{
		Use:   "terms",
		Short: "Manage the term catalogue",
		Long: `Terms describe data fields of the catalogue: their class, domains,
tags and subjects. Derived facets of datasets are resolved from
terms whose identifier is a field of dataset records.`,
	}

	termsCmd.AddCommand(getTermsImportCmd())
	return termsCmd
}

// getTermsImportCmd returns the terms import command.
func getTermsImportCmd() *cobra.Command {
	var batch int

	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import terms from a JSON file",
		Long: `Import creates or replaces terms of the term catalogue.

The file is either a JSON array of terms or JSON lines with one term
per line, for example an export of the terms collection:

  {"_key":"chr_Height","_class":"_class_quantity","_domain":["_domain_phenotype"]}

Terms are validated before anything is written. Run 'fgrdb refresh --all'
afterwards to update derived facets of existing datasets.

Examples:
  fgrdb terms import terms.json
  fgrdb terms import -b 500 terms.jsonl`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTermsImport(args[0], batch)
		},
	}

	importCmd.Flags().IntVarP(&batch, "batch", "b", catalog.DefaultTermsBatch,
		"number of terms written in one batch")

	return importCmd
}

func runTermsImport(path string, batch int) error {
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

	if _, err = importTerms(ctx, cat, path, batch); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	return nil
}

// importTerms reads a terms file and stores its terms with a progress
// bar. It returns the number of stored terms.
func importTerms(
	ctx context.Context,
	cat *catalog.Catalog,
	path string,
	batch int,
) (int, error) {
	terms, err := ioterms.ReadFile(path)
	if err != nil {
		return 0, err
	}

	bar := pb.Full.Start(len(terms))
	bar.Set("prefix", "Importing terms: ")
	bar.Set(pb.CleanOnFinish, true)
	n, err := cat.ImportTerms(ctx, terms, batch, func(n int) {
		bar.Add(n)
	})
	bar.Finish()
	if err != nil {
		return n, err
	}

	gn.Info("Imported <em>%s</em> terms from <em>%s</em>",
		humanize.Comma(int64(n)), path)
	return n, nil
}
