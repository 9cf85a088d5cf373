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
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/spf13/cobra"
)

// getQualifyCmd returns the qualify command.
func getQualifyCmd() *cobra.Command {
	qualifyCmd := &cobra.Command{
		Use:   "qualify KEY",
		Short: "Print derived facets of a dataset without storing them",
		Long: `Qualify computes derived facets of a dataset from its data records
and prints them as JSON. The dataset is not modified, use
'fgrdb refresh' to store the facets.

Examples:
  fgrdb qualify 5c1a9e0e-7a4b-5d56-9b8f-3ea1e2a7b0c1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cat, closeFn, err := openCatalog(ctx, false)
			if err != nil {
				gn.PrintErrorMessage(err)
				return err
			}
			defer closeFn()

			res, err := cat.Qualify(ctx, args[0])
			if err != nil {
				gn.PrintErrorMessage(err)
				return err
			}
			return printJSON(res)
		},
	}
	return qualifyCmd
}

// getStatsCmd returns the stats command.
func getStatsCmd() *cobra.Command {
	var pivot, stat string

	statsCmd := &cobra.Command{
		Use:   "stats KEY",
		Short: "Print statistics of a dataset grouped by a pivot field",
		Long: `Stats groups data records of a dataset by a pivot field and computes
a statistic of every quantitative variable in each group.

Standard datasets can be grouped by a field of std_terms_key or
std_terms_summary. Genetic datasets are grouped by species, and
every marker of a species gets the statistic of its genetic index.

Statistics: MIN, MAX, AVG, MEDIAN, STDDEV, VARIANCE.

Examples:
  fgrdb stats 5c1a9e0e-7a4b-5d56-9b8f-3ea1e2a7b0c1 --pivot gcu_id_number --stat AVG
  fgrdb stats 5c1a9e0e-7a4b-5d56-9b8f-3ea1e2a7b0c1 -p species -s MEDIAN`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cat, closeFn, err := openCatalog(ctx, false)
			if err != nil {
				gn.PrintErrorMessage(err)
				return err
			}
			defer closeFn()

			rows, err := cat.Statistics(ctx, args[0], pivot, stat)
			if err != nil {
				gn.PrintErrorMessage(err)
				return err
			}
			return printJSON(rows)
		},
	}

	statsCmd.Flags().StringVarP(&pivot, "pivot", "p", "",
		"field to group data records by")
	statsCmd.Flags().StringVarP(&stat, "stat", "s", "AVG",
		"statistic to compute")
	_ = statsCmd.MarkFlagRequired("pivot")

	return statsCmd
}

func printJSON(v any) error {
	enc := gnfmt.GNjson{Pretty: true}
	out, err := enc.Encode(v)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
