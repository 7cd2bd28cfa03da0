package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"supplier_ranker/internal/adapters/csvsource"
	"supplier_ranker/internal/domain"
	"supplier_ranker/internal/query"
)

var queryOpts struct {
	keyword  string
	search   string
	city     string
	minPrice float64
	maxPrice float64
	sortBy   string
	order    string
	limit    int
	csv      bool
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "List suppliers matching the filters, best first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, _, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}
		out := query.Run(ds, buildFilter(cmd), buildSort())
		if queryOpts.csv {
			return csvsource.Write(cmd.OutOrStdout(), out)
		}
		if len(out) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No companies match your filter criteria.")
			return nil
		}
		if queryOpts.limit > 0 && len(out) > queryOpts.limit {
			fmt.Fprintf(cmd.OutOrStdout(), "Found %d matching companies (showing %d)\n\n", len(out), queryOpts.limit)
			out = out[:queryOpts.limit]
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Found %d matching companies\n\n", len(out))
		}
		return printTable(cmd.OutOrStdout(), out)
	},
}

func init() {
	f := queryCmd.Flags()
	f.StringVar(&queryOpts.keyword, "keyword", "", "keyword substring (case-insensitive)")
	f.StringVar(&queryOpts.search, "search", "", "substring of keyword or product name")
	f.StringVar(&queryOpts.city, "city", "", "exact city name")
	f.Float64Var(&queryOpts.minPrice, "min-price", 0, "minimum price per Kg (requires --max-price)")
	f.Float64Var(&queryOpts.maxPrice, "max-price", 0, "maximum price per Kg (requires --min-price)")
	f.StringVar(&queryOpts.sortBy, "sort-by", domain.SortBySupplierScore, "sort key: supplier_score, price, rating or company")
	f.StringVar(&queryOpts.order, "order", "desc", "asc or desc")
	f.IntVar(&queryOpts.limit, "limit", 20, "maximum rows to print (0 for all)")
	f.BoolVar(&queryOpts.csv, "csv", false, "write all matches as CSV instead of a table")
	rootCmd.AddCommand(queryCmd)
}

func buildFilter(cmd *cobra.Command) domain.Filter {
	var f domain.Filter
	if queryOpts.keyword != "" {
		f.Keyword = &queryOpts.keyword
	}
	if queryOpts.search != "" {
		f.Search = &queryOpts.search
	}
	if queryOpts.city != "" {
		f.City = &queryOpts.city
	}
	if cmd.Flags().Changed("min-price") && cmd.Flags().Changed("max-price") {
		f.MinPrice, f.MaxPrice = &queryOpts.minPrice, &queryOpts.maxPrice
	}
	return f
}

func buildSort() domain.Sort {
	return domain.Sort{Key: queryOpts.sortBy, Descending: queryOpts.order != "asc"}
}

func printTable(w io.Writer, recs []domain.ScoredRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSCORE\tCOMPANY\tKEYWORD\tPRICE/KG\tRATING\tCITY")
	for _, r := range recs {
		price := "-"
		if r.Price != nil {
			price = strconv.FormatFloat(*r.Price, 'f', -1, 64)
		}
		city := "-"
		if r.City != nil {
			city = *r.City
		}
		fmt.Fprintf(tw, "%d\t%.1f\t%s\t%s\t%s\t%.1f\t%s\n",
			r.Index, r.SupplierScore, r.Company, r.Keyword, price, r.Rating, city)
	}
	return tw.Flush()
}
