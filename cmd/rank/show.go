package main

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"supplier_ranker/internal/domain"
	"supplier_ranker/internal/scoring"
)

var showCmd = &cobra.Command{
	Use:   "show <index>",
	Short: "Show one supplier with its score breakdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("index must be an integer: %q", args[0])
		}
		ds, engine, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}
		r, err := ds.At(idx)
		if err != nil {
			return err
		}
		printDetail(cmd.OutOrStdout(), engine.Weights(), domain.SupplierDetail{
			Supplier:  r,
			Breakdown: engine.Breakdown(r.Record),
			Band:      domain.Band(r.SupplierScore),
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func printDetail(w io.Writer, wt scoring.Weights, d domain.SupplierDetail) {
	r := d.Supplier
	fmt.Fprintf(w, "%s  [score %.1f/100, %s]\n", r.Company, r.SupplierScore, d.Band)
	fmt.Fprintln(w, strings.Repeat("-", 60))
	line := func(label string, v *string) {
		if v != nil {
			fmt.Fprintf(w, "%-14s %s\n", label+":", *v)
		}
	}
	fmt.Fprintf(w, "%-14s %s\n", "Keyword:", r.Keyword)
	line("Product", r.ProductName)
	if r.Price != nil {
		fmt.Fprintf(w, "%-14s Rs %s per Kg\n", "Price:", strconv.FormatFloat(*r.Price, 'f', -1, 64))
	}
	if r.Rating > 0 {
		fmt.Fprintf(w, "%-14s %.1f / 5\n", "Rating:", r.Rating)
	}
	line("Address", r.Address)
	line("City", r.City)
	line("Phone", r.Phone)
	line("Product URL", r.ProductURL)
	line("Company URL", r.CompanyURL)

	b := d.Breakdown
	fmt.Fprintln(w, "\nScore components:")
	for _, c := range []struct {
		name  string
		value float64
	}{
		{label("Products", wt.Products), b.Products},
		{label("Business Info", wt.BusinessInfo), b.BusinessInfo},
		{label("Quality", wt.Quality), b.Quality},
		{label("Market Presence", wt.MarketPresence), b.MarketPresence},
		{label("Accessibility", wt.Accessibility), b.Accessibility},
	} {
		fmt.Fprintf(w, "  %-22s %-10s %.2f\n", c.name, bar(c.value), c.value)
	}
}

// label formats a component name with its weight as a percentage.
func label(name string, weight float64) string {
	return name + " (" + strconv.FormatFloat(math.Round(weight*1000)/10, 'f', -1, 64) + "%)"
}

// bar renders a 0..1 value as ten cells.
func bar(v float64) string {
	n := int(v*10 + 0.5)
	return strings.Repeat("#", n) + strings.Repeat(".", 10-n)
}
