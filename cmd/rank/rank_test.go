package main

import (
	"bytes"
	"strings"
	"testing"

	"supplier_ranker/internal/domain"
	"supplier_ranker/internal/scoring"
)

func ptr[T any](v T) *T { return &v }

func TestBar(t *testing.T) {
	cases := map[float64]string{0: "..........", 0.5: "#####.....", 1: "##########"}
	for in, want := range cases {
		if got := bar(in); got != want {
			t.Errorf("bar(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	err := printTable(&buf, []domain.ScoredRecord{
		{Record: domain.Record{Company: "Apex", Keyword: "sand casting", Price: ptr(120.0), Rating: 4}, SupplierScore: 61.5, Index: 3},
		{Record: domain.Record{Company: "Kumar", Keyword: "die casting", City: ptr("Rajkot")}, SupplierScore: 12, Index: 0},
	})
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[1], "3 ") || !strings.Contains(lines[1], "61.5") || !strings.Contains(lines[1], "120") {
		t.Fatalf("row 1: %q", lines[1])
	}
	if !strings.Contains(lines[2], "Rajkot") || !strings.Contains(lines[2], "-") {
		t.Fatalf("row 2: %q", lines[2])
	}
}

func TestPrintDetail(t *testing.T) {
	var buf bytes.Buffer
	printDetail(&buf, scoring.DefaultConfig().Weights, domain.SupplierDetail{
		Supplier: domain.ScoredRecord{
			Record:        domain.Record{Company: "Shree Ganesh", Keyword: "investment casting", Price: ptr(250.0), Rating: 4.5, City: ptr("Pune")},
			SupplierScore: 82.3,
		},
		Breakdown: domain.Breakdown{Products: 1, Quality: 0.5, Total: 82.3},
		Band:      domain.BandHigh,
	})
	out := buf.String()
	for _, want := range []string{"Shree Ganesh", "82.3/100", "Rs 250 per Kg", "4.5 / 5", "Pune", "##########", "Products (15%)", "Quality (25%)"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Phone:") {
		t.Errorf("absent fields should be omitted:\n%s", out)
	}
}

func TestPrintDetail_LabelsFollowWeights(t *testing.T) {
	var buf bytes.Buffer
	wt := scoring.Weights{Products: 0.4, BusinessInfo: 0.1, Quality: 0.1, MarketPresence: 0.1, Accessibility: 0.3}
	printDetail(&buf, wt, domain.SupplierDetail{Supplier: domain.ScoredRecord{Record: domain.Record{Company: "X"}}})
	out := buf.String()
	for _, want := range []string{"Products (40%)", "Business Info (10%)", "Accessibility (30%)"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "(15%)") {
		t.Errorf("default weight label leaked:\n%s", out)
	}
}

func TestLabel(t *testing.T) {
	cases := map[float64]string{0.15: "Q (15%)", 0.2: "Q (20%)", 1.0 / 3: "Q (33.3%)", 0: "Q (0%)"}
	for in, want := range cases {
		if got := label("Q", in); got != want {
			t.Errorf("label(%v) = %q, want %q", in, got, want)
		}
	}
}
