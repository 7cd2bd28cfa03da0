package csvsource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"supplier_ranker/internal/domain"
)

// Column headers of the supplier file.
const (
	ColKeyword     = "Keyword"
	ColCompany     = "Company"
	ColCompanyURL  = "Company URL"
	ColProductName = "Product Name"
	ColProductURL  = "Product URL"
	ColPrice       = "Price (per Kg)"
	ColRating      = "Rating"
	ColPhone       = "Phone"
	ColAddress     = "Address"
	ColCity        = "City"
)

// Columns lists the required headers in export order.
var Columns = []string{
	ColKeyword, ColCompany, ColCompanyURL, ColProductName, ColProductURL,
	ColPrice, ColRating, ColPhone, ColAddress, ColCity,
}

// Parse reads a supplier file with a header row. Missing required columns
// and malformed CSV are reported as domain.ErrDataLoad. Unparseable cells
// never fail the load; they become absent (price) or zero (rating).
func Parse(r io.Reader) ([]domain.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", domain.ErrDataLoad)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", domain.ErrDataLoad, err)
	}
	idx, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	var out []domain.Record
	skipped := 0
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", domain.ErrDataLoad, line, err)
		}
		if blankRow(row) {
			skipped++
			continue
		}
		out = append(out, mapRow(row, idx))
	}
	if skipped > 0 {
		log.Debug().Int("skipped", skipped).Msg("blank rows skipped")
	}
	return out, nil
}

func indexColumns(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	var missing []string
	for _, c := range Columns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", domain.ErrDataLoad, strings.Join(missing, ", "))
	}
	return idx, nil
}

func mapRow(row []string, idx map[string]int) domain.Record {
	cell := func(col string) string {
		if i := idx[col]; i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	return domain.Record{
		Keyword:     cell(ColKeyword),
		Company:     cell(ColCompany),
		CompanyURL:  ptrStr(cell(ColCompanyURL)),
		ProductName: ptrStr(cell(ColProductName)),
		ProductURL:  ptrStr(cell(ColProductURL)),
		Price:       parsePrice(cell(ColPrice)),
		Rating:      parseRating(cell(ColRating)),
		Phone:       ptrStr(cell(ColPhone)),
		Address:     ptrStr(cell(ColAddress)),
		City:        ptrStr(cell(ColCity)),
	}
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ptrStr treats empty cells and the usual null spellings as absent.
func ptrStr(s string) *string {
	switch strings.ToLower(s) {
	case "", "nan", "null", "none", "n/a":
		return nil
	}
	return &s
}

// parseFloat parses a finite number or returns nil.
func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func parsePrice(s string) *float64 {
	p := parseFloat(s)
	if p == nil || *p < 0 {
		return nil
	}
	return p
}

func parseRating(s string) float64 {
	r := parseFloat(s)
	if r == nil {
		return 0
	}
	return math.Min(math.Max(*r, 0), 5)
}
