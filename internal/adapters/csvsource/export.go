package csvsource

import (
	"encoding/csv"
	"io"
	"strconv"

	"supplier_ranker/internal/domain"
)

// Write emits recs as CSV with the source columns plus Supplier Score.
func Write(w io.Writer, recs []domain.ScoredRecord) error {
	cw := csv.NewWriter(w)
	header := append(append([]string{}, Columns...), domain.SortBySupplierScore)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range recs {
		row := []string{
			r.Keyword,
			r.Company,
			deref(r.CompanyURL),
			deref(r.ProductName),
			deref(r.ProductURL),
			fmtFloat(r.Price),
			strconv.FormatFloat(r.Rating, 'f', -1, 64),
			deref(r.Phone),
			deref(r.Address),
			deref(r.City),
			strconv.FormatFloat(r.SupplierScore, 'f', 1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func fmtFloat(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}
