package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"

	"supplier_ranker/internal/domain"
)

func ptrStr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := strings.TrimSpace(ns.String)
	if s == "" {
		return nil
	}
	return &s
}

func ptrPrice(nf sql.NullFloat64) *float64 {
	if !nf.Valid || nf.Float64 < 0 || math.IsNaN(nf.Float64) {
		return nil
	}
	f := nf.Float64
	return &f
}

func rating(nf sql.NullFloat64) float64 {
	if !nf.Valid {
		return 0
	}
	return math.Min(math.Max(nf.Float64, 0), 5)
}

// Repo reads suppliers from MySQL. It never writes.
type Repo struct {
	db   *sql.DB
	name string
}

func New(db *sql.DB, name string) *Repo { return &Repo{db: db, name: name} }

func (r *Repo) Name() string { return "mysql:" + r.name }

func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countSuppliersSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count suppliers: %v", domain.ErrDataLoad, err)
	}
	return n, nil
}

func (r *Repo) LoadRecords(ctx context.Context) ([]domain.Record, error) {
	rows, err := r.db.QueryContext(ctx, listSuppliersSQL)
	if err != nil {
		return nil, fmt.Errorf("%w: query suppliers: %v", domain.ErrDataLoad, err)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		var (
			keyword, company                    sql.NullString
			companyURL, productName, productURL sql.NullString
			phone, address, city                sql.NullString
			price, rate                         sql.NullFloat64
		)
		if err := rows.Scan(&keyword, &company, &companyURL, &productName, &productURL,
			&price, &rate, &phone, &address, &city); err != nil {
			return nil, fmt.Errorf("%w: scan supplier: %v", domain.ErrDataLoad, err)
		}
		out = append(out, domain.Record{
			Keyword:     strings.TrimSpace(keyword.String),
			Company:     strings.TrimSpace(company.String),
			CompanyURL:  ptrStr(companyURL),
			ProductName: ptrStr(productName),
			ProductURL:  ptrStr(productURL),
			Price:       ptrPrice(price),
			Rating:      rating(rate),
			Phone:       ptrStr(phone),
			Address:     ptrStr(address),
			City:        ptrStr(city),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate suppliers: %v", domain.ErrDataLoad, err)
	}
	return out, nil
}
