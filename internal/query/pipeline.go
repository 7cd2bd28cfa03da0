// Package query filters and sorts a scored dataset.
package query

import (
	"cmp"
	"slices"
	"strings"

	"supplier_ranker/internal/dataset"
	"supplier_ranker/internal/domain"
)

// Run filters ds with f and orders the matches with s. The result is a new
// slice; an empty result is not an error.
func Run(ds *dataset.Dataset, f domain.Filter, s domain.Sort) []domain.ScoredRecord {
	out := Filter(ds.Records(), f)
	Sort(out, s)
	return out
}

// Filter keeps the records matching every active constraint of f,
// preserving their relative order.
func Filter(in []domain.ScoredRecord, f domain.Filter) []domain.ScoredRecord {
	m := newMatcher(f)
	out := make([]domain.ScoredRecord, 0, len(in))
	for _, r := range in {
		if m.match(r.Record) {
			out = append(out, r)
		}
	}
	return out
}

type matcher struct {
	keyword  string
	search   string
	priced   bool
	min, max float64
	city     string
}

func newMatcher(f domain.Filter) matcher {
	var m matcher
	if f.Keyword != nil {
		m.keyword = strings.ToLower(*f.Keyword)
	}
	if f.Search != nil {
		m.search = strings.ToLower(*f.Search)
	}
	if f.MinPrice != nil && f.MaxPrice != nil {
		m.priced, m.min, m.max = true, *f.MinPrice, *f.MaxPrice
	}
	if f.City != nil && *f.City != domain.AllCities {
		m.city = *f.City
	}
	return m
}

func (m matcher) match(r domain.Record) bool {
	if m.keyword != "" && !containsFold(r.Keyword, m.keyword) {
		return false
	}
	if m.search != "" {
		inName := r.ProductName != nil && containsFold(*r.ProductName, m.search)
		if !containsFold(r.Keyword, m.search) && !inName {
			return false
		}
	}
	if m.priced {
		// a NaN bound admits nothing
		if r.Price == nil || !(*r.Price >= m.min && *r.Price <= m.max) {
			return false
		}
	}
	if m.city != "" && (r.City == nil || *r.City != m.city) {
		return false
	}
	return true
}

// containsFold reports whether s contains the already-lowercased sub.
func containsFold(s, sub string) bool {
	return s != "" && strings.Contains(strings.ToLower(s), sub)
}

// NormalizeSortKey maps a display name or snake_case alias to a sort key.
// Unknown keys come back with ok=false.
func NormalizeSortKey(key string) (string, bool) {
	switch strings.TrimSpace(key) {
	case domain.SortBySupplierScore, "supplier_score", "score":
		return domain.SortBySupplierScore, true
	case domain.SortByPrice, "price":
		return domain.SortByPrice, true
	case domain.SortByRating, "rating":
		return domain.SortByRating, true
	case domain.SortByCompany, "company":
		return domain.SortByCompany, true
	}
	return key, false
}

// Sort orders recs in place. The sort is stable, so ties keep their current
// relative order. Unknown keys leave recs untouched. Records without a
// price always sort after priced ones.
func Sort(recs []domain.ScoredRecord, s domain.Sort) {
	key, ok := NormalizeSortKey(s.Key)
	if !ok {
		return
	}
	var by func(a, b domain.ScoredRecord) int
	switch key {
	case domain.SortBySupplierScore:
		by = func(a, b domain.ScoredRecord) int { return cmp.Compare(a.SupplierScore, b.SupplierScore) }
	case domain.SortByRating:
		by = func(a, b domain.ScoredRecord) int { return cmp.Compare(a.Rating, b.Rating) }
	case domain.SortByCompany:
		by = func(a, b domain.ScoredRecord) int { return cmp.Compare(a.Company, b.Company) }
	case domain.SortByPrice:
		slices.SortStableFunc(recs, func(a, b domain.ScoredRecord) int {
			switch {
			case a.Price == nil && b.Price == nil:
				return 0
			case a.Price == nil:
				return 1
			case b.Price == nil:
				return -1
			}
			c := cmp.Compare(*a.Price, *b.Price)
			if s.Descending {
				return -c
			}
			return c
		})
		return
	}
	if s.Descending {
		slices.SortStableFunc(recs, func(a, b domain.ScoredRecord) int { return -by(a, b) })
		return
	}
	slices.SortStableFunc(recs, by)
}

// PriceBounds returns the min and max price of recs. ok is false when no
// record carries a price, including when recs is empty.
func PriceBounds(recs []domain.ScoredRecord) (b domain.PriceBounds, ok bool) {
	for _, r := range recs {
		if r.Price == nil {
			continue
		}
		p := *r.Price
		if !ok {
			b, ok = domain.PriceBounds{Min: p, Max: p}, true
			continue
		}
		b.Min = min(b.Min, p)
		b.Max = max(b.Max, p)
	}
	return b, ok
}

// Facets summarises recs for filter widgets: distinct keywords and cities,
// derivable price bounds and per-band counts.
func Facets(recs []domain.ScoredRecord) domain.Facets {
	f := domain.Facets{
		Count:    len(recs),
		Keywords: []string{},
		Cities:   []string{domain.AllCities},
		Bands:    map[string]int{domain.BandHigh: 0, domain.BandMedium: 0, domain.BandLow: 0},
	}
	if len(recs) == 0 {
		return f
	}

	keywords := map[string]struct{}{}
	cities := map[string]struct{}{}
	for _, r := range recs {
		if r.Keyword != "" {
			keywords[r.Keyword] = struct{}{}
		}
		if r.City != nil {
			cities[*r.City] = struct{}{}
		}
		f.Bands[domain.Band(r.SupplierScore)]++
	}
	for k := range keywords {
		f.Keywords = append(f.Keywords, k)
	}
	slices.Sort(f.Keywords)

	sorted := make([]string, 0, len(cities))
	for c := range cities {
		sorted = append(sorted, c)
	}
	slices.Sort(sorted)
	f.Cities = append(f.Cities, sorted...)

	if b, ok := PriceBounds(recs); ok {
		f.Price = &b
	}
	return f
}
