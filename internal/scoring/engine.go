package scoring

import (
	"math"
	"strings"

	"supplier_ranker/internal/domain"
)

// Engine maps a Record to a 0–100 suitability score. It holds no mutable
// state, so one Engine may be shared freely.
type Engine struct {
	w             Weights
	manufacturing []string
	companyForms  []string
	quality       []string
}

// New builds an Engine. Terms are lowercased once here.
func New(cfg Config) *Engine {
	return &Engine{
		w:             cfg.Weights,
		manufacturing: lower(cfg.Terms.Manufacturing),
		companyForms:  lower(cfg.Terms.CompanyForms),
		quality:       lower(cfg.Terms.Quality),
	}
}

// Weights returns the weights the engine scores with.
func (e *Engine) Weights() Weights { return e.w }

// Score returns the weighted score, rounded to one decimal.
func (e *Engine) Score(r domain.Record) float64 {
	return e.Breakdown(r).Total
}

// Breakdown returns each clamped sub-score together with the final score.
func (e *Engine) Breakdown(r domain.Record) domain.Breakdown {
	b := domain.Breakdown{
		Products:       e.products(r),
		BusinessInfo:   e.businessInfo(r),
		Quality:        e.qualityScore(r),
		MarketPresence: marketPresence(r),
		Accessibility:  accessibility(r),
	}
	sum := e.w.Products*b.Products +
		e.w.BusinessInfo*b.BusinessInfo +
		e.w.Quality*b.Quality +
		e.w.MarketPresence*b.MarketPresence +
		e.w.Accessibility*b.Accessibility
	b.Total = clamp(math.Round(sum*1000)/10, 0, 100)
	return b
}

func (e *Engine) products(r domain.Record) float64 {
	if r.ProductName == nil {
		return 0
	}
	s := math.Min(float64(len(strings.Fields(*r.ProductName)))/10, 1)
	if containsAny(*r.ProductName, e.manufacturing) {
		s += 0.3
	}
	return clamp(s, 0, 1)
}

func (e *Engine) businessInfo(r domain.Record) float64 {
	var s float64
	if r.CompanyURL != nil {
		s += 0.5
	}
	if containsAny(r.Company, e.companyForms) {
		s += 0.5
	}
	return clamp(s, 0, 1)
}

func (e *Engine) qualityScore(r domain.Record) float64 {
	var s float64
	if r.Rating > 0 {
		s = r.Rating / 5.0
	}
	if r.ProductName != nil && containsAny(*r.ProductName, e.quality) {
		s += 0.3
	}
	return clamp(s, 0, 1)
}

// The price half is a flat placeholder; it does not depend on the amount.
func marketPresence(r domain.Record) float64 {
	var s float64
	if r.Price != nil {
		s += 0.5
	}
	if r.CompanyURL != nil && r.ProductURL != nil {
		s += 0.5
	}
	return clamp(s, 0, 1)
}

func accessibility(r domain.Record) float64 {
	var s float64
	if r.Phone != nil {
		s += 0.5
	}
	if r.Address != nil || r.City != nil {
		s += 0.5
	}
	return clamp(s, 0, 1)
}

func containsAny(s string, terms []string) bool {
	if s == "" {
		return false
	}
	low := strings.ToLower(s)
	for _, t := range terms {
		if strings.Contains(low, t) {
			return true
		}
	}
	return false
}

func lower(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		out = append(out, strings.ToLower(t))
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
