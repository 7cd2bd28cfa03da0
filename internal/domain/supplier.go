package domain

// Record is one supplier row as loaded from the source.
// Optional attributes are nil when the cell was empty or unparseable.
type Record struct {
	Keyword     string   `json:"Keyword"`
	Company     string   `json:"Company"`
	CompanyURL  *string  `json:"Company URL"`
	ProductName *string  `json:"Product Name"`
	ProductURL  *string  `json:"Product URL"`
	Price       *float64 `json:"Price (per Kg)"` // per Kg, >= 0 when set
	Rating      float64  `json:"Rating"`         // 0..5
	Phone       *string  `json:"Phone"`
	Address     *string  `json:"Address"`
	City        *string  `json:"City"`
}

// ScoredRecord is a Record plus its derived score. Index is the position in
// the load order and is only stable within one dataset version.
type ScoredRecord struct {
	Record
	SupplierScore float64 `json:"Supplier Score"`
	Index         int     `json:"-"`
}

// Breakdown holds the clamped sub-scores (0..1) behind a supplier score.
type Breakdown struct {
	Products       float64 `json:"products"`
	BusinessInfo   float64 `json:"business_info"`
	Quality        float64 `json:"quality"`
	MarketPresence float64 `json:"market_presence"`
	Accessibility  float64 `json:"accessibility"`
	Total          float64 `json:"total"`
}

// SupplierDetail is a supplier with its score breakdown.
type SupplierDetail struct {
	Supplier  ScoredRecord `json:"supplier"`
	Breakdown Breakdown    `json:"breakdown"`
	Band      string       `json:"band"`
}

// Score bands used by the dashboard badge.
const (
	BandHigh   = "high"
	BandMedium = "medium"
	BandLow    = "low"
)

func Band(score float64) string {
	switch {
	case score >= 80:
		return BandHigh
	case score >= 60:
		return BandMedium
	default:
		return BandLow
	}
}
