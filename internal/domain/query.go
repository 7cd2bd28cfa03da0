package domain

// AllCities disables the city filter.
const AllCities = "All Cities"

// Sort keys. The display names double as the JSON column names.
const (
	SortBySupplierScore = "Supplier Score"
	SortByPrice         = "Price (per Kg)"
	SortByRating        = "Rating"
	SortByCompany       = "Company"
)

// Filter is the set of constraints applied conjunctively. A nil or empty
// field places no constraint on its dimension.
type Filter struct {
	Keyword  *string // substring of Keyword, case-insensitive
	Search   *string // substring of Keyword or Product Name, case-insensitive
	MinPrice *float64
	MaxPrice *float64 // range only applies when both bounds are set
	City     *string  // exact match
}

// Sort selects the ordering applied after filtering.
type Sort struct {
	Key        string
	Descending bool
}

// DefaultSort orders by supplier score, best first.
func DefaultSort() Sort { return Sort{Key: SortBySupplierScore, Descending: true} }

// PriceBounds is the min/max price of a subset.
type PriceBounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Facets summarises a filtered subset for filter widgets.
type Facets struct {
	Count    int            `json:"count"`
	Keywords []string       `json:"keywords"`
	Cities   []string       `json:"cities"`
	Price    *PriceBounds   `json:"price"`
	Bands    map[string]int `json:"bands"`
}
