package domain

import "strings"

// Product is the canonical catalog entry after aggregation and
// normalization. Every downstream consumer (similarity, recommendations,
// cart, HTTP API) works on this shape only.
type Product struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Category     string  `json:"category"`
	Image        string  `json:"image"`
	Rating       float64 `json:"rating"`
	Sold         int     `json:"sold"`
	SupplierID   string  `json:"supplier_id,omitempty"`
	SupplierName string  `json:"supplier_name,omitempty"`
}

// RawProduct is the source-shape-independent view of one upstream record.
// Each source adapter maps its own wire shape into this struct; optional
// fields stay nil when the source did not carry them, so the normalizer
// applies the fallback policy in one place.
type RawProduct struct {
	ID           int
	HasID        bool
	Title        string
	Price        float64
	Category     string
	Image        string
	Thumbnail    string
	Rating       *float64
	RatingCount  *int
	Stock        *int
	SupplierID   string
	SupplierName string
}

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	Category  string
	Query     string
	MinPrice  *float64
	MaxPrice  *float64
	MinRating float64
}

// Matches reports whether p passes every set field of the filter.
func (f ProductFilter) Matches(p Product) bool {
	if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if p.Rating < f.MinRating {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(strings.TrimSpace(f.Query))
		if !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Category), q) {
			return false
		}
	}
	return true
}
