package domain

import "time"

// CanonicalProduct is the single deduplicated record that all source
// observations of the same physical product resolve to. ID is immutable once
// assigned. Slug is NOT a safe standalone match key: old slugs may be reused
// by different canonical ids after re-slugging.
type CanonicalProduct struct {
	ID      string         `json:"id"`
	Slug    string         `json:"slug"`
	BrandID *string        `json:"brandId,omitempty"`
	Name    string         `json:"name"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// CanonicalPlant is the deduplicated botanical record. The normalized
// scientific name is the strongest identity signal, but only while it is
// unique among existing plants.
type CanonicalPlant struct {
	ID             string  `json:"id"`
	Slug           string  `json:"slug"`
	ScientificName *string `json:"scientificName,omitempty"`
}

// CanonicalOffer is a retailer price listing for a canonical product.
// The (ProductID, RetailerID, normalized URL) triple is expected to be unique
// in steady state; duplicates indicate a data-quality problem and are treated
// as ambiguous.
type CanonicalOffer struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"productId"`
	RetailerID    string    `json:"retailerId"`
	URL           string    `json:"url"`
	PriceCents    *int64    `json:"priceCents,omitempty"`
	Currency      string    `json:"currency"`
	InStock       bool      `json:"inStock"`
	UpdatedAt     time.Time `json:"updatedAt"`
	LastCheckedAt time.Time `json:"lastCheckedAt"`
}

// PriceHistoryPoint is one append-only record of actual price/stock movement.
// One row per meaningfully-changed observation, not per poll.
type PriceHistoryPoint struct {
	OfferID    string    `json:"offerId"`
	PriceCents int64     `json:"priceCents"`
	InStock    bool      `json:"inStock"`
	RecordedAt time.Time `json:"recordedAt"`
}
