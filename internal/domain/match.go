package domain

// MatchMethod names the strategy that produced a match decision.
type MatchMethod string

// Match method constants, strongest signal first.
const (
	MethodIdentifierExact               MatchMethod = "identifier_exact"
	MethodBrandModelFingerprint         MatchMethod = "brand_model_fingerprint"
	MethodScientificNameExact           MatchMethod = "scientific_name_exact"
	MethodSlugExact                     MatchMethod = "slug_exact"
	MethodProductRetailerURLFingerprint MatchMethod = "product_retailer_url_fingerprint"
	MethodNewCanonical                  MatchMethod = "new_canonical"
)

// MatchResult is the outcome of resolving one incoming observation against
// the set of existing canonical records. A nil CanonicalID always means
// "create a new canonical entity"; it is never a transient or retry state.
// Confidence (0-100) is advisory for downstream review tooling only.
type MatchResult struct {
	CanonicalID *string     `json:"canonicalId"`
	Method      MatchMethod `json:"matchMethod"`
	Confidence  int         `json:"confidence"`
}

// ProductObservation is one incoming product record from a source system.
// Identifiers carries the open-ended long tail of source identifier keys
// beyond the named fields; it is iterated in sorted-key order so fingerprint
// computation stays deterministic across runs.
type ProductObservation struct {
	ExistingCanonicalID *string        `json:"existingEntityCanonicalId,omitempty"`
	Slug                string         `json:"slug,omitempty"`
	SourceEntityID      string         `json:"sourceEntityId,omitempty"`
	BrandID             *string        `json:"brandId,omitempty"`
	Name                string         `json:"name,omitempty"`
	Model               string         `json:"model,omitempty"`
	ModelNumber         string         `json:"modelNumber,omitempty"`
	SKU                 string         `json:"sku,omitempty"`
	UPC                 string         `json:"upc,omitempty"`
	EAN                 string         `json:"ean,omitempty"`
	GTIN                string         `json:"gtin,omitempty"`
	MPN                 string         `json:"mpn,omitempty"`
	ASIN                string         `json:"asin,omitempty"`
	Identifiers         map[string]any `json:"identifiers,omitempty"`
}

// PlantObservation is one incoming botanical record from a source system.
type PlantObservation struct {
	ExistingCanonicalID *string `json:"existingEntityCanonicalId,omitempty"`
	Slug                string  `json:"slug,omitempty"`
	ScientificName      string  `json:"scientificName,omitempty"`
}

// OfferObservation is one incoming price-listing record from a source system.
type OfferObservation struct {
	ExistingCanonicalID *string `json:"existingEntityCanonicalId,omitempty"`
	ProductID           string  `json:"productId"`
	RetailerID          string  `json:"retailerId"`
	URL                 string  `json:"url"`
}
