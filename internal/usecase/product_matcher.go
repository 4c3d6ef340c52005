package usecase

import (
	"log"
	"sort"
	"strconv"

	"github.com/plantarium/catalog/internal/domain"
)

// Match confidence levels per strategy
const (
	confidencePriorLink       = 100
	confidenceIdentifierExact = 100
	confidenceBrandModel      = 92
	confidenceScientificName  = 97
	confidenceSlugExact       = 94
	confidenceOfferFingerprint = 96
	confidenceNewCanonical    = 80
)

// fingerprintSep joins fingerprint components. Components are normalized
// before joining so the separator cannot collide with their content.
const fingerprintSep = "::"

// MatcherConfig holds configuration shared by the matchers
type MatcherConfig struct {
	EnableDebugLogging bool
}

// ProductMatcher resolves incoming product observations to existing canonical
// product ids, or signals creation of a new one. Matching is a strict ladder:
// prior link, identifier-exact, brand+model fingerprint, new canonical. Each
// rung either matches exactly one candidate or falls through; ambiguity is
// never resolved by picking arbitrarily, since that would merge unrelated
// products depending on input order.
type ProductMatcher struct {
	enableDebugLogging bool
}

// NewProductMatcher creates a new product matcher with the given configuration
func NewProductMatcher(config MatcherConfig) *ProductMatcher {
	return &ProductMatcher{
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// ProductIndex holds the identifier and fingerprint lookups derived from one
// snapshot of existing canonical products. Building it once per ingestion
// batch and reusing it across match calls is valid because matching is pure
// over the snapshot.
type ProductIndex struct {
	ids           map[string]struct{}
	byIdentifier  map[string][]string
	byFingerprint map[string][]string
}

// BuildProductIndex scans the full existing-product list into lookup maps.
func BuildProductIndex(existing []domain.CanonicalProduct) *ProductIndex {
	idx := &ProductIndex{
		ids:           make(map[string]struct{}, len(existing)),
		byIdentifier:  make(map[string][]string),
		byFingerprint: make(map[string][]string),
	}
	for _, p := range existing {
		idx.ids[p.ID] = struct{}{}
		for _, ident := range canonicalProductIdentifiers(p) {
			idx.byIdentifier[ident] = appendUnique(idx.byIdentifier[ident], p.ID)
		}
		if fp, ok := canonicalProductFingerprint(p); ok {
			idx.byFingerprint[fp] = appendUnique(idx.byFingerprint[fp], p.ID)
		}
	}
	return idx
}

// Match resolves one observation against a snapshot of existing products.
func (m *ProductMatcher) Match(obs domain.ProductObservation, existing []domain.CanonicalProduct) domain.MatchResult {
	return m.MatchWithIndex(obs, BuildProductIndex(existing))
}

// MatchWithIndex resolves one observation against a prebuilt snapshot index.
func (m *ProductMatcher) MatchWithIndex(obs domain.ProductObservation, idx *ProductIndex) domain.MatchResult {
	// Prior-link check: a source row already linked to a canonical id never
	// re-derives identity from scratch. This is what makes re-ingestion
	// idempotent.
	if obs.ExistingCanonicalID != nil {
		if _, ok := idx.ids[*obs.ExistingCanonicalID]; ok {
			return matched(*obs.ExistingCanonicalID, domain.MethodIdentifierExact, confidencePriorLink)
		}
	}

	// Identifier-exact: an identifier whose lookup yields several canonical
	// ids is itself ambiguous and ignored. Identifiers that each resolve
	// cleanly may still disagree with one another (sku points at one product,
	// upc at another); the strategy only matches when every clean identifier
	// agrees on a single canonical id.
	var candidates []string
	for _, ident := range incomingProductIdentifiers(obs) {
		ids := idx.byIdentifier[ident]
		if len(ids) == 1 {
			candidates = appendUnique(candidates, ids[0])
			continue
		}
		if len(ids) > 1 && m.enableDebugLogging {
			log.Printf("[MATCH] product identifier %q ambiguous across %d canonicals, skipping", ident, len(ids))
		}
	}
	if len(candidates) == 1 {
		if m.enableDebugLogging {
			log.Printf("[MATCH] product identifiers -> canonical %s", candidates[0])
		}
		return matched(candidates[0], domain.MethodIdentifierExact, confidenceIdentifierExact)
	}
	if len(candidates) > 1 && m.enableDebugLogging {
		log.Printf("[MATCH] product identifiers disagree across %d canonicals, falling through", len(candidates))
	}

	if fp, ok := observationFingerprint(obs); ok {
		ids := idx.byFingerprint[fp]
		if len(ids) == 1 {
			if m.enableDebugLogging {
				log.Printf("[MATCH] product fingerprint %q -> canonical %s", fp, ids[0])
			}
			return matched(ids[0], domain.MethodBrandModelFingerprint, confidenceBrandModel)
		}
		if len(ids) > 1 && m.enableDebugLogging {
			log.Printf("[MATCH] product fingerprint %q ambiguous across %d canonicals, skipping", fp, len(ids))
		}
	}

	return domain.MatchResult{Method: domain.MethodNewCanonical, Confidence: confidenceNewCanonical}
}

// incomingProductIdentifiers builds the normalized identifier set carried by
// an observation: named fields first, then the open identifiers map in
// sorted-key order. De-duplicated, order-stable, empty values dropped.
func incomingProductIdentifiers(obs domain.ProductObservation) []string {
	raw := []string{
		obs.Slug, obs.SourceEntityID,
		obs.SKU, obs.UPC, obs.EAN, obs.GTIN, obs.MPN, obs.ASIN,
		obs.ModelNumber,
	}

	keys := make([]string, 0, len(obs.Identifiers))
	for k := range obs.Identifiers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		raw = append(raw, stringValue(obs.Identifiers[k]))
	}

	return normalizeIdentifierSet(raw)
}

// metaIdentifierKeys are the identifier fields recognized inside a canonical
// product's meta bag.
var metaIdentifierKeys = []string{"sku", "upc", "ean", "gtin", "mpn", "asin", "model_number"}

// canonicalProductIdentifiers builds the normalized identifier set for an
// existing canonical product from its slug plus its meta identifier fields,
// including the nested meta.identifiers map.
func canonicalProductIdentifiers(p domain.CanonicalProduct) []string {
	raw := []string{p.Slug}
	for _, key := range metaIdentifierKeys {
		raw = append(raw, stringValue(p.Meta[key]))
	}
	if nested, ok := p.Meta["identifiers"].(map[string]any); ok {
		keys := make([]string, 0, len(nested))
		for k := range nested {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			raw = append(raw, stringValue(nested[k]))
		}
	}
	return normalizeIdentifierSet(raw)
}

// observationFingerprint builds the brand+model fingerprint for an incoming
// observation. Requires a brand id and a non-empty normalized model text
// (first non-empty of model number, model, name).
func observationFingerprint(obs domain.ProductObservation) (string, bool) {
	if obs.BrandID == nil || *obs.BrandID == "" {
		return "", false
	}
	return brandModelFingerprint(*obs.BrandID, obs.ModelNumber, obs.Model, obs.Name)
}

// canonicalProductFingerprint builds the brand+model fingerprint for an
// existing canonical product from meta.model_number, meta.model, then name.
func canonicalProductFingerprint(p domain.CanonicalProduct) (string, bool) {
	if p.BrandID == nil || *p.BrandID == "" {
		return "", false
	}
	return brandModelFingerprint(*p.BrandID, stringValue(p.Meta["model_number"]), stringValue(p.Meta["model"]), p.Name)
}

// brandModelFingerprint joins a brand id with the first non-empty candidate
// model text, normalized. Empty model text yields no fingerprint.
func brandModelFingerprint(brandID string, candidates ...string) (string, bool) {
	for _, c := range candidates {
		if text := normalizeModelText(c); text != "" {
			return brandID + fingerprintSep + text, true
		}
	}
	return "", false
}

// normalizeIdentifierSet normalizes each value, dropping empties and
// duplicates while preserving first-seen order.
func normalizeIdentifierSet(raw []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range raw {
		ident := NormalizeIdentifier(r)
		if ident == "" || seen[ident] {
			continue
		}
		seen[ident] = true
		out = append(out, ident)
	}
	return out
}

// stringValue renders a meta/identifier bag value as a string. Non-string
// scalars come back from JSON decoding as float64/bool; anything else is not
// a usable identifier.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		// Numeric identifiers (e.g. a bare UPC) decode from JSON as float64
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return ""
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return ""
	}
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func matched(id string, method domain.MatchMethod, confidence int) domain.MatchResult {
	return domain.MatchResult{CanonicalID: &id, Method: method, Confidence: confidence}
}
