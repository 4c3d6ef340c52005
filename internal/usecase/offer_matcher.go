package usecase

import (
	"log"

	"github.com/plantarium/catalog/internal/domain"
)

// OfferMatcher resolves incoming (product, retailer, URL) price listings to
// existing canonical offer ids. The fingerprint triple is expected to be
// unique in steady state; canonical offers sharing it indicate a data-quality
// problem and are treated as ambiguous rather than auto-merged.
type OfferMatcher struct {
	enableDebugLogging bool
}

// NewOfferMatcher creates a new offer matcher with the given configuration
func NewOfferMatcher(config MatcherConfig) *OfferMatcher {
	return &OfferMatcher{
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// OfferIndex holds the fingerprint lookup derived from one snapshot of
// existing canonical offers.
type OfferIndex struct {
	ids           map[string]struct{}
	byFingerprint map[string][]string
}

// BuildOfferIndex scans the full existing-offer list into lookup maps.
// Existing rows whose stored URL no longer parses are skipped: they cannot
// produce a fingerprint and must not block matching of well-formed input.
func BuildOfferIndex(existing []domain.CanonicalOffer) *OfferIndex {
	idx := &OfferIndex{
		ids:           make(map[string]struct{}, len(existing)),
		byFingerprint: make(map[string][]string),
	}
	for _, o := range existing {
		idx.ids[o.ID] = struct{}{}
		normalized, err := NormalizeOfferURL(o.URL)
		if err != nil {
			log.Printf("[MATCH] skipping stored offer %s with unparseable url %q", o.ID, o.URL)
			continue
		}
		fp := offerFingerprint(o.ProductID, o.RetailerID, normalized)
		idx.byFingerprint[fp] = appendUnique(idx.byFingerprint[fp], o.ID)
	}
	return idx
}

// Match resolves one observation against a snapshot of existing offers.
// A malformed observation URL fails with domain.ErrInvalidURL; the ingestion
// pipeline records the source record as failed rather than guessing.
func (m *OfferMatcher) Match(obs domain.OfferObservation, existing []domain.CanonicalOffer) (domain.MatchResult, error) {
	return m.MatchWithIndex(obs, BuildOfferIndex(existing))
}

// MatchWithIndex resolves one observation against a prebuilt snapshot index.
func (m *OfferMatcher) MatchWithIndex(obs domain.OfferObservation, idx *OfferIndex) (domain.MatchResult, error) {
	if obs.ExistingCanonicalID != nil {
		if _, ok := idx.ids[*obs.ExistingCanonicalID]; ok {
			return matched(*obs.ExistingCanonicalID, domain.MethodIdentifierExact, confidencePriorLink), nil
		}
	}

	normalized, err := NormalizeOfferURL(obs.URL)
	if err != nil {
		return domain.MatchResult{}, err
	}

	fp := offerFingerprint(obs.ProductID, obs.RetailerID, normalized)
	ids := idx.byFingerprint[fp]
	if len(ids) == 1 {
		return matched(ids[0], domain.MethodProductRetailerURLFingerprint, confidenceOfferFingerprint), nil
	}
	if len(ids) > 1 && m.enableDebugLogging {
		log.Printf("[MATCH] offer fingerprint %q ambiguous across %d canonicals, skipping", fp, len(ids))
	}

	return domain.MatchResult{Method: domain.MethodNewCanonical, Confidence: confidenceNewCanonical}, nil
}

func offerFingerprint(productID, retailerID, normalizedURL string) string {
	return productID + fingerprintSep + retailerID + fingerprintSep + normalizedURL
}
