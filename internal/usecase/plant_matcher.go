package usecase

import (
	"log"

	"github.com/plantarium/catalog/internal/domain"
)

// PlantMatcher resolves incoming botanical records to existing canonical
// plant ids. Scientific name outranks slug: slugs are presentation artifacts
// that can collide or be reused across re-slugging events, while a correctly
// transcribed scientific name is a strong biological identity signal.
type PlantMatcher struct {
	enableDebugLogging bool
}

// NewPlantMatcher creates a new plant matcher with the given configuration
func NewPlantMatcher(config MatcherConfig) *PlantMatcher {
	return &PlantMatcher{
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// PlantIndex holds the lookups derived from one snapshot of existing
// canonical plants.
type PlantIndex struct {
	ids              map[string]struct{}
	byScientificName map[string][]string
	bySlug           map[string][]string
}

// BuildPlantIndex scans the full existing-plant list into lookup maps.
// Only plants with a non-null scientific name participate in the
// scientific-name lookup.
func BuildPlantIndex(existing []domain.CanonicalPlant) *PlantIndex {
	idx := &PlantIndex{
		ids:              make(map[string]struct{}, len(existing)),
		byScientificName: make(map[string][]string),
		bySlug:           make(map[string][]string),
	}
	for _, p := range existing {
		idx.ids[p.ID] = struct{}{}
		if p.ScientificName != nil {
			if name := NormalizeScientificName(*p.ScientificName); name != "" {
				idx.byScientificName[name] = appendUnique(idx.byScientificName[name], p.ID)
			}
		}
		if slug := NormalizeSlug(p.Slug); slug != "" {
			idx.bySlug[slug] = appendUnique(idx.bySlug[slug], p.ID)
		}
	}
	return idx
}

// Match resolves one observation against a snapshot of existing plants.
func (m *PlantMatcher) Match(obs domain.PlantObservation, existing []domain.CanonicalPlant) domain.MatchResult {
	return m.MatchWithIndex(obs, BuildPlantIndex(existing))
}

// MatchWithIndex resolves one observation against a prebuilt snapshot index.
func (m *PlantMatcher) MatchWithIndex(obs domain.PlantObservation, idx *PlantIndex) domain.MatchResult {
	if obs.ExistingCanonicalID != nil {
		if _, ok := idx.ids[*obs.ExistingCanonicalID]; ok {
			return matched(*obs.ExistingCanonicalID, domain.MethodIdentifierExact, confidencePriorLink)
		}
	}

	if name := NormalizeScientificName(obs.ScientificName); name != "" {
		ids := idx.byScientificName[name]
		if len(ids) == 1 {
			return matched(ids[0], domain.MethodScientificNameExact, confidenceScientificName)
		}
		if len(ids) > 1 && m.enableDebugLogging {
			log.Printf("[MATCH] plant scientific name %q ambiguous across %d canonicals, skipping", name, len(ids))
		}
	}

	if slug := NormalizeSlug(obs.Slug); slug != "" {
		ids := idx.bySlug[slug]
		if len(ids) == 1 {
			return matched(ids[0], domain.MethodSlugExact, confidenceSlugExact)
		}
		if len(ids) > 1 && m.enableDebugLogging {
			log.Printf("[MATCH] plant slug %q ambiguous across %d canonicals, skipping", slug, len(ids))
		}
	}

	return domain.MatchResult{Method: domain.MethodNewCanonical, Confidence: confidenceNewCanonical}
}
