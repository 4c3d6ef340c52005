package usecase

import (
	"context"
	"log"
	"sort"
	"strings"

	"github.com/plantarium/catalog/internal/domain"
)

// explainabilityVersion is the schema version of the stored explainability
// document.
const explainabilityVersion = 1

// defaultOverrideReason is recorded when an admin saved an override without
// a reason.
const defaultOverrideReason = "manual admin override"

// OverrideApplicator layers admin-authored field-level corrections on top of
// freshly normalized entity values. Overrides always win for the fields they
// target, so re-ingestion cannot clobber a human correction, and each applied
// override is recorded in an explainability map for admin inspection.
type OverrideApplicator struct {
	overrides          domain.OverrideRepository
	enableDebugLogging bool
}

// NewOverrideApplicator creates a new override applicator
func NewOverrideApplicator(overrides domain.OverrideRepository, config MatcherConfig) *OverrideApplicator {
	return &OverrideApplicator{
		overrides:          overrides,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// Apply loads the overrides on file for (canonicalType, canonicalID) and
// applies them to a deep clone of normalizedValues in ascending field-path
// order. The input map is never mutated; the caller keeps it for audit/diff.
//
// An override whose root path segment does not exist on the normalized values
// is silently skipped: overrides can only replace or descend into fields the
// normalizer itself produced, which keeps stale override rows written against
// an older output shape inert instead of corrupting the entity.
//
// The returned explainability is nil when no overrides were loaded or none
// were applicable, so "no overrides affected this entity" is distinguishable
// from "overrides existed but no-op".
func (a *OverrideApplicator) Apply(
	ctx context.Context,
	canonicalType domain.CanonicalType,
	canonicalID string,
	normalizedValues map[string]any,
) (map[string]any, domain.Explainability, error) {
	rows, err := a.overrides.ListByCanonical(ctx, canonicalType, canonicalID)
	if err != nil {
		return nil, nil, err
	}

	resolved, ok := deepCopyValue(normalizedValues).(map[string]any)
	if !ok {
		resolved = map[string]any{}
	}
	if len(rows) == 0 {
		return resolved, nil, nil
	}

	// The store orders by field path already; sort again so application
	// order never depends on the repository implementation. Sort order is
	// the only precedence rule between overlapping paths (e.g. "specs" vs
	// "specs.wattage").
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].FieldPath < rows[j].FieldPath })

	explainability := domain.Explainability{}
	for _, row := range rows {
		if !applyOverride(resolved, row) {
			if a.enableDebugLogging {
				log.Printf("[OVERRIDE] skipping %s: root of path %q not present on %s %s",
					row.ID, row.FieldPath, canonicalType, canonicalID)
			}
			continue
		}
		reason := row.Reason
		if reason == "" {
			reason = defaultOverrideReason
		}
		explainability[row.FieldPath] = domain.FieldExplanation{
			Winner:     "override",
			Reason:     reason,
			OverrideID: row.ID,
			UpdatedAt:  row.UpdatedAt,
		}
	}

	if len(explainability) == 0 {
		return resolved, nil, nil
	}
	return resolved, explainability, nil
}

// applyOverride sets the override value at its dot-separated path, reporting
// whether it applied. The root segment must pre-exist; intermediate segments
// that are not objects are replaced with empty objects so a previously-scalar
// nested path can still be overridden.
func applyOverride(target map[string]any, row domain.NormalizationOverride) bool {
	segments := strings.Split(row.FieldPath, ".")
	if _, exists := target[segments[0]]; !exists {
		return false
	}

	if len(segments) == 1 {
		// Wholesale replacement, structured values included
		target[segments[0]] = row.Value
		return true
	}

	cursor := target
	for _, segment := range segments[:len(segments)-1] {
		next, isMap := cursor[segment].(map[string]any)
		if !isMap {
			next = map[string]any{}
			cursor[segment] = next
		}
		cursor = next
	}
	cursor[segments[len(segments)-1]] = row.Value
	return true
}

// RenderExplainability produces the versioned storable document for an
// explainability map, or nil when no overrides affected the entity.
func RenderExplainability(explainability domain.Explainability) *domain.ExplainabilityDocument {
	if len(explainability) == 0 {
		return nil
	}
	return &domain.ExplainabilityDocument{
		Version:       explainabilityVersion,
		Source:        "normalization_overrides",
		WinnerByField: explainability,
	}
}

// deepCopyValue clones a JSON-shaped value tree (maps, slices, scalars).
func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = deepCopyValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return val
	}
}
