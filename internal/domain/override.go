package domain

import "time"

// CanonicalType identifies which kind of canonical entity an override targets.
type CanonicalType string

// Canonical type constants.
const (
	TypeProduct CanonicalType = "product"
	TypePlant   CanonicalType = "plant"
	TypeOffer   CanonicalType = "offer"
)

// NormalizationOverride is an admin-authored field-level correction stored
// separately from ingested data so re-ingestion cannot erase it. One row
// exists per (CanonicalType, CanonicalID, FieldPath); the engine trusts the
// store's uniqueness and never deduplicates. Read-only to this engine.
type NormalizationOverride struct {
	ID            string        `json:"id"`
	CanonicalType CanonicalType `json:"canonicalType"`
	CanonicalID   string        `json:"canonicalId"`
	FieldPath     string        `json:"fieldPath"`
	Value         any           `json:"value"`
	Reason        string        `json:"reason,omitempty"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// FieldExplanation records, for one overridden field, which override produced
// the final value and why.
type FieldExplanation struct {
	Winner     string    `json:"winner"`
	Reason     string    `json:"reason"`
	OverrideID string    `json:"overrideId"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Explainability maps field paths to the explanation of their final value.
// Nil means no overrides affected the entity, which callers must distinguish
// from "overrides existed but none applied" — both produce nil here.
type Explainability map[string]FieldExplanation

// ExplainabilityDocument is the versioned, storable rendering of an
// Explainability map, persisted alongside the canonical row for admin-facing
// "why does this field have this value" inspection.
type ExplainabilityDocument struct {
	Version       int                         `json:"version"`
	Source        string                      `json:"source"`
	WinnerByField map[string]FieldExplanation `json:"winnerByField"`
}
