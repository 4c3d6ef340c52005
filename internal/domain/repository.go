package domain

import (
	"context"
	"time"
)

// OverrideRepository reads admin-authored overrides for one canonical entity.
// Implementations must return rows ordered by field path ascending so
// application order is deterministic.
type OverrideRepository interface {
	ListByCanonical(ctx context.Context, canonicalType CanonicalType, canonicalID string) ([]NormalizationOverride, error)
}

// OfferRepository is the read/write surface for canonical offer rows.
// GetByID returns (nil, nil) when the offer does not exist: an offer
// vanishing between snapshot and refresh is an expected race in a
// multi-worker system, not a fatal condition.
type OfferRepository interface {
	GetByID(ctx context.Context, id string) (*CanonicalOffer, error)
	Upsert(ctx context.Context, offer *CanonicalOffer) error
	Update(ctx context.Context, offer *CanonicalOffer) error
	TouchLastChecked(ctx context.Context, id string, checkedAt time.Time) error
}

// PriceHistoryRepository is the append-only price movement sink.
type PriceHistoryRepository interface {
	Append(ctx context.Context, point PriceHistoryPoint) error
	ListByOffer(ctx context.Context, offerID string, limit int) ([]PriceHistoryPoint, error)
}

// SnapshotCache caches per-batch derived structures (identifier indexes)
// keyed by a caller-supplied snapshot id with a TTL.
type SnapshotCache interface {
	Get(ctx context.Context, key string) (any, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
