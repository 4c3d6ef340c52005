package usecase

import (
	"context"
	"log"
	"time"

	"github.com/plantarium/catalog/internal/domain"
)

// DetailObservation carries the optionally-present fields of one price/stock
// probe. Nil means "not observed this time", never "observed as empty".
type DetailObservation struct {
	PriceCents *int64  `json:"observedPriceCents,omitempty"`
	Currency   *string `json:"observedCurrency,omitempty"`
	InStock    *bool   `json:"observedInStock,omitempty"`
}

// ObservationResult reports what an observation did to the stored offer.
type ObservationResult struct {
	MeaningfulChange     bool `json:"meaningfulChange"`
	PriceHistoryAppended bool `json:"priceHistoryAppended"`
}

// OfferObserver merges fresh price/stock observations into the canonical
// offer row and appends price history only when something actually moved.
// last_checked_at always advances so downstream freshness dashboards can tell
// "stale because never probed" from "probed repeatedly with no change".
//
// Concurrent invocations for the same offer id are not serialized here; the
// ingestion pipeline must hold one in-flight refresh per offer id. Different
// offer ids are fully independent.
type OfferObserver struct {
	offers             domain.OfferRepository
	history            domain.PriceHistoryRepository
	enableDebugLogging bool
}

// NewOfferObserver creates a new offer observer
func NewOfferObserver(offers domain.OfferRepository, history domain.PriceHistoryRepository, config MatcherConfig) *OfferObserver {
	return &OfferObserver{
		offers:             offers,
		history:            history,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// ApplyDetailObservation merges one full probe into the stored offer.
// A missing offer row yields a no-op result, not an error: the offer
// vanishing between snapshot and refresh is an expected multi-worker race.
func (o *OfferObserver) ApplyDetailObservation(
	ctx context.Context,
	offerID string,
	checkedAt time.Time,
	obs DetailObservation,
) (ObservationResult, error) {
	offer, err := o.offers.GetByID(ctx, offerID)
	if err != nil {
		return ObservationResult{}, err
	}
	if offer == nil {
		if o.enableDebugLogging {
			log.Printf("[OBSERVE] offer %s no longer exists, dropping observation", offerID)
		}
		return ObservationResult{}, nil
	}

	next := *offer
	changed := false
	if obs.PriceCents != nil && !int64PtrEqual(offer.PriceCents, obs.PriceCents) {
		next.PriceCents = obs.PriceCents
		changed = true
	}
	if obs.Currency != nil && *obs.Currency != offer.Currency {
		next.Currency = *obs.Currency
		changed = true
	}
	if obs.InStock != nil && *obs.InStock != offer.InStock {
		next.InStock = *obs.InStock
		changed = true
	}

	if !changed {
		if err := o.offers.TouchLastChecked(ctx, offerID, checkedAt); err != nil {
			return ObservationResult{}, err
		}
		return ObservationResult{}, nil
	}

	next.UpdatedAt = checkedAt
	next.LastCheckedAt = checkedAt
	if err := o.offers.Update(ctx, &next); err != nil {
		return ObservationResult{}, err
	}

	result := ObservationResult{MeaningfulChange: true}
	if next.PriceCents != nil {
		point := domain.PriceHistoryPoint{
			OfferID:    offerID,
			PriceCents: *next.PriceCents,
			InStock:    next.InStock,
			RecordedAt: checkedAt,
		}
		if err := o.history.Append(ctx, point); err != nil {
			return result, err
		}
		result.PriceHistoryAppended = true
	}

	if o.enableDebugLogging {
		log.Printf("[OBSERVE] offer %s changed, history appended=%v", offerID, result.PriceHistoryAppended)
	}
	return result, nil
}

// ApplyHeadObservation records a reachability-only probe (HTTP HEAD). It only
// ever supplies the stock signal and delegates to the detail path.
func (o *OfferObserver) ApplyHeadObservation(ctx context.Context, offerID string, ok bool, checkedAt time.Time) error {
	_, err := o.ApplyDetailObservation(ctx, offerID, checkedAt, DetailObservation{InStock: &ok})
	return err
}

func int64PtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
