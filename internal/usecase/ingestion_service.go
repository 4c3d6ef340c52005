package usecase

import (
	"context"
	"log"
	"time"

	"github.com/plantarium/catalog/internal/domain"
)

// IngestionConfig holds configuration for the batch ingestion coordinator
type IngestionConfig struct {
	SnapshotTTL        time.Duration
	EnableDebugLogging bool
}

// BatchOutcome is the per-record result of a batch match call. Exactly one of
// Result and Error is set; a failed record (malformed URL) is reported here
// so the pipeline's per-record failure accounting works without aborting the
// rest of the batch.
type BatchOutcome struct {
	Index  int                 `json:"index"`
	Result *domain.MatchResult `json:"result,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// IngestionService is the batch entry point used by ingestion workers. It
// builds each snapshot's identifier indexes once and reuses them across every
// match call in the batch. When the caller names its snapshot, the built
// index is cached with a TTL so consecutive batches over the same snapshot
// skip the full-list scan.
type IngestionService struct {
	products           *ProductMatcher
	plants             *PlantMatcher
	offers             *OfferMatcher
	snapshots          domain.SnapshotCache
	snapshotTTL        time.Duration
	enableDebugLogging bool
}

// NewIngestionService creates a new ingestion service with the given
// matchers and snapshot cache.
func NewIngestionService(
	products *ProductMatcher,
	plants *PlantMatcher,
	offers *OfferMatcher,
	snapshots domain.SnapshotCache,
	config IngestionConfig,
) *IngestionService {
	ttl := config.SnapshotTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &IngestionService{
		products:           products,
		plants:             plants,
		offers:             offers,
		snapshots:          snapshots,
		snapshotTTL:        ttl,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// MatchProductBatch resolves a batch of product observations against one
// consistent snapshot of existing canonical products.
func (s *IngestionService) MatchProductBatch(
	ctx context.Context,
	snapshotID string,
	existing []domain.CanonicalProduct,
	observations []domain.ProductObservation,
) ([]BatchOutcome, error) {
	var idx *ProductIndex
	if cached, ok := s.cachedIndex(ctx, "product", snapshotID); ok {
		idx = cached.(*ProductIndex)
	} else {
		idx = BuildProductIndex(existing)
		s.storeIndex(ctx, "product", snapshotID, idx)
	}

	outcomes := make([]BatchOutcome, 0, len(observations))
	for i, obs := range observations {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		result := s.products.MatchWithIndex(obs, idx)
		outcomes = append(outcomes, BatchOutcome{Index: i, Result: &result})
	}
	return outcomes, nil
}

// MatchPlantBatch resolves a batch of plant observations against one
// consistent snapshot of existing canonical plants.
func (s *IngestionService) MatchPlantBatch(
	ctx context.Context,
	snapshotID string,
	existing []domain.CanonicalPlant,
	observations []domain.PlantObservation,
) ([]BatchOutcome, error) {
	var idx *PlantIndex
	if cached, ok := s.cachedIndex(ctx, "plant", snapshotID); ok {
		idx = cached.(*PlantIndex)
	} else {
		idx = BuildPlantIndex(existing)
		s.storeIndex(ctx, "plant", snapshotID, idx)
	}

	outcomes := make([]BatchOutcome, 0, len(observations))
	for i, obs := range observations {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		result := s.plants.MatchWithIndex(obs, idx)
		outcomes = append(outcomes, BatchOutcome{Index: i, Result: &result})
	}
	return outcomes, nil
}

// MatchOfferBatch resolves a batch of offer observations against one
// consistent snapshot of existing canonical offers. Records with malformed
// URLs fail individually without aborting the batch.
func (s *IngestionService) MatchOfferBatch(
	ctx context.Context,
	snapshotID string,
	existing []domain.CanonicalOffer,
	observations []domain.OfferObservation,
) ([]BatchOutcome, error) {
	var idx *OfferIndex
	if cached, ok := s.cachedIndex(ctx, "offer", snapshotID); ok {
		idx = cached.(*OfferIndex)
	} else {
		idx = BuildOfferIndex(existing)
		s.storeIndex(ctx, "offer", snapshotID, idx)
	}

	outcomes := make([]BatchOutcome, 0, len(observations))
	for i, obs := range observations {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		result, err := s.offers.MatchWithIndex(obs, idx)
		if err != nil {
			outcomes = append(outcomes, BatchOutcome{Index: i, Error: err.Error()})
			continue
		}
		outcomes = append(outcomes, BatchOutcome{Index: i, Result: &result})
	}
	return outcomes, nil
}

// cachedIndex looks up a previously built index for a named snapshot.
// Anonymous snapshots (empty id) are never cached: without a name there is no
// way to know two batches saw the same record set.
func (s *IngestionService) cachedIndex(ctx context.Context, kind, snapshotID string) (any, bool) {
	if s.snapshots == nil || snapshotID == "" {
		return nil, false
	}
	cached, err := s.snapshots.Get(ctx, snapshotKey(kind, snapshotID))
	if err != nil {
		return nil, false
	}
	if s.enableDebugLogging {
		log.Printf("[INGEST] reusing %s index for snapshot %s", kind, snapshotID)
	}
	return cached, true
}

func (s *IngestionService) storeIndex(ctx context.Context, kind, snapshotID string, idx any) {
	if s.snapshots == nil || snapshotID == "" {
		return
	}
	if err := s.snapshots.Set(ctx, snapshotKey(kind, snapshotID), idx, s.snapshotTTL); err != nil && s.enableDebugLogging {
		log.Printf("[INGEST] failed to cache %s index for snapshot %s: %v", kind, snapshotID, err)
	}
}

func snapshotKey(kind, snapshotID string) string {
	return "snapshot:" + kind + ":" + snapshotID
}
