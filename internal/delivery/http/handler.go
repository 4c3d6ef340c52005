package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/plantarium/catalog/internal/domain"
	"github.com/plantarium/catalog/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	ingestion *usecase.IngestionService
	overrides *usecase.OverrideApplicator
	observer  *usecase.OfferObserver
	history   domain.PriceHistoryRepository
}

// NewHandler creates a new HTTP handler
func NewHandler(
	ingestion *usecase.IngestionService,
	overrides *usecase.OverrideApplicator,
	observer *usecase.OfferObserver,
	history domain.PriceHistoryRepository,
) *Handler {
	return &Handler{
		ingestion: ingestion,
		overrides: overrides,
		observer:  observer,
		history:   history,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "plantarium-catalog",
		"version": "1.0.0",
	})
}

type matchProductsRequest struct {
	SnapshotID   string                      `json:"snapshotId"`
	Existing     []domain.CanonicalProduct   `json:"existing"`
	Observations []domain.ProductObservation `json:"observations" binding:"required"`
}

// MatchProducts resolves a batch of product observations against the supplied
// snapshot of existing canonical products.
func (h *Handler) MatchProducts(c *gin.Context) {
	var req matchProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcomes, err := h.ingestion.MatchProductBatch(c.Request.Context(), req.SnapshotID, req.Existing, req.Observations)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcomes": outcomes})
}

type matchPlantsRequest struct {
	SnapshotID   string                    `json:"snapshotId"`
	Existing     []domain.CanonicalPlant   `json:"existing"`
	Observations []domain.PlantObservation `json:"observations" binding:"required"`
}

// MatchPlants resolves a batch of plant observations.
func (h *Handler) MatchPlants(c *gin.Context) {
	var req matchPlantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcomes, err := h.ingestion.MatchPlantBatch(c.Request.Context(), req.SnapshotID, req.Existing, req.Observations)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcomes": outcomes})
}

type matchOffersRequest struct {
	SnapshotID   string                    `json:"snapshotId"`
	Existing     []domain.CanonicalOffer   `json:"existing"`
	Observations []domain.OfferObservation `json:"observations" binding:"required"`
}

// MatchOffers resolves a batch of offer observations. Records with malformed
// URLs fail individually inside the response; they never abort the batch.
func (h *Handler) MatchOffers(c *gin.Context) {
	var req matchOffersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcomes, err := h.ingestion.MatchOfferBatch(c.Request.Context(), req.SnapshotID, req.Existing, req.Observations)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcomes": outcomes})
}

type resolveRequest struct {
	Values map[string]any `json:"values" binding:"required"`
}

// ResolveEntity applies the overrides on file for one canonical entity to its
// freshly normalized values and returns the result with the versioned
// explainability document (null when no overrides affected the entity).
func (h *Handler) ResolveEntity(c *gin.Context) {
	canonicalType, ok := parseCanonicalType(c.Param("type"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown canonical type: " + c.Param("type")})
		return
	}

	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resolved, explainability, err := h.overrides.Apply(c.Request.Context(), canonicalType, c.Param("id"), req.Values)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"resolvedValues": resolved,
		"explainability": usecase.RenderExplainability(explainability),
	})
}

type detailObservationRequest struct {
	ObservedPriceCents *int64     `json:"observedPriceCents"`
	ObservedCurrency   *string    `json:"observedCurrency"`
	ObservedInStock    *bool      `json:"observedInStock"`
	CheckedAt          *time.Time `json:"checkedAt"`
}

// RecordObservation merges one detail probe into the stored offer row.
func (h *Handler) RecordObservation(c *gin.Context) {
	var req detailObservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.observer.ApplyDetailObservation(
		c.Request.Context(),
		c.Param("id"),
		checkedAtOrNow(req.CheckedAt),
		usecase.DetailObservation{
			PriceCents: req.ObservedPriceCents,
			Currency:   req.ObservedCurrency,
			InStock:    req.ObservedInStock,
		},
	)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

type headObservationRequest struct {
	OK        *bool      `json:"ok" binding:"required"`
	CheckedAt *time.Time `json:"checkedAt"`
}

// RecordHeadObservation merges one reachability-only probe (HTTP HEAD).
func (h *Handler) RecordHeadObservation(c *gin.Context) {
	var req headObservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.observer.ApplyHeadObservation(c.Request.Context(), c.Param("id"), *req.OK, checkedAtOrNow(req.CheckedAt))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetPriceHistory returns the recorded price movement for one offer, newest
// first.
func (h *Handler) GetPriceHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	points, err := h.history.ListByOffer(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	if points == nil {
		points = []domain.PriceHistoryPoint{}
	}
	c.JSON(http.StatusOK, gin.H{"points": points})
}

func parseCanonicalType(raw string) (domain.CanonicalType, bool) {
	switch domain.CanonicalType(raw) {
	case domain.TypeProduct, domain.TypePlant, domain.TypeOffer:
		return domain.CanonicalType(raw), true
	default:
		return "", false
	}
}

func checkedAtOrNow(t *time.Time) time.Time {
	if t != nil {
		return t.UTC()
	}
	return time.Now().UTC()
}

// statusForError is kept small on purpose: ambiguity and missing rows are
// ordinary results in this engine, so almost nothing maps to an error status.
func statusForError(err error) int {
	if errors.Is(err, domain.ErrInvalidURL) || errors.Is(err, domain.ErrInvalidRequest) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
