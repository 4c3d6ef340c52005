package usecase

import (
	"errors"
	"testing"

	"github.com/plantarium/catalog/internal/domain"
)

func TestOfferMatcher(t *testing.T) {
	m := NewOfferMatcher(MatcherConfig{})

	t.Run("prior link wins", func(t *testing.T) {
		existing := []domain.CanonicalOffer{
			{ID: "offer-1", ProductID: "prod-1", RetailerID: "ret-1", URL: "https://shop.example.com/p/1"},
		}
		obs := domain.OfferObservation{
			ExistingCanonicalID: strPtr("offer-1"),
			ProductID:           "prod-9",
			RetailerID:          "ret-9",
			URL:                 "not even a url",
		}
		result, err := m.Match(obs, existing)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.CanonicalID == nil || *result.CanonicalID != "offer-1" {
			t.Fatalf("CanonicalID = %v, want offer-1", result.CanonicalID)
		}
		if result.Confidence != 100 {
			t.Errorf("Confidence = %v, want 100", result.Confidence)
		}
	})

	t.Run("fingerprint matches across url formatting", func(t *testing.T) {
		existing := []domain.CanonicalOffer{
			{ID: "offer-1", ProductID: "prod-1", RetailerID: "ret-1", URL: "HTTPS://Shop.example.com:443/p/1/?b=2&a=1"},
		}
		obs := domain.OfferObservation{ProductID: "prod-1", RetailerID: "ret-1", URL: "https://shop.example.com/p/1?a=1&b=2"}
		result, err := m.Match(obs, existing)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.CanonicalID == nil || *result.CanonicalID != "offer-1" {
			t.Fatalf("CanonicalID = %v, want offer-1", result.CanonicalID)
		}
		if result.Method != domain.MethodProductRetailerURLFingerprint {
			t.Errorf("Method = %v, want product_retailer_url_fingerprint", result.Method)
		}
		if result.Confidence != 96 {
			t.Errorf("Confidence = %v, want 96", result.Confidence)
		}
	})

	t.Run("different retailer is a different offer", func(t *testing.T) {
		existing := []domain.CanonicalOffer{
			{ID: "offer-1", ProductID: "prod-1", RetailerID: "ret-1", URL: "https://shop.example.com/p/1"},
		}
		obs := domain.OfferObservation{ProductID: "prod-1", RetailerID: "ret-2", URL: "https://shop.example.com/p/1"}
		result, err := m.Match(obs, existing)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Method != domain.MethodNewCanonical {
			t.Errorf("Method = %v, want new_canonical", result.Method)
		}
	})

	t.Run("duplicate fingerprints are ambiguous", func(t *testing.T) {
		existing := []domain.CanonicalOffer{
			{ID: "offer-1", ProductID: "prod-1", RetailerID: "ret-1", URL: "https://shop.example.com/p/1"},
			{ID: "offer-2", ProductID: "prod-1", RetailerID: "ret-1", URL: "https://shop.example.com/p/1/"},
		}
		obs := domain.OfferObservation{ProductID: "prod-1", RetailerID: "ret-1", URL: "https://shop.example.com/p/1"}
		result, err := m.Match(obs, existing)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Method != domain.MethodNewCanonical {
			t.Errorf("Method = %v, want new_canonical", result.Method)
		}
		if result.CanonicalID != nil {
			t.Errorf("CanonicalID = %v, want nil", *result.CanonicalID)
		}
	})

	t.Run("malformed observation url propagates", func(t *testing.T) {
		obs := domain.OfferObservation{ProductID: "prod-1", RetailerID: "ret-1", URL: "not a url"}
		_, err := m.Match(obs, nil)
		if !errors.Is(err, domain.ErrInvalidURL) {
			t.Errorf("error = %v, want ErrInvalidURL", err)
		}
	})

	t.Run("stored offer with broken url is skipped not fatal", func(t *testing.T) {
		existing := []domain.CanonicalOffer{
			{ID: "offer-bad", ProductID: "prod-1", RetailerID: "ret-1", URL: "::broken::"},
			{ID: "offer-1", ProductID: "prod-1", RetailerID: "ret-1", URL: "https://shop.example.com/p/1"},
		}
		obs := domain.OfferObservation{ProductID: "prod-1", RetailerID: "ret-1", URL: "https://shop.example.com/p/1"}
		result, err := m.Match(obs, existing)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.CanonicalID == nil || *result.CanonicalID != "offer-1" {
			t.Fatalf("CanonicalID = %v, want offer-1", result.CanonicalID)
		}
	})
}
