package usecase

import (
	"testing"

	"github.com/plantarium/catalog/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestProductMatcherPriorLink(t *testing.T) {
	m := NewProductMatcher(MatcherConfig{})
	existing := []domain.CanonicalProduct{
		{ID: "prod-1", Slug: "fluval-plant-led", Name: "Fluval Plant LED"},
	}

	t.Run("already linked source row keeps its canonical id", func(t *testing.T) {
		obs := domain.ProductObservation{
			ExistingCanonicalID: strPtr("prod-1"),
			Slug:                "totally-different-slug",
			Name:                "Totally Different Name",
		}
		result := m.Match(obs, existing)
		if result.CanonicalID == nil || *result.CanonicalID != "prod-1" {
			t.Fatalf("CanonicalID = %v, want prod-1", result.CanonicalID)
		}
		if result.Method != domain.MethodIdentifierExact {
			t.Errorf("Method = %v, want identifier_exact", result.Method)
		}
		if result.Confidence != 100 {
			t.Errorf("Confidence = %v, want 100", result.Confidence)
		}
	})

	t.Run("matching twice returns the same id", func(t *testing.T) {
		obs := domain.ProductObservation{ExistingCanonicalID: strPtr("prod-1")}
		first := m.Match(obs, existing)
		second := m.Match(obs, existing)
		if *first.CanonicalID != *second.CanonicalID {
			t.Errorf("repeated match diverged: %v vs %v", *first.CanonicalID, *second.CanonicalID)
		}
	})

	t.Run("stale prior link falls through", func(t *testing.T) {
		obs := domain.ProductObservation{ExistingCanonicalID: strPtr("prod-gone")}
		result := m.Match(obs, existing)
		if result.Method != domain.MethodNewCanonical {
			t.Errorf("Method = %v, want new_canonical", result.Method)
		}
		if result.CanonicalID != nil {
			t.Errorf("CanonicalID = %v, want nil", *result.CanonicalID)
		}
	})
}

func TestProductMatcherIdentifierExact(t *testing.T) {
	m := NewProductMatcher(MatcherConfig{})

	t.Run("sku matches across formatting differences", func(t *testing.T) {
		existing := []domain.CanonicalProduct{
			{ID: "prod-1", Slug: "co2-diffuser", Name: "CO2 Diffuser", Meta: map[string]any{"sku": "X1"}},
		}
		obs := domain.ProductObservation{Name: "CO2 Diffuser (new batch)", SKU: "x1"}
		result := m.Match(obs, existing)
		if result.CanonicalID == nil || *result.CanonicalID != "prod-1" {
			t.Fatalf("CanonicalID = %v, want prod-1", result.CanonicalID)
		}
		if result.Method != domain.MethodIdentifierExact {
			t.Errorf("Method = %v, want identifier_exact", result.Method)
		}
	})

	t.Run("nested meta identifiers map participates", func(t *testing.T) {
		existing := []domain.CanonicalProduct{
			{ID: "prod-2", Slug: "heater-100w", Meta: map[string]any{
				"identifiers": map[string]any{"legacy_id": "HT-0100"},
			}},
		}
		obs := domain.ProductObservation{Identifiers: map[string]any{"vendor_code": "ht0100"}}
		result := m.Match(obs, existing)
		if result.CanonicalID == nil || *result.CanonicalID != "prod-2" {
			t.Fatalf("CanonicalID = %v, want prod-2", result.CanonicalID)
		}
	})

	t.Run("identifier shared by two products is ignored", func(t *testing.T) {
		existing := []domain.CanonicalProduct{
			{ID: "prod-1", Slug: "a", Meta: map[string]any{"sku": "DUP-1"}},
			{ID: "prod-2", Slug: "b", Meta: map[string]any{"sku": "DUP-1"}},
		}
		obs := domain.ProductObservation{SKU: "dup1"}
		result := m.Match(obs, existing)
		if result.Method != domain.MethodNewCanonical {
			t.Errorf("Method = %v, want new_canonical", result.Method)
		}
		if result.CanonicalID != nil {
			t.Errorf("CanonicalID = %v, want nil", *result.CanonicalID)
		}
	})

	t.Run("identifiers pointing at different products never pick one", func(t *testing.T) {
		existing := []domain.CanonicalProduct{
			{ID: "prod-1", Slug: "a", Meta: map[string]any{"sku": "AAA"}},
			{ID: "prod-2", Slug: "b", Meta: map[string]any{"upc": "BBB"}},
		}
		obs := domain.ProductObservation{SKU: "aaa", UPC: "bbb"}
		result := m.Match(obs, existing)
		if result.Method != domain.MethodNewCanonical {
			t.Errorf("Method = %v, want new_canonical", result.Method)
		}
		if result.CanonicalID != nil {
			t.Errorf("CanonicalID = %v, want nil", *result.CanonicalID)
		}
	})

	t.Run("agreeing identifiers still match", func(t *testing.T) {
		existing := []domain.CanonicalProduct{
			{ID: "prod-1", Slug: "a", Meta: map[string]any{"sku": "AAA", "upc": "BBB"}},
		}
		obs := domain.ProductObservation{SKU: "aaa", UPC: "bbb"}
		result := m.Match(obs, existing)
		if result.CanonicalID == nil || *result.CanonicalID != "prod-1" {
			t.Fatalf("CanonicalID = %v, want prod-1", result.CanonicalID)
		}
	})

	t.Run("numeric identifier values are usable", func(t *testing.T) {
		existing := []domain.CanonicalProduct{
			{ID: "prod-1", Slug: "a", Meta: map[string]any{"upc": "123456"}},
		}
		obs := domain.ProductObservation{Identifiers: map[string]any{"upc": float64(123456)}}
		result := m.Match(obs, existing)
		if result.CanonicalID == nil || *result.CanonicalID != "prod-1" {
			t.Fatalf("CanonicalID = %v, want prod-1", result.CanonicalID)
		}
	})
}

func TestProductMatcherBrandModelFingerprint(t *testing.T) {
	m := NewProductMatcher(MatcherConfig{})

	t.Run("brand plus model number matches", func(t *testing.T) {
		existing := []domain.CanonicalProduct{
			{ID: "prod-1", Slug: "fluval-307", BrandID: strPtr("brand-fluval"), Name: "Fluval 307 Canister Filter",
				Meta: map[string]any{"model_number": "A447"}},
			{ID: "prod-2", Slug: "eheim-250", BrandID: strPtr("brand-eheim"), Name: "Eheim Classic 250",
				Meta: map[string]any{"model_number": "A447"}},
		}
		obs := domain.ProductObservation{BrandID: strPtr("brand-fluval"), ModelNumber: "a-447"}
		result := m.Match(obs, existing)
		if result.CanonicalID == nil || *result.CanonicalID != "prod-1" {
			t.Fatalf("CanonicalID = %v, want prod-1", result.CanonicalID)
		}
		if result.Method != domain.MethodBrandModelFingerprint {
			t.Errorf("Method = %v, want brand_model_fingerprint", result.Method)
		}
		if result.Confidence != 92 {
			t.Errorf("Confidence = %v, want 92", result.Confidence)
		}
	})

	t.Run("falls back to name when model fields missing", func(t *testing.T) {
		existing := []domain.CanonicalProduct{
			{ID: "prod-1", Slug: "wave-maker", BrandID: strPtr("brand-hygger"), Name: "Wave Maker 2400"},
		}
		obs := domain.ProductObservation{BrandID: strPtr("brand-hygger"), Name: "Wave-Maker 2400!"}
		result := m.Match(obs, existing)
		if result.CanonicalID == nil || *result.CanonicalID != "prod-1" {
			t.Fatalf("CanonicalID = %v, want prod-1", result.CanonicalID)
		}
	})

	t.Run("shared fingerprint is ambiguous", func(t *testing.T) {
		existing := []domain.CanonicalProduct{
			{ID: "prod-1", Slug: "a", BrandID: strPtr("brand-x"), Name: "Nano Pump"},
			{ID: "prod-2", Slug: "b", BrandID: strPtr("brand-x"), Name: "Nano Pump"},
		}
		obs := domain.ProductObservation{BrandID: strPtr("brand-x"), Name: "Nano Pump"}
		result := m.Match(obs, existing)
		if result.Method != domain.MethodNewCanonical {
			t.Errorf("Method = %v, want new_canonical", result.Method)
		}
	})

	t.Run("no brand skips the strategy", func(t *testing.T) {
		existing := []domain.CanonicalProduct{
			{ID: "prod-1", Slug: "a", BrandID: strPtr("brand-x"), Name: "Nano Pump"},
		}
		obs := domain.ProductObservation{Name: "Nano Pump"}
		result := m.Match(obs, existing)
		if result.Method != domain.MethodNewCanonical {
			t.Errorf("Method = %v, want new_canonical", result.Method)
		}
	})
}

func TestProductMatcherNewCanonical(t *testing.T) {
	m := NewProductMatcher(MatcherConfig{})
	result := m.Match(domain.ProductObservation{Name: "Unknown Thing"}, nil)
	if result.CanonicalID != nil {
		t.Errorf("CanonicalID = %v, want nil", *result.CanonicalID)
	}
	if result.Method != domain.MethodNewCanonical {
		t.Errorf("Method = %v, want new_canonical", result.Method)
	}
	if result.Confidence != 80 {
		t.Errorf("Confidence = %v, want 80", result.Confidence)
	}
}
