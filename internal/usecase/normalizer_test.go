package usecase

import (
	"errors"
	"testing"

	"github.com/plantarium/catalog/internal/domain"
)

func TestNormalizeIdentifier(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"strips punctuation and whitespace", "UPC-123 456", "upc123456"},
		{"already normalized", "upc123456", "upc123456"},
		{"case folds", "SKU-X1", "skux1"},
		{"empty input", "", ""},
		{"only punctuation", "--- ---", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeIdentifier(tt.input); got != tt.want {
				t.Errorf("NormalizeIdentifier(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeScientificName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"collapses punctuation to spaces", "Anubias barteri var. nana", "anubias barteri var nana"},
		{"trims and collapses runs", "  Echinodorus   'Bleheri'  ", "echinodorus bleheri"},
		{"empty input stays empty", "", ""},
		{"pure punctuation normalizes to empty", "??!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeScientificName(tt.input); got != tt.want {
				t.Errorf("NormalizeScientificName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeSlug(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"spaces to hyphens", "Fluval Plant 3.0 LED", "fluval-plant-3-0-led"},
		{"trims edge hyphens", "--anubias-nana--", "anubias-nana"},
		{"collapses runs", "co2  //  diffuser", "co2-diffuser"},
		{"empty input", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeSlug(tt.input); got != tt.want {
				t.Errorf("NormalizeSlug(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeOfferURL(t *testing.T) {
	t.Run("stable equivalence across formatting differences", func(t *testing.T) {
		a, err := NormalizeOfferURL("HTTPS://Shop.example.com:443/p/1/?b=2&a=1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		b, err := NormalizeOfferURL("https://shop.example.com/p/1?a=1&b=2")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a != b {
			t.Errorf("normalized URLs differ: %q vs %q", a, b)
		}
		if a != "https://shop.example.com/p/1?a=1&b=2" {
			t.Errorf("normalized URL = %q, want %q", a, "https://shop.example.com/p/1?a=1&b=2")
		}
	})

	t.Run("drops fragment", func(t *testing.T) {
		got, err := NormalizeOfferURL("https://shop.example.com/p/1#reviews")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "https://shop.example.com/p/1" {
			t.Errorf("got %q, want fragment dropped", got)
		}
	})

	t.Run("drops default http port only", func(t *testing.T) {
		got, err := NormalizeOfferURL("http://shop.example.com:80/p")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "http://shop.example.com/p" {
			t.Errorf("got %q, want default port dropped", got)
		}

		got, err = NormalizeOfferURL("http://shop.example.com:8080/p")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "http://shop.example.com:8080/p" {
			t.Errorf("got %q, want non-default port kept", got)
		}
	})

	t.Run("collapses repeated slashes and keeps root path", func(t *testing.T) {
		got, err := NormalizeOfferURL("https://shop.example.com//p//1/")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "https://shop.example.com/p/1" {
			t.Errorf("got %q, want collapsed path", got)
		}

		got, err = NormalizeOfferURL("https://shop.example.com/")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "https://shop.example.com/" {
			t.Errorf("got %q, want root slash preserved", got)
		}
	})

	t.Run("sorts repeated query keys by value", func(t *testing.T) {
		got, err := NormalizeOfferURL("https://shop.example.com/p?tag=zebra&tag=algae")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "https://shop.example.com/p?tag=algae&tag=zebra" {
			t.Errorf("got %q, want values sorted within key", got)
		}
	})

	t.Run("rejects unparseable input", func(t *testing.T) {
		for _, input := range []string{"", "not a url", "example.com/p/1", "://missing-scheme"} {
			_, err := NormalizeOfferURL(input)
			if !errors.Is(err, domain.ErrInvalidURL) {
				t.Errorf("NormalizeOfferURL(%q) error = %v, want ErrInvalidURL", input, err)
			}
		}
	})
}
