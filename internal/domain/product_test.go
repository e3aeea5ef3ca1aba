package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/store/internal/domain"
)

func TestProduct_IsInStock(t *testing.T) {
	cases := []struct {
		stock   int
		inStock bool
	}{
		{-5, false},
		{-1, false},
		{0, false},
		{1, true},
		{100, true},
	}

	for _, tc := range cases {
		p := domain.Product{StockQuantity: tc.stock}
		if p.IsInStock() != tc.inStock {
			t.Fatalf("stock=%d: expected inStock=%v", tc.stock, tc.inStock)
		}
	}
}

func TestNormalizeLanguage(t *testing.T) {
	cases := []struct {
		in, out string
	}{
		{"EN", "en"},
		{"  Fr ", "fr"},
		{"", "en"},
		{"   ", "en"},
		{"de", "de"},
	}

	for _, tc := range cases {
		if got := domain.NormalizeLanguage(tc.in); got != tc.out {
			t.Fatalf("normalize %q: expected %q, got %q", tc.in, tc.out, got)
		}
	}
}

func translationsFixture() []domain.Translation {
	return []domain.Translation{
		{ID: 1, Language: "de", Name: "Stift"},
		{ID: 2, Language: "en", Name: "Pen", Description: "Ballpoint pen"},
		{ID: 3, Language: "fr", Name: "Stylo"},
	}
}

func TestResolveTranslation_ExactMatch(t *testing.T) {
	tr := domain.ResolveTranslation(translationsFixture(), "FR")
	if tr == nil || tr.Name != "Stylo" {
		t.Fatalf("expected french translation, got %+v", tr)
	}
}

func TestResolveTranslation_FallbackToEnglish(t *testing.T) {
	tr := domain.ResolveTranslation(translationsFixture(), "es")
	if tr == nil || tr.Name != "Pen" {
		t.Fatalf("expected english fallback, got %+v", tr)
	}
}

func TestResolveTranslation_FirstAvailable(t *testing.T) {
	set := []domain.Translation{
		{ID: 1, Language: "de", Name: "Stift"},
		{ID: 2, Language: "fr", Name: "Stylo"},
	}

	tr := domain.ResolveTranslation(set, "es")
	if tr == nil || tr.Name != "Stift" {
		t.Fatalf("expected first available translation, got %+v", tr)
	}
}

func TestResolveTranslation_EmptySet(t *testing.T) {
	if tr := domain.ResolveTranslation(nil, "en"); tr != nil {
		t.Fatalf("expected nil for empty set, got %+v", tr)
	}
}

func TestResolveTranslation_Deterministic(t *testing.T) {
	set := translationsFixture()
	for i := 0; i < 10; i++ {
		first := domain.ResolveTranslation(set, "es")
		second := domain.ResolveTranslation(set, "es")
		if first.ID != second.ID {
			t.Fatalf("resolution is not deterministic: %d vs %d", first.ID, second.ID)
		}
	}
}

func TestProduct_Clone(t *testing.T) {
	p := domain.Product{
		ID:           1,
		Price:        decimal.RequireFromString("10.00"),
		Translations: translationsFixture(),
	}

	clone := p.Clone()
	clone.Translations[0].Name = "changed"

	if p.Translations[0].Name == "changed" {
		t.Fatal("clone must not share translation storage with the original")
	}
}
