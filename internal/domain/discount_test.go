package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/fdp/internal/domain"
)

func TestDiscountScope(t *testing.T) {
	product := domain.CustomerDiscount{ProductID: "p1", Category: "oils"}
	category := domain.CustomerDiscount{Category: "oils"}
	general := domain.CustomerDiscount{}

	// Заданный товар сужает правило, даже если категория тоже указана.
	if product.Scope() != domain.DiscountScopeProduct {
		t.Fatalf("expected product scope, got %v", product.Scope())
	}
	if category.Scope() != domain.DiscountScopeCategory {
		t.Fatalf("expected category scope, got %v", category.Scope())
	}
	if general.Scope() != domain.DiscountScopeGeneral {
		t.Fatalf("expected general scope, got %v", general.Scope())
	}
}

func TestDiscountAppliesAt(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)
	ten := decimal.NewFromInt(10)

	cases := []struct {
		name string
		d    domain.CustomerDiscount
		want bool
	}{
		{"active without window", domain.CustomerDiscount{Active: true, Percent: ten}, true},
		{"inactive", domain.CustomerDiscount{Active: false, Percent: ten}, false},
		{"window contains now", domain.CustomerDiscount{Active: true, Percent: ten, ValidFrom: &past, ValidUntil: &future}, true},
		{"window expired", domain.CustomerDiscount{Active: true, Percent: ten, ValidUntil: &past}, false},
		{"window not started", domain.CustomerDiscount{Active: true, Percent: ten, ValidFrom: &future}, false},
		{"percent above 100", domain.CustomerDiscount{Active: true, Percent: decimal.NewFromInt(120)}, false},
		{"negative percent", domain.CustomerDiscount{Active: true, Percent: decimal.NewFromInt(-1)}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.d.AppliesAt(now); got != tc.want {
				t.Fatalf("AppliesAt = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDiscountMatches(t *testing.T) {
	product := domain.CustomerDiscount{ProductID: "p1", Category: "oils"}
	if !product.Matches("p1", "anything") {
		t.Fatal("product-scoped discount must match its product")
	}
	if product.Matches("p2", "oils") {
		t.Fatal("product-scoped discount must not match other products")
	}

	category := domain.CustomerDiscount{Category: "oils"}
	if !category.Matches("p2", "oils") || category.Matches("p2", "grains") {
		t.Fatal("category-scoped discount must match by category only")
	}

	general := domain.CustomerDiscount{}
	if !general.Matches("p9", "grains") {
		t.Fatal("general discount must match everything")
	}
}
