package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountScope — уровень специфичности скидки.
type DiscountScope int

const (
	// DiscountScopeGeneral — скидка на весь ассортимент для клиента.
	DiscountScopeGeneral DiscountScope = iota
	// DiscountScopeCategory — скидка на категорию.
	DiscountScopeCategory
	// DiscountScopeProduct — скидка на конкретный товар.
	DiscountScopeProduct
)

// CustomerDiscount — персональное правило скидки клиента.
// ProductID и Category опциональны: заданный ProductID сужает правило до
// товара (даже если категория тоже указана), одна категория — до категории,
// пустые оба поля означают скидку на весь магазин.
type CustomerDiscount struct {
	ID         string
	CustomerID string
	ProductID  string
	Category   string
	Percent    decimal.Decimal
	Active     bool
	ValidFrom  *time.Time
	ValidUntil *time.Time
	CreatedAt  time.Time
}

// Scope возвращает уровень специфичности правила.
func (d CustomerDiscount) Scope() DiscountScope {
	switch {
	case d.ProductID != "":
		return DiscountScopeProduct
	case d.Category != "":
		return DiscountScopeCategory
	default:
		return DiscountScopeGeneral
	}
}

// AppliesAt проверяет активность правила и попадание now в окно действия.
func (d CustomerDiscount) AppliesAt(now time.Time) bool {
	if !d.Active {
		return false
	}
	if d.Percent.IsNegative() || d.Percent.GreaterThan(decimal.NewFromInt(100)) {
		return false
	}
	if d.ValidFrom != nil && now.Before(*d.ValidFrom) {
		return false
	}
	if d.ValidUntil != nil && now.After(*d.ValidUntil) {
		return false
	}
	return true
}

// Matches проверяет, покрывает ли правило пару (товар, категория).
func (d CustomerDiscount) Matches(productID, category string) bool {
	switch d.Scope() {
	case DiscountScopeProduct:
		return d.ProductID == productID
	case DiscountScopeCategory:
		return d.Category == category
	default:
		return true
	}
}
