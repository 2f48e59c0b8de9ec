package domain

import "github.com/shopspring/decimal"

// PriceQuote — результат расчёта отпускной цены для пары (товар, клиент).
// Никогда не персистится: вычисляется в момент создания заказа либо
// по запросу для каталога (в этом случае носит справочный характер).
type PriceQuote struct {
	ProductID       string
	BaseCost        decimal.Decimal
	MarginPercent   decimal.Decimal
	DiscountPercent decimal.Decimal
	FinalPrice      decimal.Decimal
}
