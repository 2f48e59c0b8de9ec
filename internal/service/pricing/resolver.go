package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fdp/internal/domain"
)

// CurrencyScale — точность денежных значений (знаков после запятой).
const CurrencyScale = 2

// DefaultMarginPercent — наценка по умолчанию, если конфигурация её не задаёт.
var DefaultMarginPercent = decimal.NewFromInt(25)

var hundred = decimal.NewFromInt(100)

// Config задаёт глобальную наценку. Передаётся явно, а не через
// глобальное состояние, чтобы расчёт оставался чистой функцией входов.
type Config struct {
	MarginPercent decimal.Decimal
}

// DefaultConfig возвращает конфигурацию с наценкой по умолчанию.
func DefaultConfig() Config {
	return Config{MarginPercent: DefaultMarginPercent}
}

// Resolver вычисляет отпускную цену из закупочной истории и скидочных правил.
// Только читает данные; ничего не персистит.
type Resolver struct {
	products  domain.ProductRepository
	batches   domain.BatchRepository
	receiving domain.ReceivingRepository
	discounts domain.DiscountRepository
	customers domain.CustomerRepository
	margin    decimal.Decimal
	logger    *log.Entry
	now       func() time.Time
}

// NewResolver создаёт рабочий экземпляр резолвера цен.
func NewResolver(
	products domain.ProductRepository,
	batches domain.BatchRepository,
	receiving domain.ReceivingRepository,
	discounts domain.DiscountRepository,
	customers domain.CustomerRepository,
	cfg Config,
	logger *log.Entry,
) *Resolver {
	if logger == nil {
		logger = log.New().WithField("component", "pricing")
	}
	margin := cfg.MarginPercent
	if margin.IsZero() {
		margin = DefaultMarginPercent
	}
	return &Resolver{
		products:  products,
		batches:   batches,
		receiving: receiving,
		discounts: discounts,
		customers: customers,
		margin:    margin,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Resolve возвращает расчёт цены для пары (товар, клиент). Пустой customerID —
// не ошибка: скидка просто нулевая. При отсутствии закупочных данных
// возвращает ErrNoCostData вместе с котировкой, в которой заполнена скидка,
// а базовая цена нулевая — fallback выбирает вызывающий.
func (r *Resolver) Resolve(ctx context.Context, productID, customerID string) (domain.PriceQuote, error) {
	product, err := r.products.Get(ctx, productID)
	if err != nil {
		return domain.PriceQuote{}, err
	}

	discount := decimal.Zero
	if customerID != "" {
		discount, err = r.resolveDiscount(ctx, customerID, product)
		if err != nil {
			return domain.PriceQuote{}, err
		}
	}

	quote := domain.PriceQuote{
		ProductID:       product.ID,
		MarginPercent:   r.margin,
		DiscountPercent: discount,
	}

	base, err := r.baseCost(ctx, product)
	if err != nil {
		return quote, err
	}

	quote.BaseCost = base
	quote.FinalPrice = Apply(base, r.margin, discount)
	return quote, nil
}

// Apply считает отпускную цену из базовой: наценка мультипликативно, затем
// результат приводится к валютной точности (это цена каталога), затем скидка
// и финальное округление half-up; цена не бывает отрицательной.
func Apply(base, marginPercent, discountPercent decimal.Decimal) decimal.Decimal {
	withMargin := base.Mul(decimal.NewFromInt(1).Add(marginPercent.Div(hundred))).Round(CurrencyScale)
	final := withMargin.Mul(decimal.NewFromInt(1).Sub(discountPercent.Div(hundred)))
	if final.IsNegative() {
		final = decimal.Zero
	}
	return final.Round(CurrencyScale)
}

// baseCost — средневзвешенная закупочная цена: сперва по партиям товара с
// известной ценой, затем по историческим записям приёмки, сопоставленным
// по наименованию. Нет ни того ни другого — ErrNoCostData.
func (r *Resolver) baseCost(ctx context.Context, product domain.Product) (decimal.Decimal, error) {
	batches, err := r.batches.ListByProduct(ctx, product.ID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("list batches: %w", err)
	}

	totalQty := decimal.Zero
	totalCost := decimal.Zero
	for _, batch := range batches {
		if !batch.UnitCost.Valid || batch.Quantity <= 0 {
			continue
		}
		qty := decimal.NewFromInt(batch.Quantity)
		totalQty = totalQty.Add(qty)
		totalCost = totalCost.Add(qty.Mul(batch.UnitCost.Decimal))
	}
	if totalQty.IsPositive() {
		return totalCost.Div(totalQty), nil
	}

	records, err := r.receiving.ListByProductName(ctx, product.Name)
	if err != nil {
		return decimal.Zero, fmt.Errorf("list receiving records: %w", err)
	}

	totalQty = decimal.Zero
	totalCost = decimal.Zero
	for _, rec := range records {
		if rec.Quantity <= 0 {
			continue
		}
		qty := decimal.NewFromInt(rec.Quantity)
		totalQty = totalQty.Add(qty)
		totalCost = totalCost.Add(qty.Mul(rec.UnitCost))
	}
	if totalQty.IsPositive() {
		return totalCost.Div(totalQty), nil
	}

	return decimal.Zero, domain.ErrNoCostData
}

// resolveDiscount выбирает процент по строгому приоритету специфичности:
// товарная скидка перекрывает категорийную, категорийная — общую, независимо
// от величины. Внутри одного уровня берётся максимальный процент.
func (r *Resolver) resolveDiscount(ctx context.Context, customerID string, product domain.Product) (decimal.Decimal, error) {
	if _, err := r.customers.Get(ctx, customerID); err != nil {
		return decimal.Zero, err
	}

	rules, err := r.discounts.ListByCustomer(ctx, customerID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("list discounts: %w", err)
	}

	now := r.now()
	bestScope := domain.DiscountScope(-1)
	best := decimal.Zero
	for _, rule := range rules {
		if !rule.AppliesAt(now) || !rule.Matches(product.ID, product.Category) {
			continue
		}
		scope := rule.Scope()
		if scope > bestScope {
			bestScope = scope
			best = rule.Percent
			continue
		}
		if scope == bestScope && rule.Percent.GreaterThan(best) {
			best = rule.Percent
		}
	}

	return best, nil
}
