package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/fdp/internal/domain"
	"github.com/vladislavdragonenkov/fdp/internal/service/backorder"
	"github.com/vladislavdragonenkov/fdp/internal/service/pricing"
)

// PreviewLine — одна позиция предпросмотра корзины.
type PreviewLine struct {
	ProductID    string
	ProductName  string
	Requested    int64
	AvailableNow int64
	Backordered  int64
	UnitPrice    decimal.Decimal
	LineTotal    decimal.Decimal
}

// Preview — предпросмотр корзины до оформления.
type Preview struct {
	Lines        []PreviewLine
	HasBackorder bool
	TotalAmount  decimal.Decimal
}

// PreviewCart считает разбиение и цены корзины без какого-либо резервирования.
// Результат справочный: к моменту оформления остатки могут измениться.
func (s *Service) PreviewCart(ctx context.Context, actor domain.Actor, input CreateInput) (Preview, error) {
	if len(input.Lines) == 0 {
		return Preview{}, domain.ValidationError("cart must contain at least one line")
	}
	if !actor.IsAdmin() && actor.ID != input.CustomerID {
		return Preview{}, domain.ValidationError("customers may only preview their own cart")
	}

	ids := make([]string, 0, len(input.Lines))
	for _, line := range input.Lines {
		ids = append(ids, line.ProductID)
	}
	products, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return Preview{}, fmt.Errorf("load products: %w", err)
	}

	stock := make(map[string]int64, len(products))
	for _, line := range input.Lines {
		product, ok := products[line.ProductID]
		if !ok {
			return Preview{}, fmt.Errorf("%w: %s", domain.ErrProductNotFound, line.ProductID)
		}
		stock[product.ID] = product.StockOnHand
	}

	plan, err := backorder.Split(input.Lines, stock)
	if err != nil {
		return Preview{}, err
	}

	preview := Preview{
		HasBackorder: plan.HasBackorder,
		TotalAmount:  decimal.Zero,
		Lines:        make([]PreviewLine, 0, len(plan.Lines)),
	}
	for _, line := range plan.Lines {
		product := products[line.ProductID]

		unitPrice, err := s.previewPrice(ctx, product, input.CustomerID)
		if err != nil {
			return Preview{}, err
		}

		lineTotal := unitPrice.Mul(decimal.NewFromInt(line.AvailableNow))
		preview.Lines = append(preview.Lines, PreviewLine{
			ProductID:    product.ID,
			ProductName:  product.Name,
			Requested:    line.Requested,
			AvailableNow: line.AvailableNow,
			Backordered:  line.Backordered,
			UnitPrice:    unitPrice,
			LineTotal:    lineTotal,
		})
		preview.TotalAmount = preview.TotalAmount.Add(lineTotal)
	}

	return preview, nil
}

func (s *Service) previewPrice(ctx context.Context, product domain.Product, customerID string) (decimal.Decimal, error) {
	quote, err := s.pricing.Resolve(ctx, product.ID, customerID)
	if err == nil {
		return quote.FinalPrice, nil
	}
	if !errors.Is(err, domain.ErrNoCostData) {
		return decimal.Zero, fmt.Errorf("resolve price for %s: %w", product.ID, err)
	}
	return pricing.Apply(product.ReferenceCost, quote.MarginPercent, quote.DiscountPercent), nil
}
