package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/fdp/internal/domain"
)

// Adjust атомарно применяет движение остатка и дописывает запись аудита.
func (s *ProductStore) Adjust(_ context.Context, productID string, kind domain.AdjustmentKind, delta int64, reason, actor string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.adjustLocked(productID, kind, delta, reason, actor)
}

// RestoreOrder возвращает на склад количества всех позиций заказа под одним
// захватом мьютекса — эквивалент серверной процедуры bulk-восстановления.
func (s *ProductStore) RestoreOrder(_ context.Context, order domain.Order, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Сначала валидируем все позиции, чтобы не применить восстановление частично.
	for _, item := range order.Items {
		if item.Quantity <= 0 {
			continue
		}
		if _, ok := s.products[item.ProductID]; !ok {
			return fmt.Errorf("restore order %s: %w", order.ID, domain.ErrProductNotFound)
		}
	}

	reason := fmt.Sprintf("restoration for cancelled order %s", order.Number)
	for _, item := range order.Items {
		if item.Quantity <= 0 {
			continue
		}
		if _, err := s.adjustLocked(item.ProductID, domain.AdjustmentOrderRestoration, item.Quantity, reason, actor); err != nil {
			return err
		}
	}
	return nil
}

// History возвращает журнал товара в порядке записи.
func (s *ProductStore) History(_ context.Context, productID string) ([]domain.StockAdjustment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.journal[productID]
	result := make([]domain.StockAdjustment, len(entries))
	copy(result, entries)
	return result, nil
}

func (s *ProductStore) adjustLocked(productID string, kind domain.AdjustmentKind, delta int64, reason, actor string) (int64, error) {
	product, ok := s.products[productID]
	if !ok {
		return 0, domain.ErrProductNotFound
	}

	normalized, err := domain.NormalizeDelta(kind, delta)
	if err != nil {
		return 0, err
	}

	newQuantity := product.StockOnHand + normalized
	if newQuantity < 0 {
		return 0, fmt.Errorf("%w: product %s has %d on hand, delta %d",
			domain.ErrInsufficientStock, productID, product.StockOnHand, normalized)
	}

	s.journal[productID] = append(s.journal[productID], domain.StockAdjustment{
		ID:             uuid.NewString(),
		ProductID:      productID,
		Kind:           kind,
		Delta:          normalized,
		QuantityBefore: product.StockOnHand,
		Reason:         reason,
		Actor:          actor,
		CreatedAt:      time.Now().UTC(),
	})

	product.StockOnHand = newQuantity
	product.UpdatedAt = time.Now().UTC()
	s.products[productID] = product

	return newQuantity, nil
}

var _ domain.StockLedger = (*ProductStore)(nil)
