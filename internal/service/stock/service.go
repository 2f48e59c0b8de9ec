package stock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fdp/internal/domain"
	"github.com/vladislavdragonenkov/fdp/internal/metrics"
)

// goodsReceiptReason — причина складского движения при приёмке партии.
const goodsReceiptReason = "goods receipt"

// Service — операции над складом поверх журнала движений: административные
// корректировки, приёмка партий, отчёты. Резервирование под заказ живёт в
// сервисе заказов, который работает с журналом напрямую.
type Service struct {
	products domain.ProductRepository
	batches  domain.BatchRepository
	ledger   domain.StockLedger
	metrics  *metrics.EngineMetrics
	logger   *log.Entry
}

// NewService создаёт складской сервис.
func NewService(
	products domain.ProductRepository,
	batches domain.BatchRepository,
	ledger domain.StockLedger,
	engineMetrics *metrics.EngineMetrics,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "stock")
	}
	if engineMetrics == nil {
		engineMetrics = metrics.NewEngineMetrics()
	}
	return &Service{
		products: products,
		batches:  batches,
		ledger:   ledger,
		metrics:  engineMetrics,
		logger:   logger,
	}
}

// Adjust применяет административную корректировку остатка и возвращает новый
// остаток. Заказные виды движений через эту операцию не ходят.
func (s *Service) Adjust(ctx context.Context, productID string, kind domain.AdjustmentKind, delta int64, reason string, actor domain.Actor) (int64, error) {
	if !actor.IsAdmin() {
		return 0, domain.ValidationError("stock adjustments require admin role")
	}
	if kind == domain.AdjustmentOrderReservation || kind == domain.AdjustmentOrderRestoration {
		return 0, domain.ValidationError("adjustment kind %s is reserved for order processing", kind)
	}
	if reason == "" {
		return 0, domain.ValidationError("adjustment reason is required")
	}

	after, err := s.ledger.Adjust(ctx, productID, kind, delta, reason, actor.ID)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			s.metrics.RecordInsufficientStock()
		}
		return 0, err
	}

	s.metrics.RecordStockAdjustment(string(kind))
	s.logger.WithFields(log.Fields{
		"product_id":  productID,
		"kind":        kind,
		"delta":       delta,
		"stock_after": after,
		"actor_id":    actor.ID,
	}).Info("stock adjusted")

	return after, nil
}

// ReceiveBatchInput — параметры приёмки одной партии.
type ReceiveBatchInput struct {
	ProductID string
	Quantity  int64
	// UnitCost опциональна: партия без закупочной цены допустима,
	// в расчёте базовой цены она не участвует.
	UnitCost  decimal.NullDecimal
	ExpiresAt *time.Time
}

// ReceiveBatch фиксирует поступление партии: создаёт неизменяемую запись
// партии и проводит приход остатка через журнал. Возвращает созданную партию.
func (s *Service) ReceiveBatch(ctx context.Context, input ReceiveBatchInput, actor domain.Actor) (domain.Batch, error) {
	if !actor.IsAdmin() {
		return domain.Batch{}, domain.ValidationError("goods receipt requires admin role")
	}
	if input.Quantity <= 0 {
		return domain.Batch{}, domain.ValidationError("batch quantity must be positive, got %d", input.Quantity)
	}
	if input.UnitCost.Valid && input.UnitCost.Decimal.IsNegative() {
		return domain.Batch{}, domain.ValidationError("batch unit cost must not be negative")
	}

	if _, err := s.products.Get(ctx, input.ProductID); err != nil {
		return domain.Batch{}, err
	}

	batch := domain.Batch{
		ID:         uuid.NewString(),
		ProductID:  input.ProductID,
		Quantity:   input.Quantity,
		UnitCost:   input.UnitCost,
		ExpiresAt:  input.ExpiresAt,
		ReceivedAt: time.Now().UTC(),
	}
	if err := s.batches.Create(ctx, batch); err != nil {
		return domain.Batch{}, fmt.Errorf("create batch: %w", err)
	}

	after, err := s.ledger.Adjust(ctx, input.ProductID, domain.AdjustmentCorrection, input.Quantity, goodsReceiptReason, actor.ID)
	if err != nil {
		return domain.Batch{}, fmt.Errorf("apply goods receipt: %w", err)
	}

	s.metrics.RecordStockAdjustment(string(domain.AdjustmentCorrection))
	s.logger.WithFields(log.Fields{
		"product_id":  input.ProductID,
		"batch_id":    batch.ID,
		"quantity":    input.Quantity,
		"stock_after": after,
		"actor_id":    actor.ID,
	}).Info("batch received")

	return batch, nil
}

// History возвращает журнал движений по товару.
func (s *Service) History(ctx context.Context, productID string) ([]domain.StockAdjustment, error) {
	if _, err := s.products.Get(ctx, productID); err != nil {
		return nil, err
	}
	return s.ledger.History(ctx, productID)
}

// LowStockReport возвращает товары с остатком не выше минимума и обновляет
// gauge для алёртов.
func (s *Service) LowStockReport(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.LowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("low stock report: %w", err)
	}
	s.metrics.SetLowStockProducts(len(products))
	return products, nil
}
