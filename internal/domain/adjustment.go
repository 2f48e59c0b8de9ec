package domain

import "time"

// AdjustmentKind — тип движения остатка в складском журнале.
type AdjustmentKind string

const (
	// AdjustmentShrinkage — потери/усушка, всегда уменьшает остаток.
	AdjustmentShrinkage AdjustmentKind = "shrinkage"
	// AdjustmentCorrection — ручная корректировка со знаковой дельтой.
	AdjustmentCorrection AdjustmentKind = "correction"
	// AdjustmentReturn — возврат от клиента, всегда увеличивает остаток.
	AdjustmentReturn AdjustmentKind = "return"
	// AdjustmentInventoryCount — инвентаризация; дельта = "новое минус старое".
	AdjustmentInventoryCount AdjustmentKind = "inventory-count"
	// AdjustmentOrderReservation — резерв под заказ, уменьшает остаток.
	AdjustmentOrderReservation AdjustmentKind = "order-reservation"
	// AdjustmentOrderRestoration — возврат резерва при отмене заказа.
	AdjustmentOrderRestoration AdjustmentKind = "order-restoration"
)

// Valid сообщает, известен ли тип движения.
func (k AdjustmentKind) Valid() bool {
	switch k {
	case AdjustmentShrinkage, AdjustmentCorrection, AdjustmentReturn,
		AdjustmentInventoryCount, AdjustmentOrderReservation, AdjustmentOrderRestoration:
		return true
	}
	return false
}

// NormalizeDelta приводит дельту к знаку, предписанному типом движения:
// shrinkage и order-reservation всегда списывают, return и order-restoration
// всегда добавляют, correction и inventory-count применяются как есть.
func NormalizeDelta(kind AdjustmentKind, delta int64) (int64, error) {
	if !kind.Valid() {
		return 0, ValidationError("unknown adjustment kind %q", kind)
	}
	if delta == 0 {
		return 0, ValidationError("adjustment delta must be non-zero")
	}

	abs := delta
	if abs < 0 {
		abs = -abs
	}

	switch kind {
	case AdjustmentShrinkage, AdjustmentOrderReservation:
		return -abs, nil
	case AdjustmentReturn, AdjustmentOrderRestoration:
		return abs, nil
	default:
		return delta, nil
	}
}

// StockAdjustment — запись append-only журнала движений остатка.
// Никогда не обновляется и не удаляется; проигрывание всех записей по товару
// в порядке времени обязано воспроизводить его текущий StockOnHand.
type StockAdjustment struct {
	ID        string
	ProductID string
	Kind      AdjustmentKind
	// Delta — знаковое изменение остатка.
	Delta int64
	// QuantityBefore — снимок остатка до применения дельты.
	QuantityBefore int64
	Reason         string
	Actor          string
	CreatedAt      time.Time
}
