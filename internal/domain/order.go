package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, резерв выполнен, ждёт подтверждения.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusConfirmed — заказ подтверждён администратором.
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusPrepared — заказ собран и готов к доставке.
	OrderStatusPrepared OrderStatus = "prepared"
	// OrderStatusDelivered — заказ доставлен; терминальный статус.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled — заказ отменён; терминальный статус.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PaymentStatus — ортогональный двухпозиционный флаг оплаты.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// Valid сообщает, известен ли статус заказа.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPrepared,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal сообщает, является ли статус конечным.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransition проверяет допустимость перехода: цепочка
// pending → confirmed → prepared → delivered без пропусков,
// отмена возможна из любого нетерминального статуса.
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return false
	}
	if to == OrderStatusCancelled {
		return !from.Terminal()
	}
	switch from {
	case OrderStatusPending:
		return to == OrderStatusConfirmed
	case OrderStatusConfirmed:
		return to == OrderStatusPrepared
	case OrderStatusPrepared:
		return to == OrderStatusDelivered
	}
	return false
}

// OrderItem — позиция заказа. Quantity равно зарезервированному количеству
// (available_now после разбиения на бэкордеры); цена за единицу фиксируется
// в момент создания заказа и больше никогда не пересчитывается.
type OrderItem struct {
	ID          string
	ProductID   string
	ProductName string
	Quantity    int64
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
	CreatedAt   time.Time
}

// BackorderItem фиксирует отложенную часть позиции на момент оформления.
type BackorderItem struct {
	ID        string
	OrderID   string
	ProductID string
	Requested int64
	Available int64
	Pending   int64
	CreatedAt time.Time
}

// Order агрегирует состояние заказа, его позиции и бэкордеры.
type Order struct {
	ID            string
	Number        string
	CustomerID    string
	Status        OrderStatus
	PaymentStatus PaymentStatus
	TotalAmount   decimal.Decimal
	HasBackorder  bool
	CancelledAt   *time.Time
	CancelReason  string
	Items         []OrderItem
	Backorders    []BackorderItem
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}

	// Сверяем сумму заказа с суммой позиций: qty * unit_price.
	calc := decimal.Zero
	for _, item := range o.Items {
		if item.Quantity < 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.UnitPrice.IsNegative() {
			errs = append(errs, ErrItemPriceInvalid)
		}
		calc = calc.Add(item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity)))
	}
	if !calc.Equal(o.TotalAmount) {
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}
