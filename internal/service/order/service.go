package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fdp/internal/domain"
	"github.com/vladislavdragonenkov/fdp/internal/metrics"
	"github.com/vladislavdragonenkov/fdp/internal/service/backorder"
	"github.com/vladislavdragonenkov/fdp/internal/service/pricing"
)

// Типы событий timeline.
const (
	eventOrderCreated     = "OrderCreated"
	eventStatusChanged    = "OrderStatusChanged"
	eventOrderCancelled   = "OrderCancelled"
	eventStatusDivergence = "OrderStatusDiverged"
)

// Service — машина состояний заказа: создание с резервированием и разбиением
// на бэкордеры, переходы статусов, отмена с восстановлением склада.
type Service struct {
	orders    domain.OrderRepository
	products  domain.ProductRepository
	customers domain.CustomerRepository
	ledger    domain.StockLedger
	timeline  domain.TimelineRepository
	pricing   *pricing.Resolver
	notifier  domain.NotificationService
	metrics   *metrics.EngineMetrics
	logger    *log.Entry
	now       func() time.Time
}

// NewService создаёт сервис заказов.
func NewService(
	orders domain.OrderRepository,
	products domain.ProductRepository,
	customers domain.CustomerRepository,
	ledger domain.StockLedger,
	timeline domain.TimelineRepository,
	resolver *pricing.Resolver,
	notifier domain.NotificationService,
	engineMetrics *metrics.EngineMetrics,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "order")
	}
	if engineMetrics == nil {
		engineMetrics = metrics.NewEngineMetrics()
	}
	return &Service{
		orders:    orders,
		products:  products,
		customers: customers,
		ledger:    ledger,
		timeline:  timeline,
		pricing:   resolver,
		notifier:  notifier,
		metrics:   engineMetrics,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateInput — корзина для оформления заказа.
type CreateInput struct {
	CustomerID string
	Lines      []backorder.Line
}

// TransitionResult — фактический исход административного перехода статуса.
// Actual берётся контрольным перечитыванием после записи, поэтому может
// отличаться от Requested при конкурентных изменениях. При расхождении в
// cancelled Reason несёт причину отмены, записанную конкурентным писателем.
type TransitionResult struct {
	OrderID   string
	Requested domain.OrderStatus
	Actual    domain.OrderStatus
	Diverged  bool
	Reason    string
}

// Create оформляет заказ: проверяет допуск клиента, разбивает корзину по
// текущим остаткам, резервирует исполнимую часть, фиксирует цены и атомарно
// сохраняет заказ. При любом сбое после частичного резерва выполняется
// компенсация — возврат уже зарезервированного.
func (s *Service) Create(ctx context.Context, actor domain.Actor, input CreateInput) (domain.Order, error) {
	started := s.now()
	defer func() { s.metrics.RecordOperationDuration("create_order", time.Since(started)) }()

	if len(input.Lines) == 0 {
		s.metrics.RecordOrderRejected()
		return domain.Order{}, domain.ValidationError("order must contain at least one line")
	}
	if !actor.IsAdmin() && actor.ID != input.CustomerID {
		s.metrics.RecordOrderRejected()
		return domain.Order{}, domain.ValidationError("customers may only order for themselves")
	}

	customer, err := s.customers.Get(ctx, input.CustomerID)
	if err != nil {
		s.metrics.RecordOrderRejected()
		return domain.Order{}, err
	}
	if !customer.Approved {
		s.metrics.RecordOrderRejected()
		return domain.Order{}, domain.ValidationError("customer %s is not approved for ordering", customer.ID)
	}

	ids := make([]string, 0, len(input.Lines))
	for _, line := range input.Lines {
		ids = append(ids, line.ProductID)
	}
	products, err := s.products.GetMany(ctx, ids)
	if err != nil {
		s.metrics.RecordOrderRejected()
		return domain.Order{}, fmt.Errorf("load products: %w", err)
	}

	stock := make(map[string]int64, len(products))
	for _, line := range input.Lines {
		product, ok := products[line.ProductID]
		if !ok {
			s.metrics.RecordOrderRejected()
			return domain.Order{}, fmt.Errorf("%w: %s", domain.ErrProductNotFound, line.ProductID)
		}
		stock[product.ID] = product.StockOnHand
	}

	plan, err := backorder.Split(input.Lines, stock)
	if err != nil {
		s.metrics.RecordOrderRejected()
		return domain.Order{}, err
	}

	orderID := uuid.NewString()
	number := orderNumber(orderID)
	reserveReason := fmt.Sprintf("reservation for order %s", number)

	// Резервируем построчно; при сбое возвращаем уже списанное.
	reserved := make([]backorder.SplitLine, 0, len(plan.Lines))
	for _, line := range plan.Lines {
		if line.AvailableNow == 0 {
			continue
		}
		if _, err := s.ledger.Adjust(ctx, line.ProductID, domain.AdjustmentOrderReservation, line.AvailableNow, reserveReason, actor.ID); err != nil {
			if errors.Is(err, domain.ErrInsufficientStock) {
				s.metrics.RecordInsufficientStock()
			}
			s.compensate(ctx, number, reserved, actor.ID)
			s.metrics.RecordOrderRejected()
			return domain.Order{}, fmt.Errorf("reserve %s: %w", line.ProductID, err)
		}
		reserved = append(reserved, line)
	}

	order, err := s.buildOrder(ctx, orderID, number, customer, products, plan)
	if err != nil {
		s.compensate(ctx, number, reserved, actor.ID)
		s.metrics.RecordOrderRejected()
		return domain.Order{}, err
	}

	if err := s.orders.Create(ctx, order); err != nil {
		s.compensate(ctx, number, reserved, actor.ID)
		s.metrics.RecordOrderRejected()
		return domain.Order{}, fmt.Errorf("persist order: %w", err)
	}

	s.metrics.RecordOrderCreated()
	for _, line := range plan.Lines {
		if line.Backordered > 0 {
			s.metrics.RecordBackorderedLine()
		}
	}

	s.appendTimeline(ctx, order.ID, eventOrderCreated, "", actor.ID)
	s.notify(ctx, order, customer)

	s.logger.WithFields(log.Fields{
		"order_id":      order.ID,
		"order_number":  order.Number,
		"customer_id":   customer.ID,
		"has_backorder": order.HasBackorder,
		"total":         order.TotalAmount.String(),
	}).Info("order created")

	return order, nil
}

// buildOrder фиксирует цены и собирает агрегат заказа из плана разбиения.
func (s *Service) buildOrder(
	ctx context.Context,
	orderID, number string,
	customer domain.Customer,
	products map[string]domain.Product,
	plan backorder.Plan,
) (domain.Order, error) {
	now := s.now()
	order := domain.Order{
		ID:            orderID,
		Number:        number,
		CustomerID:    customer.ID,
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		HasBackorder:  plan.HasBackorder,
		TotalAmount:   decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	for _, line := range plan.Lines {
		product := products[line.ProductID]

		unitPrice, err := s.resolvePrice(ctx, product, customer.ID)
		if err != nil {
			return domain.Order{}, err
		}

		lineTotal := unitPrice.Mul(decimal.NewFromInt(line.AvailableNow))
		order.Items = append(order.Items, domain.OrderItem{
			ID:          uuid.NewString(),
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.AvailableNow,
			UnitPrice:   unitPrice,
			LineTotal:   lineTotal,
			CreatedAt:   now,
		})
		order.TotalAmount = order.TotalAmount.Add(lineTotal)

		if line.Backordered > 0 {
			order.Backorders = append(order.Backorders, domain.BackorderItem{
				ID:        uuid.NewString(),
				OrderID:   orderID,
				ProductID: product.ID,
				Requested: line.Requested,
				Available: line.AvailableNow,
				Pending:   line.Backordered,
				CreatedAt: now,
			})
		}
	}

	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return domain.Order{}, fmt.Errorf("order invariants violated: %v", errs)
	}
	return order, nil
}

// resolvePrice возвращает зафиксированную цену позиции. Отсутствие закупочных
// данных — не отказ: базой становится справочная стоимость товара, наценка и
// скидка из котировки применяются к ней.
func (s *Service) resolvePrice(ctx context.Context, product domain.Product, customerID string) (decimal.Decimal, error) {
	quote, err := s.pricing.Resolve(ctx, product.ID, customerID)
	if err == nil {
		return quote.FinalPrice, nil
	}
	if !errors.Is(err, domain.ErrNoCostData) {
		return decimal.Zero, fmt.Errorf("resolve price for %s: %w", product.ID, err)
	}

	s.metrics.RecordCostDataFallback()
	s.logger.WithFields(log.Fields{
		"product_id":     product.ID,
		"reference_cost": product.ReferenceCost.String(),
	}).Warn("no cost data, falling back to reference cost")

	return pricing.Apply(product.ReferenceCost, quote.MarginPercent, quote.DiscountPercent), nil
}

// compensate возвращает на склад всё, что успели зарезервировать до сбоя.
func (s *Service) compensate(ctx context.Context, number string, reserved []backorder.SplitLine, actorID string) {
	reason := fmt.Sprintf("compensation for failed order %s", number)
	for _, line := range reserved {
		if _, err := s.ledger.Adjust(ctx, line.ProductID, domain.AdjustmentOrderRestoration, line.AvailableNow, reason, actorID); err != nil {
			s.metrics.RecordRestorationFailure()
			s.logger.WithError(err).WithFields(log.Fields{
				"order_number": number,
				"product_id":   line.ProductID,
				"quantity":     line.AvailableNow,
			}).Error("compensation failed, stock requires manual correction")
		}
	}
}

// CancelByCustomer отменяет собственный заказ клиента. Разрешено только из
// pending: дальше заказ уже в работе и отменяется администратором. Сначала
// восстанавливается склад, затем пишется статус.
func (s *Service) CancelByCustomer(ctx context.Context, actor domain.Actor, orderID, reason string) (domain.Order, error) {
	started := s.now()
	defer func() { s.metrics.RecordOperationDuration("cancel_order", time.Since(started)) }()

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.CustomerID != actor.ID {
		return domain.Order{}, domain.ErrOrderNotFound
	}

	switch order.Status {
	case domain.OrderStatusCancelled:
		return domain.Order{}, domain.TransitionError("order %s is already cancelled", order.Number)
	case domain.OrderStatusDelivered:
		return domain.Order{}, domain.TransitionError("cannot cancel delivered order %s", order.Number)
	case domain.OrderStatusPending:
	default:
		return domain.Order{}, domain.TransitionError("only pending orders are customer-cancellable, order %s is %s", order.Number, order.Status)
	}

	if err := s.ledger.RestoreOrder(ctx, order, actor.ID); err != nil {
		s.metrics.RecordRestorationFailure()
		return domain.Order{}, fmt.Errorf("restore stock for order %s: %w", order.Number, err)
	}

	from := order.Status
	err = s.saveWithRetry(ctx, &order, func(o *domain.Order) error {
		if o.Status != domain.OrderStatusPending {
			return domain.TransitionError("order %s left pending during cancellation, now %s", o.Number, o.Status)
		}
		s.markCancelled(o, reason)
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.metrics.RecordOrderCancelled()
	s.metrics.RecordStatusTransition(string(from), string(domain.OrderStatusCancelled))
	s.appendTimeline(ctx, order.ID, eventOrderCancelled, reason, actor.ID)
	s.notifyStatus(ctx, order)

	s.logger.WithFields(log.Fields{
		"order_id":     order.ID,
		"order_number": order.Number,
		"reason":       reason,
	}).Info("order cancelled by customer")

	return order, nil
}

// SetStatus выполняет административный переход статуса. После записи статус
// перечитывается из хранилища: при конкурентных изменениях фактический статус
// может разойтись с запрошенным, и результат честно это отражает. Расхождение
// в cancelled дополнительно возвращается как ошибка перехода.
func (s *Service) SetStatus(ctx context.Context, actor domain.Actor, orderID string, target domain.OrderStatus, reason string) (TransitionResult, error) {
	started := s.now()
	defer func() { s.metrics.RecordOperationDuration("set_status", time.Since(started)) }()

	if !actor.IsAdmin() {
		return TransitionResult{}, domain.ValidationError("status transitions require admin role")
	}
	if !target.Valid() {
		return TransitionResult{}, domain.ValidationError("unknown order status %q", target)
	}

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return TransitionResult{}, err
	}
	if !domain.CanTransition(order.Status, target) {
		return TransitionResult{}, domain.TransitionError("%s -> %s is not allowed for order %s", order.Status, target, order.Number)
	}

	if target == domain.OrderStatusCancelled {
		if err := s.ledger.RestoreOrder(ctx, order, actor.ID); err != nil {
			s.metrics.RecordRestorationFailure()
			return TransitionResult{}, fmt.Errorf("restore stock for order %s: %w", order.Number, err)
		}
	}

	from := order.Status
	err = s.saveWithRetry(ctx, &order, func(o *domain.Order) error {
		if !domain.CanTransition(o.Status, target) {
			return domain.TransitionError("%s -> %s is not allowed for order %s", o.Status, target, o.Number)
		}
		if target == domain.OrderStatusCancelled {
			s.markCancelled(o, reason)
			return nil
		}
		o.Status = target
		o.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return TransitionResult{}, err
	}

	// Контрольное перечитывание: единственный источник правды о том, что
	// фактически оказалось в хранилище.
	fresh, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return TransitionResult{}, fmt.Errorf("re-read order %s: %w", order.Number, err)
	}

	result := TransitionResult{
		OrderID:   orderID,
		Requested: target,
		Actual:    fresh.Status,
		Diverged:  fresh.Status != target,
	}

	s.metrics.RecordStatusTransition(string(from), string(fresh.Status))
	if target == domain.OrderStatusCancelled {
		s.metrics.RecordOrderCancelled()
		s.appendTimeline(ctx, orderID, eventOrderCancelled, reason, actor.ID)
	} else {
		s.appendTimeline(ctx, orderID, eventStatusChanged, string(fresh.Status), actor.ID)
	}
	s.notifyStatus(ctx, fresh)

	if result.Diverged {
		result.Reason = fresh.CancelReason
		s.metrics.RecordTransitionDivergence()
		s.appendTimeline(ctx, orderID, eventStatusDivergence,
			fmt.Sprintf("requested %s, found %s", target, fresh.Status), actor.ID)
		s.logger.WithFields(log.Fields{
			"order_id":  orderID,
			"requested": target,
			"actual":    fresh.Status,
			"reason":    fresh.CancelReason,
		}).Warn("order status diverged after write")

		if fresh.Status == domain.OrderStatusCancelled {
			if fresh.CancelReason != "" {
				return result, domain.TransitionError("order %s was cancelled concurrently: %s", fresh.Number, fresh.CancelReason)
			}
			return result, domain.TransitionError("order %s was cancelled concurrently", fresh.Number)
		}
	}

	return result, nil
}

// SetPaymentStatus переключает флаг оплаты; жизненный цикл заказа не трогает.
func (s *Service) SetPaymentStatus(ctx context.Context, actor domain.Actor, orderID string, target domain.PaymentStatus) (domain.Order, error) {
	if !actor.IsAdmin() {
		return domain.Order{}, domain.ValidationError("payment status updates require admin role")
	}
	if target != domain.PaymentStatusPending && target != domain.PaymentStatusPaid {
		return domain.Order{}, domain.ValidationError("unknown payment status %q", target)
	}

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.PaymentStatus == target {
		return order, nil
	}

	err = s.saveWithRetry(ctx, &order, func(o *domain.Order) error {
		o.PaymentStatus = target
		o.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.appendTimeline(ctx, order.ID, eventStatusChanged, "payment "+string(target), actor.ID)
	return order, nil
}

// Get возвращает заказ; клиент видит только собственные заказы.
func (s *Service) Get(ctx context.Context, actor domain.Actor, orderID string) (domain.Order, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if !actor.IsAdmin() && order.CustomerID != actor.ID {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

// ListByCustomer возвращает заказы клиента, свежие первыми.
func (s *Service) ListByCustomer(ctx context.Context, actor domain.Actor, customerID string, limit int) ([]domain.Order, error) {
	if !actor.IsAdmin() && actor.ID != customerID {
		return nil, domain.ValidationError("customers may only list their own orders")
	}
	return s.orders.ListByCustomer(ctx, customerID, limit)
}

// Timeline возвращает события жизненного цикла заказа.
func (s *Service) Timeline(ctx context.Context, actor domain.Actor, orderID string) ([]domain.TimelineEvent, error) {
	if _, err := s.Get(ctx, actor, orderID); err != nil {
		return nil, err
	}
	return s.timeline.List(ctx, orderID)
}

// saveWithRetry применяет мутацию к заказу и сохраняет его, повторяя с
// exponential backoff при конфликте версий. После конфликта заказ
// перечитывается и мутация применяется к свежей копии.
func (s *Service) saveWithRetry(ctx context.Context, order *domain.Order, mutate func(*domain.Order) error) error {
	const maxRetries = 3
	const baseDelay = 10 * time.Millisecond

	for attempt := 0; attempt < maxRetries; attempt++ {
		candidate := *order
		if err := mutate(&candidate); err != nil {
			return err
		}

		err := s.orders.Save(ctx, candidate)
		if err == nil {
			fresh, loadErr := s.orders.Get(ctx, order.ID)
			if loadErr != nil {
				return loadErr
			}
			*order = fresh
			return nil
		}

		if !domain.IsVersionConflict(err) || attempt == maxRetries-1 {
			s.logger.WithError(err).WithFields(log.Fields{
				"order_id": order.ID,
				"attempt":  attempt + 1,
			}).Error("failed to persist order")
			return err
		}

		s.logger.WithFields(log.Fields{
			"order_id": order.ID,
			"attempt":  attempt + 1,
			"version":  order.Version,
		}).Warn("version conflict detected, retrying")

		fresh, loadErr := s.orders.Get(ctx, order.ID)
		if loadErr != nil {
			return loadErr
		}
		*order = fresh

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(baseDelay * time.Duration(1<<uint(attempt))):
		}
	}

	return domain.ErrOrderVersionConflict
}

func (s *Service) markCancelled(o *domain.Order, reason string) {
	now := s.now()
	o.Status = domain.OrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now
}

// appendTimeline пишет событие жизненного цикла; сбой только логируется.
func (s *Service) appendTimeline(ctx context.Context, orderID, eventType, reason, actorID string) {
	event := domain.TimelineEvent{
		OrderID:  orderID,
		Type:     eventType,
		Reason:   reason,
		Actor:    actorID,
		Occurred: s.now(),
	}
	if err := s.timeline.Append(ctx, event); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": orderID,
			"type":     eventType,
		}).Warn("failed to append timeline event")
	}
}

// notify отправляет best-effort уведомления клиенту и операторам.
// Любой исход только логируется и попадает в метрики.
func (s *Service) notify(ctx context.Context, order domain.Order, customer domain.Customer) {
	if s.notifier == nil {
		s.metrics.RecordNotification(string(domain.NotificationSkipped))
		return
	}
	payload := buildNotification(order, customer)

	result, err := s.notifier.NotifyCustomer(ctx, payload)
	s.metrics.RecordNotification(string(result))
	if err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("customer notification failed")
	}

	result, err = s.notifier.NotifyOperations(ctx, payload)
	s.metrics.RecordNotification(string(result))
	if err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("operations notification failed")
	}
}

// notifyStatus уведомляет о смене статуса по обоим каналам: клиенту и операторам.
func (s *Service) notifyStatus(ctx context.Context, order domain.Order) {
	if s.notifier == nil {
		s.metrics.RecordNotification(string(domain.NotificationSkipped))
		return
	}
	customer, err := s.customers.Get(ctx, order.CustomerID)
	if err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("customer lookup for notification failed")
		return
	}
	s.notify(ctx, order, customer)
}

func buildNotification(order domain.Order, customer domain.Customer) domain.Notification {
	items := make([]domain.NotificationItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, domain.NotificationItem{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return domain.Notification{
		OrderID:       order.ID,
		OrderNumber:   order.Number,
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
		Status:        string(order.Status),
		TotalAmount:   order.TotalAmount,
		Items:         items,
	}
}

// orderNumber строит человекочитаемый номер из идентификатора заказа.
func orderNumber(orderID string) string {
	compact := strings.ReplaceAll(orderID, "-", "")
	if len(compact) > 8 {
		compact = compact[:8]
	}
	return "SO-" + strings.ToUpper(compact)
}
