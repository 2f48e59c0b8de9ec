package integration

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/vladislavdragonenkov/fdp/internal/domain"
	"github.com/vladislavdragonenkov/fdp/internal/service/backorder"
	"github.com/vladislavdragonenkov/fdp/internal/service/order"
	"github.com/vladislavdragonenkov/fdp/internal/service/pricing"
	"github.com/vladislavdragonenkov/fdp/internal/service/stock"
	"github.com/vladislavdragonenkov/fdp/internal/storage/memory"
)

var (
	adminActor = domain.Actor{ID: "admin-1", Name: "Admin", Role: domain.ActorRoleAdmin}
	buyerActor = domain.Actor{ID: "c1", Name: "Buyer", Role: domain.ActorRoleCustomer}
)

// OrderLifecycleTestSuite проверяет полный жизненный цикл заказа поверх
// собранного графа сервисов с in-memory хранилищем.
type OrderLifecycleTestSuite struct {
	suite.Suite
	orders   *order.Service
	stock    *stock.Service
	products *memory.ProductStore
	timeline domain.TimelineRepository
}

func (s *OrderLifecycleTestSuite) SetupTest() {
	baseLogger := log.New()
	baseLogger.SetLevel(log.WarnLevel) // Уменьшаем шум в тестах
	logger := baseLogger.WithField("component", "integration-test")

	s.products = memory.NewProductStore()
	s.timeline = memory.NewTimelineRepository()
	batches := memory.NewBatchRepository()
	customers := memory.NewCustomerRepository()
	orderRepo := memory.NewOrderRepository()

	resolver := pricing.NewResolver(
		s.products,
		batches,
		memory.NewReceivingStore(),
		memory.NewDiscountRepository(),
		customers,
		pricing.DefaultConfig(),
		logger,
	)
	s.orders = order.NewService(orderRepo, s.products, customers, s.products, s.timeline, resolver, nil, nil, logger)
	s.stock = stock.NewService(s.products, batches, s.products, nil, logger)

	ctx := context.Background()
	require.NoError(s.T(), customers.Create(ctx, domain.Customer{
		ID: "c1", Name: "Buyer", Email: "buyer@example.com", Approved: true,
	}))
	require.NoError(s.T(), s.products.Create(ctx, domain.Product{
		ID:            "p1",
		Name:          "Olive Oil",
		Unit:          "l",
		StockOnHand:   20,
		StockMinimum:  5,
		ReferenceCost: decimal.RequireFromString("8.00"),
	}))
	require.NoError(s.T(), batches.Create(ctx, domain.Batch{
		ID:        "b1",
		ProductID: "p1",
		Quantity:  20,
		UnitCost:  decimal.NewNullDecimal(decimal.RequireFromString("8.00")),
	}))
}

func (s *OrderLifecycleTestSuite) TestSuccessfulOrderLifecycle() {
	ctx := context.Background()

	created, err := s.orders.Create(ctx, buyerActor, order.CreateInput{
		CustomerID: "c1",
		Lines:      []backorder.Line{{ProductID: "p1", Requested: 5}},
	})
	require.NoError(s.T(), err)
	require.Equal(s.T(), domain.OrderStatusPending, created.Status)
	require.False(s.T(), created.HasBackorder)
	// 5 литров по 8.00 * 1.25 = 10.00.
	require.True(s.T(), created.TotalAmount.Equal(decimal.RequireFromString("50")),
		"unexpected total %s", created.TotalAmount)

	s.requireStock(15)

	for _, target := range []domain.OrderStatus{
		domain.OrderStatusConfirmed,
		domain.OrderStatusPrepared,
		domain.OrderStatusDelivered,
	} {
		result, err := s.orders.SetStatus(ctx, adminActor, created.ID, target, "")
		require.NoError(s.T(), err)
		require.Equal(s.T(), target, result.Actual)
		require.False(s.T(), result.Diverged)
	}

	// Доставленный заказ не отменяется, остаток списан навсегда.
	_, err = s.orders.SetStatus(ctx, adminActor, created.ID, domain.OrderStatusCancelled, "too late")
	require.ErrorIs(s.T(), err, domain.ErrInvalidTransition)
	s.requireStock(15)

	events, err := s.orders.Timeline(ctx, buyerActor, created.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), events, 4)
	require.Equal(s.T(), "OrderCreated", events[0].Type)
}

func (s *OrderLifecycleTestSuite) TestBackorderAndCancellation() {
	ctx := context.Background()

	created, err := s.orders.Create(ctx, buyerActor, order.CreateInput{
		CustomerID: "c1",
		Lines:      []backorder.Line{{ProductID: "p1", Requested: 26}},
	})
	require.NoError(s.T(), err)
	require.True(s.T(), created.HasBackorder)
	require.Len(s.T(), created.Backorders, 1)
	require.Equal(s.T(), int64(6), created.Backorders[0].Pending)
	s.requireStock(0)

	cancelled, err := s.orders.CancelByCustomer(ctx, buyerActor, created.ID, "changed plans")
	require.NoError(s.T(), err)
	require.Equal(s.T(), domain.OrderStatusCancelled, cancelled.Status)
	require.NotNil(s.T(), cancelled.CancelledAt)

	// Возврат строго того, что было зарезервировано, не запрошенных 26.
	s.requireStock(20)

	history, err := s.stock.History(ctx, "p1")
	require.NoError(s.T(), err)
	last := history[len(history)-1]
	require.Equal(s.T(), domain.AdjustmentOrderRestoration, last.Kind)
	require.Equal(s.T(), int64(20), last.Delta)
}

func (s *OrderLifecycleTestSuite) TestGoodsReceiptExtendsAvailability() {
	ctx := context.Background()

	_, err := s.stock.ReceiveBatch(ctx, stock.ReceiveBatchInput{
		ProductID: "p1",
		Quantity:  10,
		UnitCost:  decimal.NewNullDecimal(decimal.RequireFromString("9.00")),
	}, adminActor)
	require.NoError(s.T(), err)
	s.requireStock(30)

	created, err := s.orders.Create(ctx, buyerActor, order.CreateInput{
		CustomerID: "c1",
		Lines:      []backorder.Line{{ProductID: "p1", Requested: 25}},
	})
	require.NoError(s.T(), err)
	require.False(s.T(), created.HasBackorder)

	// Средневзвешенная база: (20*8 + 10*9) / 30 = 8.3333 → 10.42 за единицу.
	require.True(s.T(), created.Items[0].UnitPrice.Equal(decimal.RequireFromString("10.42")),
		"unexpected unit price %s", created.Items[0].UnitPrice)
}

func (s *OrderLifecycleTestSuite) requireStock(expected int64) {
	s.T().Helper()
	product, err := s.products.Get(context.Background(), "p1")
	require.NoError(s.T(), err)
	require.Equal(s.T(), expected, product.StockOnHand)
}

func TestOrderLifecycleTestSuite(t *testing.T) {
	suite.Run(t, new(OrderLifecycleTestSuite))
}
