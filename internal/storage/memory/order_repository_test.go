package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/fdp/internal/domain"
)

func makeOrder(id, customerID string) domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID:            id,
		Number:        "SO-" + id,
		CustomerID:    customerID,
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		TotalAmount:   decimal.RequireFromString("10.00"),
		Items: []domain.OrderItem{{
			ID:          "item-" + id,
			ProductID:   "p1",
			ProductName: "Product p1",
			Quantity:    2,
			UnitPrice:   decimal.RequireFromString("5.00"),
			LineTotal:   decimal.RequireFromString("10.00"),
			CreatedAt:   now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestOrderRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()

	if err := repo.Create(ctx, makeOrder("o1", "c1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, makeOrder("o1", "c1")); !errors.Is(err, domain.ErrOrderVersionConflict) {
		t.Fatalf("expected conflict on duplicate create, got %v", err)
	}

	order, err := repo.Get(ctx, "o1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(order.Items) != 1 || order.Items[0].ProductID != "p1" {
		t.Fatalf("unexpected items: %+v", order.Items)
	}

	if _, err := repo.Get(ctx, "ghost"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepository_SaveVersionConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()

	if err := repo.Create(ctx, makeOrder("o1", "c1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	order, _ := repo.Get(ctx, "o1")
	order.Status = domain.OrderStatusConfirmed
	if err := repo.Save(ctx, order); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Сохранение с устаревшей версией отклоняется.
	stale := order
	stale.Status = domain.OrderStatusCancelled
	if err := repo.Save(ctx, stale); !errors.Is(err, domain.ErrOrderVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}

	fresh, _ := repo.Get(ctx, "o1")
	if fresh.Status != domain.OrderStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", fresh.Status)
	}
	if fresh.Version != order.Version+1 {
		t.Fatalf("expected version bump, got %d", fresh.Version)
	}
}

func TestOrderRepository_ListByCustomer(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()

	for _, id := range []string{"o1", "o2", "o3"} {
		if err := repo.Create(ctx, makeOrder(id, "c1")); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	if err := repo.Create(ctx, makeOrder("other", "c2")); err != nil {
		t.Fatalf("create other: %v", err)
	}

	orders, err := repo.ListByCustomer(ctx, "c1", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders with limit, got %d", len(orders))
	}
	for _, order := range orders {
		if order.CustomerID != "c1" {
			t.Fatalf("foreign order in listing: %+v", order)
		}
	}
}
