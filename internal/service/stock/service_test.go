package stock

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/fdp/internal/domain"
	"github.com/vladislavdragonenkov/fdp/internal/storage/memory"
)

var (
	adminActor    = domain.Actor{ID: "admin-1", Name: "Admin", Role: domain.ActorRoleAdmin}
	customerActor = domain.Actor{ID: "cust-1", Name: "Customer", Role: domain.ActorRoleCustomer}
)

func newService(t *testing.T) (*Service, *memory.ProductStore, domain.BatchRepository) {
	t.Helper()

	products := memory.NewProductStore()
	batches := memory.NewBatchRepository()
	svc := NewService(products, batches, products, nil, nil)
	return svc, products, batches
}

func seed(t *testing.T, products *memory.ProductStore, id string, stock, minimum int64) {
	t.Helper()
	err := products.Create(context.Background(), domain.Product{
		ID:           id,
		Name:         "Product " + id,
		StockOnHand:  stock,
		StockMinimum: minimum,
	})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
}

func TestService_Adjust(t *testing.T) {
	ctx := context.Background()
	svc, products, _ := newService(t)
	seed(t, products, "p1", 10, 0)

	after, err := svc.Adjust(ctx, "p1", domain.AdjustmentShrinkage, 3, "damaged in storage", adminActor)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if after != 7 {
		t.Fatalf("expected stock 7, got %d", after)
	}

	history, err := svc.History(ctx, "p1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].Kind != domain.AdjustmentShrinkage {
		t.Fatalf("unexpected history: %+v", history)
	}
}

func TestService_AdjustGuards(t *testing.T) {
	ctx := context.Background()
	svc, products, _ := newService(t)
	seed(t, products, "p1", 10, 0)

	cases := []struct {
		name   string
		kind   domain.AdjustmentKind
		reason string
		actor  domain.Actor
	}{
		{"non-admin", domain.AdjustmentShrinkage, "reason", customerActor},
		{"reservation kind", domain.AdjustmentOrderReservation, "reason", adminActor},
		{"restoration kind", domain.AdjustmentOrderRestoration, "reason", adminActor},
		{"empty reason", domain.AdjustmentShrinkage, "", adminActor},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Adjust(ctx, "p1", tc.kind, 1, tc.reason, tc.actor); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	product, _ := products.Get(ctx, "p1")
	if product.StockOnHand != 10 {
		t.Fatalf("rejected adjustments must not touch stock, got %d", product.StockOnHand)
	}
}

func TestService_AdjustInsufficient(t *testing.T) {
	ctx := context.Background()
	svc, products, _ := newService(t)
	seed(t, products, "p1", 2, 0)

	if _, err := svc.Adjust(ctx, "p1", domain.AdjustmentShrinkage, 5, "spoiled", adminActor); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
}

func TestService_ReceiveBatch(t *testing.T) {
	ctx := context.Background()
	svc, products, batches := newService(t)
	seed(t, products, "p1", 5, 0)

	batch, err := svc.ReceiveBatch(ctx, ReceiveBatchInput{
		ProductID: "p1",
		Quantity:  20,
		UnitCost:  decimal.NewNullDecimal(decimal.RequireFromString("2.50")),
	}, adminActor)
	if err != nil {
		t.Fatalf("receive batch: %v", err)
	}
	if batch.ID == "" {
		t.Fatal("batch must get an id")
	}

	product, _ := products.Get(ctx, "p1")
	if product.StockOnHand != 25 {
		t.Fatalf("expected stock 25 after receipt, got %d", product.StockOnHand)
	}

	stored, err := batches.ListByProduct(ctx, "p1")
	if err != nil {
		t.Fatalf("list batches: %v", err)
	}
	if len(stored) != 1 || !stored[0].UnitCost.Decimal.Equal(decimal.RequireFromString("2.50")) {
		t.Fatalf("unexpected stored batches: %+v", stored)
	}

	history, _ := svc.History(ctx, "p1")
	if len(history) != 1 || history[0].Kind != domain.AdjustmentCorrection || history[0].Reason != goodsReceiptReason {
		t.Fatalf("receipt must land in the ledger, got %+v", history)
	}
}

func TestService_ReceiveBatchWithoutCost(t *testing.T) {
	ctx := context.Background()
	svc, products, _ := newService(t)
	seed(t, products, "p1", 0, 0)

	batch, err := svc.ReceiveBatch(ctx, ReceiveBatchInput{ProductID: "p1", Quantity: 7}, adminActor)
	if err != nil {
		t.Fatalf("receive batch: %v", err)
	}
	if batch.UnitCost.Valid {
		t.Fatal("unit cost must stay unknown")
	}
}

func TestService_ReceiveBatchGuards(t *testing.T) {
	ctx := context.Background()
	svc, products, _ := newService(t)
	seed(t, products, "p1", 0, 0)

	if _, err := svc.ReceiveBatch(ctx, ReceiveBatchInput{ProductID: "p1", Quantity: 5}, customerActor); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for non-admin, got %v", err)
	}
	if _, err := svc.ReceiveBatch(ctx, ReceiveBatchInput{ProductID: "p1", Quantity: 0}, adminActor); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for zero quantity, got %v", err)
	}
	if _, err := svc.ReceiveBatch(ctx, ReceiveBatchInput{ProductID: "ghost", Quantity: 5}, adminActor); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestService_LowStockReport(t *testing.T) {
	ctx := context.Background()
	svc, products, _ := newService(t)
	seed(t, products, "low", 1, 5)
	seed(t, products, "ok", 100, 5)

	low, err := svc.LowStockReport(ctx)
	if err != nil {
		t.Fatalf("low stock report: %v", err)
	}
	if len(low) != 1 || low[0].ID != "low" {
		t.Fatalf("unexpected report: %+v", low)
	}
}
