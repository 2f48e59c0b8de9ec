package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/vladislavdragonenkov/fdp/internal/domain"
)

func TestStockLedger_PostgresAdjust(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	seedProductForIntegrationTest(t, store, "p1", 10)

	ledger := NewStockLedger(store)
	ctx := context.Background()

	after, err := ledger.Adjust(ctx, "p1", domain.AdjustmentShrinkage, 3, "damaged", "admin-1")
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if after != 7 {
		t.Fatalf("expected 7, got %d", after)
	}

	// Списание ниже нуля отклоняется, журнал не растёт.
	if _, err := ledger.Adjust(ctx, "p1", domain.AdjustmentOrderReservation, 8, "reserve", "svc"); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	history, err := ledger.History(ctx, "p1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected single journal entry, got %d", len(history))
	}
	entry := history[0]
	if entry.Kind != domain.AdjustmentShrinkage || entry.Delta != -3 || entry.QuantityBefore != 10 {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	if _, err := ledger.Adjust(ctx, "ghost", domain.AdjustmentReturn, 1, "return", "svc"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestStockLedger_PostgresConcurrentReservations(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	seedProductForIntegrationTest(t, store, "p1", 3)

	ledger := NewStockLedger(store)
	ctx := context.Background()

	// Два конкурентных резерва последних трёх единиц: FOR UPDATE сериализует
	// транзакции, выигрывает ровно одна.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ledger.Adjust(ctx, "p1", domain.AdjustmentOrderReservation, 3, "reserve", "svc")
		}(i)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || insufficient != 1 {
		t.Fatalf("expected exactly one winner, got ok=%d insufficient=%d", ok, insufficient)
	}
}

func TestStockLedger_PostgresRestoreOrder(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	seedCustomerForIntegrationTest(t, store, "c1")
	seedProductForIntegrationTest(t, store, "p1", 10)

	ctx := context.Background()
	ledger := NewStockLedger(store)
	orders := NewOrderRepository(store)

	order := buildIntegrationOrder("c1")
	if err := orders.Create(ctx, order); err != nil {
		t.Fatalf("create order: %v", err)
	}

	if _, err := ledger.Adjust(ctx, "p1", domain.AdjustmentOrderReservation, 7, "reserve", "svc"); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	if err := ledger.RestoreOrder(ctx, order, "admin-1"); err != nil {
		t.Fatalf("restore order: %v", err)
	}

	products := NewProductRepository(store)
	product, err := products.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.StockOnHand != 10 {
		t.Fatalf("expected stock back to 10, got %d", product.StockOnHand)
	}

	history, _ := ledger.History(ctx, "p1")
	last := history[len(history)-1]
	if last.Kind != domain.AdjustmentOrderRestoration || last.Delta != 7 {
		t.Fatalf("unexpected restoration entry: %+v", last)
	}
}
