package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/fdp/internal/domain"
)

type stockLedger struct {
	db *sql.DB
}

// NewStockLedger создаёт PostgreSQL-реализацию складского журнала.
func NewStockLedger(store *Store) domain.StockLedger {
	return &stockLedger{db: store.DB()}
}

// Adjust выполняет движение остатка в одной транзакции: строка товара
// блокируется через SELECT ... FOR UPDATE, поэтому конкурентные движения
// по одному товару сериализуются и проверка нижней границы не гоняется.
func (l *stockLedger) Adjust(ctx context.Context, productID string, kind domain.AdjustmentKind, delta int64, reason, actor string) (int64, error) {
	normalized, err := domain.NormalizeDelta(kind, delta)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var before int64
	err = tx.QueryRowContext(ctx, `
		SELECT stock_on_hand FROM products WHERE id = $1 FOR UPDATE
	`, productID).Scan(&before)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = domain.ErrProductNotFound
			return 0, err
		}
		return 0, fmt.Errorf("lock product row: %w", err)
	}

	after := before + normalized
	if after < 0 {
		err = fmt.Errorf("%w: product %s has %d on hand, delta %d",
			domain.ErrInsufficientStock, productID, before, normalized)
		return 0, err
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE products SET stock_on_hand = $1, updated_at = NOW() WHERE id = $2
	`, after, productID); err != nil {
		return 0, fmt.Errorf("update stock: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO stock_adjustments (id, product_id, kind, delta, quantity_before, reason, actor, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		uuid.NewString(), productID, string(kind), normalized, before, reason, actor, time.Now().UTC(),
	); err != nil {
		return 0, fmt.Errorf("insert adjustment: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit adjustment: %w", err)
	}

	return after, nil
}

// RestoreOrder делегирует восстановление серверной функции: все позиции
// заказа возвращаются на склад в одной транзакции.
func (l *stockLedger) RestoreOrder(ctx context.Context, order domain.Order, actor string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := l.db.ExecContext(ctx, `SELECT restore_order_stock($1, $2)`, order.ID, actor); err != nil {
		return fmt.Errorf("restore order stock: %w", err)
	}
	return nil
}

func (l *stockLedger) History(ctx context.Context, productID string) ([]domain.StockAdjustment, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := l.db.QueryContext(ctx, `
		SELECT id, product_id, kind, delta, quantity_before, reason, actor, created_at
		FROM stock_adjustments
		WHERE product_id = $1
		ORDER BY created_at ASC, id ASC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("select adjustments: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.StockAdjustment, 0)
	for rows.Next() {
		var (
			entry domain.StockAdjustment
			kind  string
		)
		if err := rows.Scan(
			&entry.ID, &entry.ProductID, &kind, &entry.Delta,
			&entry.QuantityBefore, &entry.Reason, &entry.Actor, &entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan adjustment row: %w", err)
		}
		entry.Kind = domain.AdjustmentKind(kind)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate adjustment rows: %w", err)
	}

	return entries, nil
}

var _ domain.StockLedger = (*stockLedger)(nil)
