package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vladislavdragonenkov/fdp/internal/domain"
)

type batchRepository struct {
	db *sql.DB
}

// NewBatchRepository создаёт PostgreSQL-реализацию BatchRepository.
func NewBatchRepository(store *Store) domain.BatchRepository {
	return &batchRepository{db: store.DB()}
}

func (r *batchRepository) Create(ctx context.Context, batch domain.Batch) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO batches (id, product_id, quantity, unit_cost, expires_at, received_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`,
		batch.ID, batch.ProductID, batch.Quantity, batch.UnitCost, batch.ExpiresAt, batch.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

func (r *batchRepository) ListByProduct(ctx context.Context, productID string) ([]domain.Batch, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, quantity, unit_cost, expires_at, received_at
		FROM batches
		WHERE product_id = $1
		ORDER BY received_at ASC, id ASC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("select batches: %w", err)
	}
	defer rows.Close()

	batches := make([]domain.Batch, 0)
	for rows.Next() {
		var (
			batch     domain.Batch
			expiresAt sql.NullTime
		)
		if err := rows.Scan(&batch.ID, &batch.ProductID, &batch.Quantity, &batch.UnitCost, &expiresAt, &batch.ReceivedAt); err != nil {
			return nil, fmt.Errorf("scan batch row: %w", err)
		}
		if expiresAt.Valid {
			t := expiresAt.Time
			batch.ExpiresAt = &t
		}
		batches = append(batches, batch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batch rows: %w", err)
	}

	return batches, nil
}

var _ domain.BatchRepository = (*batchRepository)(nil)
