package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vladislavdragonenkov/fdp/internal/domain"
)

type receivingRepository struct {
	db *sql.DB
}

// NewReceivingRepository создаёт PostgreSQL-реализацию ReceivingRepository.
// Таблицу наполняет внешний конвейер загрузки документов приёмки,
// движок её только читает.
func NewReceivingRepository(store *Store) domain.ReceivingRepository {
	return &receivingRepository{db: store.DB()}
}

func (r *receivingRepository) ListByProductName(ctx context.Context, name string) ([]domain.ReceivingRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_name, quantity, unit_cost, received_at
		FROM receiving_records
		WHERE product_name = $1
		ORDER BY received_at ASC, id ASC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("select receiving records: %w", err)
	}
	defer rows.Close()

	records := make([]domain.ReceivingRecord, 0)
	for rows.Next() {
		var record domain.ReceivingRecord
		if err := rows.Scan(&record.ID, &record.ProductName, &record.Quantity, &record.UnitCost, &record.ReceivedAt); err != nil {
			return nil, fmt.Errorf("scan receiving record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate receiving records: %w", err)
	}

	return records, nil
}

var _ domain.ReceivingRepository = (*receivingRepository)(nil)
