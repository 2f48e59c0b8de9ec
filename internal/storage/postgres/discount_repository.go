package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vladislavdragonenkov/fdp/internal/domain"
)

type discountRepository struct {
	db *sql.DB
}

// NewDiscountRepository создаёт PostgreSQL-реализацию DiscountRepository.
func NewDiscountRepository(store *Store) domain.DiscountRepository {
	return &discountRepository{db: store.DB()}
}

func (r *discountRepository) Create(ctx context.Context, discount domain.CustomerDiscount) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO customer_discounts (
			id, customer_id, product_id, category, percent, active, valid_from, valid_until, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		discount.ID, discount.CustomerID, discount.ProductID, discount.Category,
		discount.Percent, discount.Active, discount.ValidFrom, discount.ValidUntil, discount.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert discount: %w", err)
	}
	return nil
}

func (r *discountRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.CustomerDiscount, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, customer_id, product_id, category, percent, active, valid_from, valid_until, created_at
		FROM customer_discounts
		WHERE customer_id = $1
		ORDER BY created_at ASC, id ASC
	`, customerID)
	if err != nil {
		return nil, fmt.Errorf("select discounts: %w", err)
	}
	defer rows.Close()

	discounts := make([]domain.CustomerDiscount, 0)
	for rows.Next() {
		var (
			discount   domain.CustomerDiscount
			validFrom  sql.NullTime
			validUntil sql.NullTime
		)
		if err := rows.Scan(
			&discount.ID, &discount.CustomerID, &discount.ProductID, &discount.Category,
			&discount.Percent, &discount.Active, &validFrom, &validUntil, &discount.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan discount row: %w", err)
		}
		if validFrom.Valid {
			t := validFrom.Time
			discount.ValidFrom = &t
		}
		if validUntil.Valid {
			t := validUntil.Time
			discount.ValidUntil = &t
		}
		discounts = append(discounts, discount)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate discount rows: %w", err)
	}

	return discounts, nil
}

var _ domain.DiscountRepository = (*discountRepository)(nil)
