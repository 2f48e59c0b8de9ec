package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/fdp/internal/domain"
)

// discountRepositoryInMemory хранит скидочные правила по клиенту.
type discountRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string][]domain.CustomerDiscount
}

// NewDiscountRepository возвращает in-memory репозиторий скидок.
func NewDiscountRepository() domain.DiscountRepository {
	return &discountRepositoryInMemory{
		items: make(map[string][]domain.CustomerDiscount),
	}
}

func (r *discountRepositoryInMemory) Create(_ context.Context, discount domain.CustomerDiscount) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[discount.CustomerID] = append(r.items[discount.CustomerID], discount)
	return nil
}

func (r *discountRepositoryInMemory) ListByCustomer(_ context.Context, customerID string) ([]domain.CustomerDiscount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rules := r.items[customerID]
	result := make([]domain.CustomerDiscount, len(rules))
	copy(result, rules)
	return result, nil
}

var _ domain.DiscountRepository = (*discountRepositoryInMemory)(nil)
