package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/fdp/internal/domain"
)

// batchRepositoryInMemory хранит партии по товару.
type batchRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string][]domain.Batch
}

// NewBatchRepository возвращает in-memory репозиторий партий.
func NewBatchRepository() domain.BatchRepository {
	return &batchRepositoryInMemory{
		items: make(map[string][]domain.Batch),
	}
}

func (r *batchRepositoryInMemory) Create(_ context.Context, batch domain.Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[batch.ProductID] = append(r.items[batch.ProductID], batch)
	return nil
}

func (r *batchRepositoryInMemory) ListByProduct(_ context.Context, productID string) ([]domain.Batch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	batches := r.items[productID]
	result := make([]domain.Batch, len(batches))
	copy(result, batches)
	sort.Slice(result, func(i, j int) bool { return result[i].ReceivedAt.Before(result[j].ReceivedAt) })
	return result, nil
}

var _ domain.BatchRepository = (*batchRepositoryInMemory)(nil)
