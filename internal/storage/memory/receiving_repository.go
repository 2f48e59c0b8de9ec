package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/fdp/internal/domain"
)

// ReceivingStore хранит исторические записи приёмки по наименованию товара.
type ReceivingStore struct {
	mu    sync.RWMutex
	items map[string][]domain.ReceivingRecord
}

// NewReceivingStore возвращает in-memory репозиторий записей приёмки.
func NewReceivingStore() *ReceivingStore {
	return &ReceivingStore{
		items: make(map[string][]domain.ReceivingRecord),
	}
}

// Add добавляет запись; используется сидированием и тестами.
func (r *ReceivingStore) Add(record domain.ReceivingRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[record.ProductName] = append(r.items[record.ProductName], record)
}

func (r *ReceivingStore) ListByProductName(_ context.Context, name string) ([]domain.ReceivingRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := r.items[name]
	result := make([]domain.ReceivingRecord, len(records))
	copy(result, records)
	return result, nil
}

var _ domain.ReceivingRepository = (*ReceivingStore)(nil)
