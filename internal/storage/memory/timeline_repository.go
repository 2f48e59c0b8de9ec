package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/fdp/internal/domain"
)

// timelineRepositoryInMemory хранит события жизненного цикла заказов.
type timelineRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string][]domain.TimelineEvent
}

// NewTimelineRepository возвращает in-memory репозиторий timeline-событий.
func NewTimelineRepository() domain.TimelineRepository {
	return &timelineRepositoryInMemory{
		items: make(map[string][]domain.TimelineEvent),
	}
}

func (r *timelineRepositoryInMemory) Append(_ context.Context, event domain.TimelineEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[event.OrderID] = append(r.items[event.OrderID], event)
	return nil
}

func (r *timelineRepositoryInMemory) List(_ context.Context, orderID string) ([]domain.TimelineEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := r.items[orderID]
	result := make([]domain.TimelineEvent, len(events))
	copy(result, events)
	return result, nil
}

var _ domain.TimelineRepository = (*timelineRepositoryInMemory)(nil)
