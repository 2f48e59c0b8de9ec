package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/fdp/internal/domain"
)

// ProductStore — in-memory хранилище товаров и их складского журнала.
// Остаток и журнал живут под одним мьютексом, поэтому последовательность
// "прочитать-посчитать-записать-дописать аудит" атомарна по товару,
// как и в PostgreSQL-реализации.
type ProductStore struct {
	mu       sync.Mutex
	products map[string]domain.Product
	journal  map[string][]domain.StockAdjustment
}

// NewProductStore возвращает in-memory хранилище для локальной разработки и тестов.
func NewProductStore() *ProductStore {
	return &ProductStore{
		products: make(map[string]domain.Product),
		journal:  make(map[string][]domain.StockAdjustment),
	}
}

// Create сохраняет новый товар, если ID ещё не занят.
func (s *ProductStore) Create(_ context.Context, product domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[product.ID]; exists {
		return domain.ValidationError("product %s already exists", product.ID)
	}
	s.products[product.ID] = product
	return nil
}

// Get возвращает товар или ErrProductNotFound.
func (s *ProductStore) Get(_ context.Context, id string) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

// GetMany возвращает найденные товары; отсутствующих в карте просто нет.
func (s *ProductStore) GetMany(_ context.Context, ids []string) (map[string]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make(map[string]domain.Product, len(ids))
	for _, id := range ids {
		if product, ok := s.products[id]; ok {
			result[id] = product
		}
	}
	return result, nil
}

// List возвращает все товары, отсортированные по имени.
func (s *ProductStore) List(_ context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]domain.Product, 0, len(s.products))
	for _, product := range s.products {
		result = append(result, product)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// LowStock возвращает товары с остатком не выше их минимума.
func (s *ProductStore) LowStock(_ context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]domain.Product, 0)
	for _, product := range s.products {
		if product.StockOnHand <= product.StockMinimum {
			result = append(result, product)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

var _ domain.ProductRepository = (*ProductStore)(nil)
