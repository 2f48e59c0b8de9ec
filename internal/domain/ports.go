package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// ProductRepository описывает требования к хранилищу товаров.
// Остаток (StockOnHand) через этот интерфейс не меняется — им владеет StockLedger.
type ProductRepository interface {
	Create(ctx context.Context, product Product) error
	// Get возвращает товар по идентификатору или ErrProductNotFound.
	Get(ctx context.Context, id string) (Product, error)
	// GetMany возвращает товары по списку идентификаторов; отсутствующие
	// идентификаторы в карте просто не представлены.
	GetMany(ctx context.Context, ids []string) (map[string]Product, error)
	List(ctx context.Context) ([]Product, error)
	// LowStock возвращает товары с остатком не выше их StockMinimum.
	LowStock(ctx context.Context) ([]Product, error)
}

// BatchRepository хранит партии поступившего товара.
type BatchRepository interface {
	Create(ctx context.Context, batch Batch) error
	ListByProduct(ctx context.Context, productID string) ([]Batch, error)
}

// ReceivingRepository отдаёт исторические записи приёмки по наименованию товара.
type ReceivingRepository interface {
	ListByProductName(ctx context.Context, name string) ([]ReceivingRecord, error)
}

// DiscountRepository хранит персональные скидки клиентов.
type DiscountRepository interface {
	Create(ctx context.Context, discount CustomerDiscount) error
	// ListByCustomer возвращает все правила клиента; фильтрация по
	// активности и окну действия — забота вызывающего.
	ListByCustomer(ctx context.Context, customerID string) ([]CustomerDiscount, error)
}

// CustomerRepository хранит минимальные профили клиентов.
type CustomerRepository interface {
	Create(ctx context.Context, customer Customer) error
	// Get возвращает клиента или ErrCustomerNotFound.
	Get(ctx context.Context, id string) (Customer, error)
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create атомарно сохраняет заказ вместе с позициями и бэкордерами.
	Create(ctx context.Context, order Order) error
	// Get возвращает заказ по идентификатору или ErrOrderNotFound.
	Get(ctx context.Context, id string) (Order, error)
	ListByCustomer(ctx context.Context, customerID string, limit int) ([]Order, error)
	// Save применяет обновления статусов к заказу с учётом optimistic locking.
	Save(ctx context.Context, order Order) error
}

// StockLedger владеет остатком товара. Каждая мутация атомарно (в рамках
// одной транзакции по строке товара) читает текущий остаток, применяет
// дельту, отклоняет уход ниже нуля и дописывает запись аудита.
type StockLedger interface {
	// Adjust применяет движение и возвращает новый остаток.
	Adjust(ctx context.Context, productID string, kind AdjustmentKind, delta int64, reason, actor string) (int64, error)
	// RestoreOrder возвращает на склад ровно те количества, что записаны в
	// позициях заказа, одной атомарной операцией.
	RestoreOrder(ctx context.Context, order Order, actor string) error
	// History возвращает записи журнала по товару в порядке времени.
	History(ctx context.Context, productID string) ([]StockAdjustment, error)
}

// TimelineRepository хранит события жизненного цикла заказа.
type TimelineRepository interface {
	Append(ctx context.Context, event TimelineEvent) error
	List(ctx context.Context, orderID string) ([]TimelineEvent, error)
}

// AuthService — внешний auth-коллаборатор: превращает непрозрачный токен
// в аутентифицированного участника.
type AuthService interface {
	Verify(ctx context.Context, token string) (Actor, error)
}

// NotificationResult — исход попытки доставки уведомления; только логируется.
type NotificationResult string

const (
	NotificationSuccess NotificationResult = "success"
	NotificationSkipped NotificationResult = "skipped"
	NotificationError   NotificationResult = "error"
)

// NotificationItem — позиция заказа в уведомлении.
type NotificationItem struct {
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Notification — полезная нагрузка для внешнего коллаборатора уведомлений.
type Notification struct {
	OrderID       string             `json:"order_id"`
	OrderNumber   string             `json:"order_number"`
	CustomerName  string             `json:"customer_name"`
	CustomerEmail string             `json:"customer_email,omitempty"`
	Status        string             `json:"status"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	Items         []NotificationItem `json:"items"`
}

// NotificationService выполняет best-effort доставку уведомлений.
// Ошибка сопровождает NotificationError и никогда не прерывает переход заказа.
type NotificationService interface {
	NotifyCustomer(ctx context.Context, n Notification) (NotificationResult, error)
	NotifyOperations(ctx context.Context, n Notification) (NotificationResult, error)
}
