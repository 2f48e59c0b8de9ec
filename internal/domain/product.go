package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product описывает товар каталога. Поле StockOnHand меняется только
// через складской журнал (StockLedger), описательные поля — через админку.
type Product struct {
	ID       string
	Name     string
	Unit     string
	Category string
	Supplier string
	// StockOnHand — авторитетный текущий остаток; инвариант: >= 0.
	StockOnHand  int64
	StockMinimum int64
	StockMaximum int64
	// ReferenceCost — базовая справочная стоимость, используется как
	// последний fallback при отсутствии закупочных данных.
	ReferenceCost decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Batch — партия (лот) поступившего товара со своей закупочной ценой и сроком
// годности. После создания неизменна, не удаляется, только исчерпывается.
type Batch struct {
	ID        string
	ProductID string
	Quantity  int64
	// UnitCost может отсутствовать: часть партий приходит без закупочной цены.
	UnitCost   decimal.NullDecimal
	ExpiresAt  *time.Time
	ReceivedAt time.Time
}

// ReceivingRecord — историческая запись о приёмке, сопоставляется с товаром
// по наименованию. Наполняется внешним конвейером загрузки документов.
type ReceivingRecord struct {
	ID          string
	ProductName string
	Quantity    int64
	UnitCost    decimal.Decimal
	ReceivedAt  time.Time
}
