package backorder

import (
	"github.com/vladislavdragonenkov/fdp/internal/domain"
)

// Line — запрошенная позиция корзины.
type Line struct {
	ProductID string
	Requested int64
}

// SplitLine — результат разбиения одной позиции на исполнимую и отложенную части.
type SplitLine struct {
	ProductID    string
	Requested    int64
	AvailableNow int64
	Backordered  int64
}

// Plan — результат разбиения корзины целиком.
type Plan struct {
	Lines        []SplitLine
	HasBackorder bool
}

// Split разбивает запрошенные количества по текущим остаткам:
// available_now = min(requested, stock), backordered = остаток запроса.
// Резерв на складе выполняется ровно на available_now, поэтому суммарный
// резерв никогда не превышает остаток. Чистая функция: на этапе просмотра
// корзины результат справочный, в момент создания заказа — авторитетный.
func Split(lines []Line, stockByProduct map[string]int64) (Plan, error) {
	plan := Plan{Lines: make([]SplitLine, 0, len(lines))}

	for _, line := range lines {
		if line.ProductID == "" {
			return Plan{}, domain.ValidationError("cart line without product_id")
		}
		if line.Requested <= 0 {
			return Plan{}, domain.ValidationError("requested quantity for product %s must be positive", line.ProductID)
		}

		stock, ok := stockByProduct[line.ProductID]
		if !ok {
			return Plan{}, domain.ErrProductNotFound
		}
		if stock < 0 {
			stock = 0
		}

		available := line.Requested
		if stock < available {
			available = stock
		}

		split := SplitLine{
			ProductID:    line.ProductID,
			Requested:    line.Requested,
			AvailableNow: available,
			Backordered:  line.Requested - available,
		}
		if split.Backordered > 0 {
			plan.HasBackorder = true
		}
		plan.Lines = append(plan.Lines, split)
	}

	return plan, nil
}
