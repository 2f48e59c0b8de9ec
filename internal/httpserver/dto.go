package httpserver

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/fdp/internal/domain"
	"github.com/vladislavdragonenkov/fdp/internal/service/backorder"
	"github.com/vladislavdragonenkov/fdp/internal/service/order"
)

type orderLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type createOrderRequest struct {
	CustomerID string             `json:"customer_id"`
	Lines      []orderLineRequest `json:"lines"`
}

func (r createOrderRequest) toInput() order.CreateInput {
	lines := make([]backorder.Line, 0, len(r.Lines))
	for _, line := range r.Lines {
		lines = append(lines, backorder.Line{ProductID: line.ProductID, Requested: line.Quantity})
	}
	return order.CreateInput{CustomerID: r.CustomerID, Lines: lines}
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

type setStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

type setPaymentRequest struct {
	PaymentStatus string `json:"payment_status"`
}

type stockAdjustmentRequest struct {
	ProductID string `json:"product_id"`
	Kind      string `json:"kind"`
	Delta     int64  `json:"delta"`
	Reason    string `json:"reason"`
}

type goodsReceiptRequest struct {
	ProductID string              `json:"product_id"`
	Quantity  int64               `json:"quantity"`
	UnitCost  decimal.NullDecimal `json:"unit_cost"`
	ExpiresAt *time.Time          `json:"expires_at"`
}

type orderItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type backorderItemResponse struct {
	ProductID string `json:"product_id"`
	Requested int64  `json:"requested"`
	Available int64  `json:"available"`
	Pending   int64  `json:"pending"`
}

type orderResponse struct {
	ID            string                  `json:"id"`
	Number        string                  `json:"number"`
	CustomerID    string                  `json:"customer_id"`
	Status        string                  `json:"status"`
	PaymentStatus string                  `json:"payment_status"`
	TotalAmount   decimal.Decimal         `json:"total_amount"`
	HasBackorder  bool                    `json:"has_backorder"`
	CancelledAt   *time.Time              `json:"cancelled_at,omitempty"`
	CancelReason  string                  `json:"cancel_reason,omitempty"`
	Items         []orderItemResponse     `json:"items"`
	Backorders    []backorderItemResponse `json:"backorders,omitempty"`
	Version       int64                   `json:"version"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

func mapOrder(o domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		})
	}
	var backorders []backorderItemResponse
	for _, bo := range o.Backorders {
		backorders = append(backorders, backorderItemResponse{
			ProductID: bo.ProductID,
			Requested: bo.Requested,
			Available: bo.Available,
			Pending:   bo.Pending,
		})
	}
	return orderResponse{
		ID:            o.ID,
		Number:        o.Number,
		CustomerID:    o.CustomerID,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		TotalAmount:   o.TotalAmount,
		HasBackorder:  o.HasBackorder,
		CancelledAt:   o.CancelledAt,
		CancelReason:  o.CancelReason,
		Items:         items,
		Backorders:    backorders,
		Version:       o.Version,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func mapOrders(orders []domain.Order) []orderResponse {
	result := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		result = append(result, mapOrder(o))
	}
	return result
}

type previewLineResponse struct {
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Requested    int64           `json:"requested"`
	AvailableNow int64           `json:"available_now"`
	Backordered  int64           `json:"backordered"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineTotal    decimal.Decimal `json:"line_total"`
}

type previewResponse struct {
	Lines        []previewLineResponse `json:"lines"`
	HasBackorder bool                  `json:"has_backorder"`
	TotalAmount  decimal.Decimal       `json:"total_amount"`
}

func mapPreview(p order.Preview) previewResponse {
	lines := make([]previewLineResponse, 0, len(p.Lines))
	for _, line := range p.Lines {
		lines = append(lines, previewLineResponse{
			ProductID:    line.ProductID,
			ProductName:  line.ProductName,
			Requested:    line.Requested,
			AvailableNow: line.AvailableNow,
			Backordered:  line.Backordered,
			UnitPrice:    line.UnitPrice,
			LineTotal:    line.LineTotal,
		})
	}
	return previewResponse{Lines: lines, HasBackorder: p.HasBackorder, TotalAmount: p.TotalAmount}
}

type transitionResponse struct {
	OrderID   string `json:"order_id"`
	Requested string `json:"requested"`
	Actual    string `json:"actual"`
	Diverged  bool   `json:"diverged"`
	Reason    string `json:"reason,omitempty"`
}

func mapTransition(r order.TransitionResult) transitionResponse {
	return transitionResponse{
		OrderID:   r.OrderID,
		Requested: string(r.Requested),
		Actual:    string(r.Actual),
		Diverged:  r.Diverged,
		Reason:    r.Reason,
	}
}

type timelineEventResponse struct {
	Type     string    `json:"type"`
	Reason   string    `json:"reason,omitempty"`
	Actor    string    `json:"actor"`
	Occurred time.Time `json:"occurred"`
}

func mapTimeline(events []domain.TimelineEvent) []timelineEventResponse {
	result := make([]timelineEventResponse, 0, len(events))
	for _, event := range events {
		result = append(result, timelineEventResponse{
			Type:     event.Type,
			Reason:   event.Reason,
			Actor:    event.Actor,
			Occurred: event.Occurred,
		})
	}
	return result
}

type priceQuoteResponse struct {
	ProductID       string          `json:"product_id"`
	BaseCost        decimal.Decimal `json:"base_cost"`
	MarginPercent   decimal.Decimal `json:"margin_percent"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	FinalPrice      decimal.Decimal `json:"final_price"`
}

func mapQuote(q domain.PriceQuote) priceQuoteResponse {
	return priceQuoteResponse{
		ProductID:       q.ProductID,
		BaseCost:        q.BaseCost,
		MarginPercent:   q.MarginPercent,
		DiscountPercent: q.DiscountPercent,
		FinalPrice:      q.FinalPrice,
	}
}

type productResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Unit         string `json:"unit"`
	Category     string `json:"category,omitempty"`
	Supplier     string `json:"supplier,omitempty"`
	StockOnHand  int64  `json:"stock_on_hand"`
	StockMinimum int64  `json:"stock_minimum"`
}

func mapProducts(products []domain.Product) []productResponse {
	result := make([]productResponse, 0, len(products))
	for _, p := range products {
		result = append(result, productResponse{
			ID:           p.ID,
			Name:         p.Name,
			Unit:         p.Unit,
			Category:     p.Category,
			Supplier:     p.Supplier,
			StockOnHand:  p.StockOnHand,
			StockMinimum: p.StockMinimum,
		})
	}
	return result
}

type adjustmentResponse struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"product_id"`
	Kind           string    `json:"kind"`
	Delta          int64     `json:"delta"`
	QuantityBefore int64     `json:"quantity_before"`
	Reason         string    `json:"reason"`
	Actor          string    `json:"actor"`
	CreatedAt      time.Time `json:"created_at"`
}

func mapAdjustments(entries []domain.StockAdjustment) []adjustmentResponse {
	result := make([]adjustmentResponse, 0, len(entries))
	for _, entry := range entries {
		result = append(result, adjustmentResponse{
			ID:             entry.ID,
			ProductID:      entry.ProductID,
			Kind:           string(entry.Kind),
			Delta:          entry.Delta,
			QuantityBefore: entry.QuantityBefore,
			Reason:         entry.Reason,
			Actor:          entry.Actor,
			CreatedAt:      entry.CreatedAt,
		})
	}
	return result
}

type batchResponse struct {
	ID         string              `json:"id"`
	ProductID  string              `json:"product_id"`
	Quantity   int64               `json:"quantity"`
	UnitCost   decimal.NullDecimal `json:"unit_cost"`
	ExpiresAt  *time.Time          `json:"expires_at,omitempty"`
	ReceivedAt time.Time           `json:"received_at"`
}

func mapBatch(b domain.Batch) batchResponse {
	return batchResponse{
		ID:         b.ID,
		ProductID:  b.ProductID,
		Quantity:   b.Quantity,
		UnitCost:   b.UnitCost,
		ExpiresAt:  b.ExpiresAt,
		ReceivedAt: b.ReceivedAt,
	}
}
