package httpserver

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vladislavdragonenkov/fdp/internal/domain"
	"github.com/vladislavdragonenkov/fdp/internal/service/stock"
)

func (s *Server) setOrderStatus(c *fiber.Ctx) error {
	var req setStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, codeBadRequest, "invalid request body")
	}

	result, err := s.orders.SetStatus(c.UserContext(), actorFromCtx(c), c.Params("id"),
		domain.OrderStatus(req.Status), req.Reason)
	if err != nil {
		// Расхождение со стором — честный ответ: заказ уже ушёл в другой
		// статус. Отдаём фактическое состояние вместе с конфликтом.
		if result.Diverged {
			return c.Status(fiber.StatusConflict).JSON(apiResponse{
				Success: false,
				Data:    mapTransition(result),
				Error:   &apiError{Code: codeConflict, Message: err.Error()},
			})
		}
		return respondDomainError(c, err)
	}
	return respondOK(c, mapTransition(result))
}

func (s *Server) setPaymentStatus(c *fiber.Ctx) error {
	var req setPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, codeBadRequest, "invalid request body")
	}

	updated, err := s.orders.SetPaymentStatus(c.UserContext(), actorFromCtx(c), c.Params("id"),
		domain.PaymentStatus(req.PaymentStatus))
	if err != nil {
		return respondDomainError(c, err)
	}
	return respondOK(c, mapOrder(updated))
}

func (s *Server) adjustStock(c *fiber.Ctx) error {
	var req stockAdjustmentRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, codeBadRequest, "invalid request body")
	}

	after, err := s.stock.Adjust(c.UserContext(), req.ProductID,
		domain.AdjustmentKind(req.Kind), req.Delta, req.Reason, actorFromCtx(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return respondOK(c, fiber.Map{
		"product_id":  req.ProductID,
		"stock_after": after,
	})
}

func (s *Server) receiveBatch(c *fiber.Ctx) error {
	var req goodsReceiptRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, codeBadRequest, "invalid request body")
	}

	batch, err := s.stock.ReceiveBatch(c.UserContext(), stock.ReceiveBatchInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		UnitCost:  req.UnitCost,
		ExpiresAt: req.ExpiresAt,
	}, actorFromCtx(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return respondCreated(c, mapBatch(batch))
}

func (s *Server) lowStockReport(c *fiber.Ctx) error {
	products, err := s.stock.LowStockReport(c.UserContext())
	if err != nil {
		return respondDomainError(c, err)
	}
	return respondOK(c, mapProducts(products))
}

func (s *Server) stockHistory(c *fiber.Ctx) error {
	history, err := s.stock.History(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return respondOK(c, mapAdjustments(history))
}
