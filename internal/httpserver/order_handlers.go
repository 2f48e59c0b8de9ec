package httpserver

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const defaultOrderListLimit = 50

func (s *Server) createOrder(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, codeBadRequest, "invalid request body")
	}

	actor := actorFromCtx(c)
	if req.CustomerID == "" {
		req.CustomerID = actor.ID
	}

	created, err := s.orders.Create(c.UserContext(), actor, req.toInput())
	if err != nil {
		return respondDomainError(c, err)
	}
	return respondCreated(c, mapOrder(created))
}

func (s *Server) getOrder(c *fiber.Ctx) error {
	found, err := s.orders.Get(c.UserContext(), actorFromCtx(c), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return respondOK(c, mapOrder(found))
}

func (s *Server) listOrders(c *fiber.Ctx) error {
	actor := actorFromCtx(c)

	customerID := c.Query("customer_id")
	if customerID == "" {
		customerID = actor.ID
	}

	limit := defaultOrderListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return respondError(c, fiber.StatusBadRequest, codeBadRequest, "limit must be a positive integer")
		}
		limit = parsed
	}

	orders, err := s.orders.ListByCustomer(c.UserContext(), actor, customerID, limit)
	if err != nil {
		return respondDomainError(c, err)
	}
	return respondOK(c, mapOrders(orders))
}

func (s *Server) cancelOrder(c *fiber.Ctx) error {
	var req cancelOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, codeBadRequest, "invalid request body")
	}

	cancelled, err := s.orders.CancelByCustomer(c.UserContext(), actorFromCtx(c), c.Params("id"), req.Reason)
	if err != nil {
		return respondDomainError(c, err)
	}
	return respondOK(c, mapOrder(cancelled))
}

func (s *Server) orderTimeline(c *fiber.Ctx) error {
	events, err := s.orders.Timeline(c.UserContext(), actorFromCtx(c), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return respondOK(c, mapTimeline(events))
}

func (s *Server) previewCart(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, codeBadRequest, "invalid request body")
	}

	actor := actorFromCtx(c)
	if req.CustomerID == "" {
		req.CustomerID = actor.ID
	}

	preview, err := s.orders.PreviewCart(c.UserContext(), actor, req.toInput())
	if err != nil {
		return respondDomainError(c, err)
	}
	return respondOK(c, mapPreview(preview))
}

// priceQuote отдаёт справочный расчёт цены. Клиент всегда получает расчёт
// со своей скидкой; произвольный customer_id доступен только администратору.
func (s *Server) priceQuote(c *fiber.Ctx) error {
	actor := actorFromCtx(c)

	customerID := c.Query("customer_id")
	if !actor.IsAdmin() {
		customerID = actor.ID
	}

	quote, err := s.prices.Resolve(c.UserContext(), c.Params("id"), customerID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return respondOK(c, mapQuote(quote))
}
