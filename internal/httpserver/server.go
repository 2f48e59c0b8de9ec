package httpserver

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fdp/internal/domain"
	"github.com/vladislavdragonenkov/fdp/internal/health"
	"github.com/vladislavdragonenkov/fdp/internal/service/order"
	"github.com/vladislavdragonenkov/fdp/internal/service/pricing"
	"github.com/vladislavdragonenkov/fdp/internal/service/stock"
)

// Ключ для аутентифицированного участника в Locals запроса.
const actorKey = "actor"

// Server — HTTP-фасад движка: клиентские операции с заказами и корзиной,
// административные операции со статусами и складом, health и метрики.
type Server struct {
	app    *fiber.App
	auth   domain.AuthService
	orders *order.Service
	stock  *stock.Service
	prices *pricing.Resolver
	logger *log.Entry
}

// NewServer собирает fiber-приложение с полным набором маршрутов.
// healthHandler опционален: без него /health/ready отвечает как liveness.
func NewServer(
	authService domain.AuthService,
	orders *order.Service,
	stockService *stock.Service,
	prices *pricing.Resolver,
	healthHandler *health.Handler,
	logger *log.Entry,
) *Server {
	if logger == nil {
		logger = log.New().WithField("component", "http")
	}

	s := &Server{
		auth:   authService,
		orders: orders,
		stock:  stockService,
		prices: prices,
		logger: logger,
	}

	app := fiber.New(fiber.Config{
		AppName:               "fdp-fulfillment",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleFiberError,
	})
	app.Use(recover.New())

	app.Get("/health/live", adaptor.HTTPHandlerFunc(health.LivenessHandler))
	if healthHandler != nil {
		app.Get("/health", adaptor.HTTPHandler(healthHandler))
		app.Get("/health/ready", adaptor.HTTPHandlerFunc(healthHandler.ReadinessHandler))
	} else {
		app.Get("/health/ready", adaptor.HTTPHandlerFunc(health.LivenessHandler))
	}
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api", s.authenticate)
	api.Post("/orders", s.createOrder)
	api.Get("/orders", s.listOrders)
	api.Get("/orders/:id", s.getOrder)
	api.Post("/orders/:id/cancel", s.cancelOrder)
	api.Get("/orders/:id/timeline", s.orderTimeline)
	api.Post("/cart/preview", s.previewCart)
	api.Get("/products/:id/price", s.priceQuote)

	admin := api.Group("/admin", s.requireAdmin)
	admin.Put("/orders/:id/status", s.setOrderStatus)
	admin.Put("/orders/:id/payment", s.setPaymentStatus)
	admin.Post("/stock/adjustments", s.adjustStock)
	admin.Post("/stock/receipts", s.receiveBatch)
	admin.Get("/stock/low", s.lowStockReport)
	admin.Get("/stock/:id/history", s.stockHistory)

	s.app = app
	return s
}

// Listen запускает сервер; блокируется до Shutdown или ошибки.
func (s *Server) Listen(addr string) error {
	s.logger.WithField("addr", addr).Info("http server listening")
	return s.app.Listen(addr)
}

// Shutdown мягко останавливает сервер, дожидаясь активных запросов.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// authenticate превращает bearer-токен в участника и кладёт его в Locals.
func (s *Server) authenticate(c *fiber.Ctx) error {
	token := strings.TrimSpace(strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer"))

	actor, err := s.auth.Verify(c.UserContext(), token)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, codeUnauthorized, "authentication required")
	}

	c.Locals(actorKey, actor)
	return c.Next()
}

// requireAdmin пропускает дальше только администраторов.
func (s *Server) requireAdmin(c *fiber.Ctx) error {
	if !actorFromCtx(c).IsAdmin() {
		return respondError(c, fiber.StatusForbidden, codeForbidden, "admin role required")
	}
	return c.Next()
}

func actorFromCtx(c *fiber.Ctx) domain.Actor {
	actor, _ := c.Locals(actorKey).(domain.Actor)
	return actor
}

func (s *Server) handleFiberError(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		if fiberErr.Code == fiber.StatusNotFound {
			return respondError(c, fiber.StatusNotFound, codeNotFound, "route not found")
		}
		return respondError(c, fiberErr.Code, codeBadRequest, fiberErr.Message)
	}

	s.logger.WithError(err).WithFields(log.Fields{
		"method": c.Method(),
		"path":   c.Path(),
	}).Error("unhandled http error")
	return respondError(c, fiber.StatusInternalServerError, codeInternal, "internal error")
}
