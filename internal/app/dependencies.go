package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fdp/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/fdp/internal/health"
	"github.com/vladislavdragonenkov/fdp/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/fdp/internal/metrics"
	"github.com/vladislavdragonenkov/fdp/internal/service/auth"
	"github.com/vladislavdragonenkov/fdp/internal/service/order"
	"github.com/vladislavdragonenkov/fdp/internal/service/pricing"
	"github.com/vladislavdragonenkov/fdp/internal/service/stock"
	"github.com/vladislavdragonenkov/fdp/internal/storage/memory"
	"github.com/vladislavdragonenkov/fdp/internal/storage/postgres"
	"github.com/vladislavdragonenkov/fdp/internal/version"
)

// Dependencies содержит собранный граф зависимостей приложения.
type Dependencies struct {
	Orders  *order.Service
	Stock   *stock.Service
	Pricing *pricing.Resolver
	Auth    *auth.StaticService
	Health  *healthcheck.Handler
	Logger  *log.Entry

	store    *postgres.Store
	producer *kafka.Producer
}

// NewDependencies создаёт все зависимости приложения. PostgreSQL и Kafka
// опциональны: без DSN включается in-memory режим, без брокеров уведомления
// пропускаются.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	deps := &Dependencies{Logger: logger}

	var (
		products  domain.ProductRepository
		batches   domain.BatchRepository
		receiving domain.ReceivingRepository
		discounts domain.DiscountRepository
		customers domain.CustomerRepository
		orders    domain.OrderRepository
		timeline  domain.TimelineRepository
		ledger    domain.StockLedger
	)

	if cfg.PostgresDSN != "" {
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		deps.store = store

		products = postgres.NewProductRepository(store)
		batches = postgres.NewBatchRepository(store)
		receiving = postgres.NewReceivingRepository(store)
		discounts = postgres.NewDiscountRepository(store)
		customers = postgres.NewCustomerRepository(store)
		orders = postgres.NewOrderRepository(store)
		timeline = postgres.NewTimelineRepository(store)
		ledger = postgres.NewStockLedger(store)

		logger.Info("storage: postgres")
	} else {
		productStore := memory.NewProductStore()
		products = productStore
		ledger = productStore
		batches = memory.NewBatchRepository()
		receiving = memory.NewReceivingStore()
		discounts = memory.NewDiscountRepository()
		customers = memory.NewCustomerRepository()
		orders = memory.NewOrderRepository()
		timeline = memory.NewTimelineRepository()

		logger.Warn("storage: in-memory, данные не переживут рестарт")
	}

	var notifier domain.NotificationService
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.WithError(err).Warn("failed to create kafka producer, continuing without notifications")
		} else {
			deps.producer = producer
			notifier = kafka.NewNotifier(producer, logger.WithField("layer", "kafka"))
			logger.WithField("brokers", cfg.KafkaBrokers).Info("kafka producer initialized")
		}
	}

	engineMetrics := metrics.NewEngineMetrics()

	deps.Pricing = pricing.NewResolver(
		products,
		batches,
		receiving,
		discounts,
		customers,
		pricing.Config{MarginPercent: cfg.MarginPercent},
		logger.WithField("component", "pricing"),
	)
	deps.Orders = order.NewService(
		orders,
		products,
		customers,
		ledger,
		timeline,
		deps.Pricing,
		notifier,
		engineMetrics,
		logger.WithField("component", "order"),
	)
	deps.Stock = stock.NewService(
		products,
		batches,
		ledger,
		engineMetrics,
		logger.WithField("component", "stock"),
	)

	// Статический auth — заглушка для разработки; продакшен подключает
	// внешний сервис через тот же контракт domain.AuthService.
	deps.Auth = auth.NewStaticService()
	if cfg.AdminToken != "" {
		deps.Auth.Register(cfg.AdminToken, domain.Actor{
			ID:   "admin",
			Name: "Administrator",
			Role: domain.ActorRoleAdmin,
		})
	}

	deps.Health = healthcheck.NewHandler(version.GetVersion(), version.GetCommit(), version.GetDate())
	if deps.store != nil {
		store := deps.store
		deps.Health.RegisterChecker("postgres", healthcheck.NewSimpleChecker("postgres", func() error {
			return store.Ping(context.Background())
		}))
	}

	return deps, nil
}

// Close освобождает внешние подключения; порядок обратный созданию.
func (d *Dependencies) Close() {
	if d == nil {
		return
	}
	if d.producer != nil {
		if err := d.producer.Close(); err != nil {
			d.Logger.WithError(err).Warn("failed to close kafka producer")
		}
	}
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			d.Logger.WithError(err).Warn("failed to close postgres store")
		}
	}
}
