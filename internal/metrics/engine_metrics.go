package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics содержит метрики движка выполнения заказов.
type EngineMetrics struct {
	// Счётчики заказов
	ordersCreated   prometheus.Counter
	ordersCancelled prometheus.Counter
	ordersRejected  prometheus.Counter

	// Переходы статусов
	statusTransitions     *prometheus.CounterVec
	transitionDivergences prometheus.Counter

	// Склад
	stockAdjustments   *prometheus.CounterVec
	insufficientStock  prometheus.Counter
	backorderedLines   prometheus.Counter
	lowStockProducts   prometheus.Gauge
	restorationFailures prometheus.Counter

	// Уведомления и ценообразование
	notifications    *prometheus.CounterVec
	costDataFallback prometheus.Counter

	// Гистограммы времени выполнения
	operationDuration *prometheus.HistogramVec
}

// NewEngineMetrics создаёт новый экземпляр метрик движка.
func NewEngineMetrics() *EngineMetrics {
	return newEngineMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newEngineMetricsWithRegisterer(registerer prometheus.Registerer) *EngineMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &EngineMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fdp_orders_created_total",
			Help: "Total number of orders created",
		}),
		ordersCancelled: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fdp_orders_cancelled_total",
			Help: "Total number of orders cancelled",
		}),
		ordersRejected: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fdp_orders_rejected_total",
			Help: "Total number of order creation attempts rejected",
		}),
		statusTransitions: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "fdp_order_status_transitions_total",
			Help: "Total number of order status transitions",
		}, []string{"from", "to"}),
		transitionDivergences: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fdp_order_transition_divergences_total",
			Help: "Total number of transitions where actual status diverged from requested",
		}),
		stockAdjustments: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "fdp_stock_adjustments_total",
			Help: "Total number of stock adjustments by kind",
		}, []string{"kind"}),
		insufficientStock: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fdp_insufficient_stock_total",
			Help: "Total number of adjustments rejected due to insufficient stock",
		}),
		backorderedLines: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fdp_backordered_lines_total",
			Help: "Total number of order lines split into backorders",
		}),
		lowStockProducts: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "fdp_low_stock_products",
			Help: "Number of products at or below their stock minimum",
		}),
		restorationFailures: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fdp_stock_restoration_failures_total",
			Help: "Total number of failed stock restorations during cancellation",
		}),
		notifications: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "fdp_notifications_total",
			Help: "Total number of notification attempts by result",
		}, []string{"result"}),
		costDataFallback: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fdp_cost_data_fallback_total",
			Help: "Total number of price resolutions that fell back to reference cost",
		}),
		operationDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "fdp_operation_duration_seconds",
			Help:    "Duration of engine operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"operation"}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderCreated увеличивает счётчик созданных заказов.
func (m *EngineMetrics) RecordOrderCreated() {
	m.ordersCreated.Inc()
}

// RecordOrderCancelled увеличивает счётчик отменённых заказов.
func (m *EngineMetrics) RecordOrderCancelled() {
	m.ordersCancelled.Inc()
}

// RecordOrderRejected увеличивает счётчик отклонённых попыток создания.
func (m *EngineMetrics) RecordOrderRejected() {
	m.ordersRejected.Inc()
}

// RecordStatusTransition записывает успешный переход статуса.
func (m *EngineMetrics) RecordStatusTransition(from, to string) {
	m.statusTransitions.WithLabelValues(from, to).Inc()
}

// RecordTransitionDivergence увеличивает счётчик расхождений переходов.
func (m *EngineMetrics) RecordTransitionDivergence() {
	m.transitionDivergences.Inc()
}

// RecordStockAdjustment записывает складскую корректировку по виду.
func (m *EngineMetrics) RecordStockAdjustment(kind string) {
	m.stockAdjustments.WithLabelValues(kind).Inc()
}

// RecordInsufficientStock увеличивает счётчик отказов по остатку.
func (m *EngineMetrics) RecordInsufficientStock() {
	m.insufficientStock.Inc()
}

// RecordBackorderedLine увеличивает счётчик разделённых позиций.
func (m *EngineMetrics) RecordBackorderedLine() {
	m.backorderedLines.Inc()
}

// SetLowStockProducts выставляет число товаров с низким остатком.
func (m *EngineMetrics) SetLowStockProducts(n int) {
	m.lowStockProducts.Set(float64(n))
}

// RecordRestorationFailure увеличивает счётчик неудачных восстановлений.
func (m *EngineMetrics) RecordRestorationFailure() {
	m.restorationFailures.Inc()
}

// RecordNotification записывает результат отправки уведомления.
func (m *EngineMetrics) RecordNotification(result string) {
	m.notifications.WithLabelValues(result).Inc()
}

// RecordCostDataFallback увеличивает счётчик fallback'ов на справочную цену.
func (m *EngineMetrics) RecordCostDataFallback() {
	m.costDataFallback.Inc()
}

// RecordOperationDuration записывает время выполнения операции движка.
func (m *EngineMetrics) RecordOperationDuration(operation string, duration time.Duration) {
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
