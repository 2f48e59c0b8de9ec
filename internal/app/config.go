package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

// Config описывает настройки запуска приложения.
// Все значения читаются из переменных окружения с префиксом FDP_.
type Config struct {
	// HTTPAddr — адрес основного API.
	HTTPAddr string
	// MetricsAddr — адрес служебного HTTP (метрики, health).
	MetricsAddr string
	// PostgresDSN — строка подключения; пустая включает in-memory режим.
	PostgresDSN string
	// KafkaBrokers — адреса брокеров для уведомлений; пусто — уведомления выключены.
	KafkaBrokers []string
	// MarginPercent — глобальная наценка; ноль означает значение по умолчанию.
	MarginPercent decimal.Decimal
	// AdminToken — статический токен администратора для локальной разработки.
	AdminToken string
}

// DefaultConfig возвращает базовые адреса для API и служебного HTTP.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:    ":8080",
		MetricsAddr: ":9090",
	}
}

// LoadConfig собирает конфигурацию из окружения поверх значений по умолчанию.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	if addr := strings.TrimSpace(os.Getenv("FDP_HTTP_ADDR")); addr != "" {
		cfg.HTTPAddr = addr
	}
	if addr := strings.TrimSpace(os.Getenv("FDP_METRICS_ADDR")); addr != "" {
		cfg.MetricsAddr = addr
	}
	cfg.PostgresDSN = strings.TrimSpace(os.Getenv("FDP_POSTGRES_DSN"))
	cfg.AdminToken = strings.TrimSpace(os.Getenv("FDP_ADMIN_TOKEN"))

	if brokers := strings.TrimSpace(os.Getenv("FDP_KAFKA_BROKERS")); brokers != "" {
		for _, broker := range strings.Split(brokers, ",") {
			broker = strings.TrimSpace(broker)
			if broker != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
			}
		}
	}

	if raw := strings.TrimSpace(os.Getenv("FDP_MARGIN_PERCENT")); raw != "" {
		margin, err := decimal.NewFromString(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse FDP_MARGIN_PERCENT: %w", err)
		}
		if margin.IsNegative() {
			return Config{}, fmt.Errorf("FDP_MARGIN_PERCENT must not be negative, got %s", raw)
		}
		cfg.MarginPercent = margin
	}

	return cfg, nil
}
