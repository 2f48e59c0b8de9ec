package kafka

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fdp/internal/domain"
)

// Topics для уведомлений
const (
	TopicCustomerNotifications   = "fdp.notifications.customer"
	TopicOperationsNotifications = "fdp.notifications.operations"
)

// NotificationEvent — конверт уведомления, публикуемого в Kafka. Потребляет
// его внешний сервис доставки (email, мессенджеры).
type NotificationEvent struct {
	Notification domain.Notification `json:"notification"`
	PublishedAt  time.Time           `json:"published_at"`
}

// Notifier публикует уведомления в Kafka в режиме fire-and-forget: исход
// доставки не отслеживается, неудача публикации никогда не влияет на заказ.
type Notifier struct {
	producer *Producer
	logger   *log.Entry
}

// NewNotifier создает notifier поверх producer'а. Допустим nil producer:
// тогда все уведомления получают исход skipped (Kafka не сконфигурирована).
func NewNotifier(producer *Producer, logger *log.Entry) *Notifier {
	if logger == nil {
		logger = log.WithField("component", "kafka-notifier")
	}
	return &Notifier{producer: producer, logger: logger}
}

// NotifyCustomer публикует уведомление для клиента. Клиент без email —
// исход skipped, доставлять некуда.
func (n *Notifier) NotifyCustomer(_ context.Context, notification domain.Notification) (domain.NotificationResult, error) {
	if n.producer == nil {
		return domain.NotificationSkipped, nil
	}
	if notification.CustomerEmail == "" {
		n.logger.WithField("order_id", notification.OrderID).Debug("customer has no email, skipping notification")
		return domain.NotificationSkipped, nil
	}
	return n.publish(TopicCustomerNotifications, notification)
}

// NotifyOperations публикует уведомление для операторов склада.
func (n *Notifier) NotifyOperations(_ context.Context, notification domain.Notification) (domain.NotificationResult, error) {
	if n.producer == nil {
		return domain.NotificationSkipped, nil
	}
	return n.publish(TopicOperationsNotifications, notification)
}

func (n *Notifier) publish(topic string, notification domain.Notification) (domain.NotificationResult, error) {
	event := NotificationEvent{
		Notification: notification,
		PublishedAt:  time.Now().UTC(),
	}
	if err := n.producer.PublishEvent(topic, notification.OrderID, event); err != nil {
		return domain.NotificationError, err
	}
	return domain.NotificationSuccess, nil
}

var _ domain.NotificationService = (*Notifier)(nil)
