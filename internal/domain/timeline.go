package domain

import "time"

// TimelineEvent описывает событие в жизненном цикле заказа,
// включая расхождения статуса, обнаруженные контрольным перечитыванием.
type TimelineEvent struct {
	OrderID  string
	Type     string
	Reason   string
	Actor    string
	Occurred time.Time
}
