package ports

import (
	"context"

	"github.com/99minutos/order-tracking/internal/core/domain"
)

// Notifier accepts notifications for asynchronous delivery. Notify never
// blocks and never reports delivery failures to the caller.
type Notifier interface {
	Notify(n domain.Notification)
}

// NotificationSender delivers a single notification over some channel
// (email, message broker, log).
type NotificationSender interface {
	Send(ctx context.Context, n domain.Notification) error
}
