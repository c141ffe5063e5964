package ports

import (
	"context"
	"time"

	"github.com/99minutos/order-tracking/internal/core/domain"
)

// StatusChange is a single transition applied by OrderRepository.UpdateStatus.
type StatusChange struct {
	Status domain.OrderStatus
	Notes  string
	At     time.Time
}

// OrderRepository defines persistence operations for the order aggregate.
// Returned orders carry items and status history, newest history first.
type OrderRepository interface {
	// Create stores the order with its items and history in one transaction.
	// A tracking number collision yields domain.ErrTrackingNumberTaken and an
	// unknown owner yields domain.ErrUserNotFound.
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	List(ctx context.Context, page Page) ([]domain.Order, int64, error)
	// UpdateStatus locks the order row, sets the new status and appends one
	// history entry, all in one transaction.
	UpdateStatus(ctx context.Context, id string, change StatusChange) (*domain.Order, error)
	// Delete removes the order, its items and its history.
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error)
}

// OrderEventLog is the append-only audit trail of order status changes.
type OrderEventLog interface {
	InsertEvent(ctx context.Context, event *domain.OrderEvent) error
}
