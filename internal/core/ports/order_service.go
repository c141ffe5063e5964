package ports

import (
	"context"

	"github.com/99minutos/order-tracking/internal/core/domain"
)

// OrderItemInput is one requested line of a new order.
type OrderItemInput struct {
	Name        string
	Description string
	Quantity    int
	Price       float64
}

// CreateOrderInput carries all data needed to place an order. The total is
// always computed from Items.
type CreateOrderInput struct {
	UserID          string
	Items           []OrderItemInput
	ShippingAddress string
	Notes           string
}

// UpdateOrderStatusInput carries a requested status transition. Status is the
// raw value received from the client.
type UpdateOrderStatusInput struct {
	OrderID string
	Status  string
	Notes   string
}

// OrderService defines use-case operations for orders.
type OrderService interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
	GetOrderByID(ctx context.Context, id string) (*domain.Order, error)
	GetUserOrders(ctx context.Context, userID string) ([]domain.Order, error)
	GetAllOrders(ctx context.Context, page Page) ([]domain.Order, int64, error)
	UpdateOrderStatus(ctx context.Context, input UpdateOrderStatusInput) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id string) error
}
