package domain

import "time"

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	StatusPlaced    OrderStatus = "PLACED"
	StatusAccepted  OrderStatus = "ACCEPTED"
	StatusPickedUp  OrderStatus = "PICKED_UP"
	StatusOnTheWay  OrderStatus = "ON_THE_WAY"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// OrderStatuses lists every valid status in lifecycle order.
var OrderStatuses = []OrderStatus{
	StatusPlaced,
	StatusAccepted,
	StatusPickedUp,
	StatusOnTheWay,
	StatusDelivered,
	StatusCancelled,
}

// ParseOrderStatus reports whether s names one of the known statuses.
//
// Any status may follow any other: there is no transition graph.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	for _, st := range OrderStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// InitialStatusNote is recorded on the PLACED history entry of every new order.
const InitialStatusNote = "Order placed"

// OrderItem is a line of an order. Items are fixed once the order exists.
type OrderItem struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// Subtotal returns price × quantity.
func (i OrderItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// OrderStatusEvent records a single status transition on an order.
type OrderStatusEvent struct {
	Status    OrderStatus `json:"status"`
	Notes     string      `json:"notes,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Order is the aggregate root: the order plus its items and status history.
// StatusHistory is kept newest first.
type Order struct {
	ID              string             `json:"id"`
	UserID          string             `json:"userId"`
	Status          OrderStatus        `json:"status"`
	TotalAmount     float64            `json:"totalAmount"`
	ShippingAddress string             `json:"shippingAddress"`
	TrackingNumber  string             `json:"trackingNumber"`
	Notes           string             `json:"notes,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
	Items           []OrderItem        `json:"items"`
	StatusHistory   []OrderStatusEvent `json:"statusHistory"`
}

// TotalOf sums the subtotals of items.
func TotalOf(items []OrderItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Subtotal()
	}
	return total
}
