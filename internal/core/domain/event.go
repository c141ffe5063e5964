package domain

import "time"

// OrderEvent is the audit record written for every status an order enters,
// including the initial PLACED.
type OrderEvent struct {
	OrderID        string
	TrackingNumber string
	UserID         string
	Status         OrderStatus
	Notes          string
	OccurredAt     time.Time
}
