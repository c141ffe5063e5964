package domain

// NotificationKind distinguishes the messages sent to customers.
type NotificationKind string

const (
	NotificationOrderPlaced   NotificationKind = "order_placed"
	NotificationStatusChanged NotificationKind = "order_status_changed"
)

// Notification is a best-effort message about an order addressed to its owner.
// Email may be left empty by the producer; the delivery side then looks the
// owner up by UserID.
type Notification struct {
	Kind           NotificationKind `json:"kind"`
	UserID         string           `json:"userId"`
	Email          string           `json:"email"`
	OrderID        string           `json:"orderId"`
	TrackingNumber string           `json:"trackingNumber"`
	Status         OrderStatus      `json:"status"`
	TotalAmount    float64          `json:"totalAmount"`
}
