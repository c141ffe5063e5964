// Package notify holds the channels a notification can be delivered over:
// the application log, SMTP email and a RabbitMQ queue.
package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/99minutos/order-tracking/internal/core/domain"
)

var (
	confirmationTmpl = template.Must(template.New("confirmation").Parse(`<h2>Order Confirmation</h2>
<p>Thank you for your order!</p>
<p><strong>Order ID:</strong> {{.OrderID}}</p>
<p><strong>Tracking Number:</strong> {{.TrackingNumber}}</p>
<p><strong>Total Amount:</strong> ${{printf "%.2f" .TotalAmount}}</p>
<p>We'll keep you updated on your order status.</p>
`))

	statusTmpl = template.Must(template.New("status").Parse(`<h2>Order Status Update</h2>
<p>Your order status has been updated.</p>
<p><strong>Order ID:</strong> {{.OrderID}}</p>
<p><strong>Status:</strong> {{.Status}}</p>
{{if .TrackingNumber}}<p><strong>Tracking:</strong> {{.TrackingNumber}}</p>
{{end}}`))
)

// Subject returns the email subject line for n.
func Subject(n domain.Notification) string {
	if n.Kind == domain.NotificationOrderPlaced {
		return fmt.Sprintf("Order Confirmation - #%s", n.OrderID)
	}
	return fmt.Sprintf("Order #%s - %s", n.OrderID, n.Status)
}

// HTMLBody renders the email body for n.
func HTMLBody(n domain.Notification) (string, error) {
	tmpl := statusTmpl
	if n.Kind == domain.NotificationOrderPlaced {
		tmpl = confirmationTmpl
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, n); err != nil {
		return "", fmt.Errorf("render %s: %w", n.Kind, err)
	}
	return buf.String(), nil
}

// PlainBody renders the text/plain part sent alongside the HTML body.
func PlainBody(n domain.Notification) string {
	var b strings.Builder
	if n.Kind == domain.NotificationOrderPlaced {
		b.WriteString("Thank you for your order!\n\n")
		fmt.Fprintf(&b, "Order ID: %s\n", n.OrderID)
		fmt.Fprintf(&b, "Tracking Number: %s\n", n.TrackingNumber)
		fmt.Fprintf(&b, "Total Amount: $%.2f\n\n", n.TotalAmount)
		b.WriteString("We'll keep you updated on your order status.\n")
		return b.String()
	}
	b.WriteString("Your order status has been updated.\n\n")
	fmt.Fprintf(&b, "Order ID: %s\n", n.OrderID)
	fmt.Fprintf(&b, "Status: %s\n", n.Status)
	if n.TrackingNumber != "" {
		fmt.Fprintf(&b, "Tracking: %s\n", n.TrackingNumber)
	}
	return b.String()
}
