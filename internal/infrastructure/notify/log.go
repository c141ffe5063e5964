package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/99minutos/order-tracking/internal/core/domain"
)

// LogSender writes notifications to the application log instead of sending
// them anywhere. It is the default channel for local development.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, n domain.Notification) error {
	s.log.Info().
		Str("kind", string(n.Kind)).
		Str("to", n.Email).
		Str("order_id", n.OrderID).
		Str("tracking_number", n.TrackingNumber).
		Str("status", string(n.Status)).
		Str("subject", Subject(n)).
		Msg("notification")
	return nil
}
