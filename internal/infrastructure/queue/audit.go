package queue

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/order-tracking/internal/api/metrics"
	"github.com/99minutos/order-tracking/internal/core/domain"
	"github.com/99minutos/order-tracking/internal/core/ports"
)

// AuditWriter records order events in the background so a slow audit store
// never delays the request that produced them. A single worker writes events
// in the order they were accepted.
type AuditWriter struct {
	store   ports.OrderEventLog
	events  chan *domain.OrderEvent
	timeout time.Duration
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewAuditWriter wraps store. Only Buffer and SendTimeout of opts are used.
// Call Start before InsertEvent.
func NewAuditWriter(store ports.OrderEventLog, opts Options, log zerolog.Logger) *AuditWriter {
	if opts.Buffer <= 0 {
		opts.Buffer = defaultBuffer
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = defaultSendTimeout
	}
	return &AuditWriter{
		store:   store,
		events:  make(chan *domain.OrderEvent, opts.Buffer),
		timeout: opts.SendTimeout,
		log:     log,
	}
}

// Start launches the writer goroutine.
func (w *AuditWriter) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.run(ctx)
}

// InsertEvent queues event and returns immediately. It reports nil even when
// the event is dropped; drops and write failures show up in logs and metrics.
func (w *AuditWriter) InsertEvent(_ context.Context, event *domain.OrderEvent) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		w.drop(event, "writer stopped")
		return nil
	}
	select {
	case w.events <- event:
	default:
		w.drop(event, "queue full")
	}
	return nil
}

// Stop refuses new events and waits until queued ones are written or ctx
// expires.
func (w *AuditWriter) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.events)
	}
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *AuditWriter) run(ctx context.Context) {
	defer w.wg.Done()
	for event := range w.events {
		w.write(ctx, event)
	}
}

func (w *AuditWriter) write(ctx context.Context, event *domain.OrderEvent) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	if err := w.store.InsertEvent(ctx, event); err != nil {
		metrics.AuditEventsTotal.WithLabelValues("failed").Inc()
		w.log.Warn().Err(err).
			Str("order_id", event.OrderID).
			Str("status", string(event.Status)).
			Msg("audit event write failed")
		return
	}
	metrics.AuditEventsTotal.WithLabelValues("written").Inc()
}

func (w *AuditWriter) drop(event *domain.OrderEvent, reason string) {
	metrics.AuditEventsTotal.WithLabelValues("dropped").Inc()
	w.log.Warn().
		Str("order_id", event.OrderID).
		Str("status", string(event.Status)).
		Str("reason", reason).
		Msg("audit event dropped")
}
