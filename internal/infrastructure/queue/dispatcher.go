package queue

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/order-tracking/internal/api/metrics"
	"github.com/99minutos/order-tracking/internal/core/domain"
	"github.com/99minutos/order-tracking/internal/core/ports"
)

const (
	defaultWorkers     = 4
	defaultBuffer      = 256
	defaultSendTimeout = 10 * time.Second
)

// Options tunes a Dispatcher. Zero values fall back to the defaults.
type Options struct {
	Workers     int
	Buffer      int
	SendTimeout time.Duration
	// Recipients resolves the address of notifications queued with only a
	// UserID. Such notifications fail when it is nil.
	Recipients RecipientLookup
}

// RecipientLookup finds the user a notification is addressed to.
// ports.UserRepository satisfies it.
type RecipientLookup interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

var errNoRecipient = errors.New("notification has no recipient")

// Dispatcher delivers notifications in the background through a fixed set of
// workers. Notifications for the same order always land on the same worker,
// so they are sent in the order they were accepted.
type Dispatcher struct {
	workers    []chan domain.Notification
	sender     ports.NotificationSender
	recipients RecipientLookup
	timeout    time.Duration
	log        zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. Call Start before Notify.
func NewDispatcher(opts Options, sender ports.NotificationSender, log zerolog.Logger) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Buffer <= 0 {
		opts.Buffer = defaultBuffer
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = defaultSendTimeout
	}
	d := &Dispatcher{
		workers:    make([]chan domain.Notification, opts.Workers),
		sender:     sender,
		recipients: opts.Recipients,
		timeout:    opts.SendTimeout,
		log:        log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Notification, opts.Buffer)
	}
	return d
}

// Start launches all worker goroutines. Cancelling ctx aborts in-flight sends;
// use Stop to drain the queues.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Notify queues n for delivery. It never blocks: when the worker's queue is
// full, or the dispatcher is stopped, the notification is dropped and counted.
func (d *Dispatcher) Notify(n domain.Notification) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(n, "dispatcher stopped")
		return
	}

	idx := d.shardIndex(n.OrderID)
	select {
	case d.workers[idx] <- n:
		metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.drop(n, "queue full")
	}
}

// Stop refuses new notifications and waits until queued ones are delivered
// or ctx expires.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps an order id deterministically to a worker index.
func (d *Dispatcher) shardIndex(orderID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(orderID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Notification) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for n := range ch {
		metrics.NotificationQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
		d.send(ctx, id, n)
	}
}

func (d *Dispatcher) send(ctx context.Context, workerID int, n domain.Notification) {
	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	err := d.resolve(sendCtx, &n)
	if err == nil {
		err = d.sender.Send(sendCtx, n)
	}
	metrics.NotificationSendDuration.WithLabelValues(string(n.Kind)).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.NotificationsTotal.WithLabelValues(string(n.Kind), "failed").Inc()
		d.log.Error().Err(err).
			Str("order_id", n.OrderID).
			Str("kind", string(n.Kind)).
			Int("worker_id", workerID).
			Msg("notification delivery failed")
		return
	}
	metrics.NotificationsTotal.WithLabelValues(string(n.Kind), "sent").Inc()
}

// resolve fills in n.Email from n.UserID when the producer left it empty.
func (d *Dispatcher) resolve(ctx context.Context, n *domain.Notification) error {
	if n.Email != "" {
		return nil
	}
	if n.UserID == "" || d.recipients == nil {
		return errNoRecipient
	}
	user, err := d.recipients.FindByID(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("resolve recipient %s: %w", n.UserID, err)
	}
	if user.Email == "" {
		return errNoRecipient
	}
	n.Email = user.Email
	return nil
}

func (d *Dispatcher) drop(n domain.Notification, reason string) {
	metrics.NotificationsTotal.WithLabelValues(string(n.Kind), "dropped").Inc()
	d.log.Warn().
		Str("order_id", n.OrderID).
		Str("kind", string(n.Kind)).
		Str("reason", reason).
		Msg("notification dropped")
}
