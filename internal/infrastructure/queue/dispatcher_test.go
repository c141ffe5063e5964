package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/order-tracking/internal/core/domain"
)

type recordingSender struct {
	mu    sync.Mutex
	sent  []domain.Notification
	err   error
	block chan struct{}
}

func (s *recordingSender) Send(ctx context.Context, n domain.Notification) error {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
	return s.err
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func TestDispatcher_DeliversAndPreservesPerOrderOrder(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(Options{Workers: 4, Buffer: 64}, sender, zerolog.Nop())
	d.Start(context.Background())

	statuses := []domain.OrderStatus{domain.StatusPlaced, domain.StatusAccepted, domain.StatusPickedUp, domain.StatusDelivered}
	for _, st := range statuses {
		d.Notify(domain.Notification{Email: "c@example.com", Kind: domain.NotificationStatusChanged, OrderID: "order-1", Status: st})
		d.Notify(domain.Notification{Email: "c@example.com", Kind: domain.NotificationStatusChanged, OrderID: "order-2", Status: st})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}

	if sender.count() != 8 {
		t.Fatalf("expected 8 deliveries, got %d", sender.count())
	}
	var got []domain.OrderStatus
	for _, n := range sender.sent {
		if n.OrderID == "order-1" {
			got = append(got, n.Status)
		}
	}
	for i := range statuses {
		if got[i] != statuses[i] {
			t.Fatalf("order-1 delivered out of order: %v", got)
		}
	}
}

func TestDispatcher_NotifyNeverBlocksWhenFull(t *testing.T) {
	sender := &recordingSender{block: make(chan struct{})}
	d := NewDispatcher(Options{Workers: 1, Buffer: 1}, sender, zerolog.Nop())
	d.Start(context.Background())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			d.Notify(domain.Notification{Email: "c@example.com", Kind: domain.NotificationOrderPlaced, OrderID: "o"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked on a full queue")
	}

	close(sender.block)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = d.Stop(ctx)

	if n := sender.count(); n == 0 || n > 2 {
		t.Fatalf("expected at most worker+buffer deliveries, got %d", n)
	}
}

func TestDispatcher_SendFailuresAreSwallowed(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	d := NewDispatcher(Options{Workers: 2}, sender, zerolog.Nop())
	d.Start(context.Background())

	d.Notify(domain.Notification{Email: "c@example.com", Kind: domain.NotificationOrderPlaced, OrderID: "o-1"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if sender.count() != 1 {
		t.Fatalf("expected one attempt, got %d", sender.count())
	}
}

func TestDispatcher_SendIsBoundedByTimeout(t *testing.T) {
	sender := &recordingSender{block: make(chan struct{})}
	d := NewDispatcher(Options{Workers: 1, SendTimeout: 20 * time.Millisecond}, sender, zerolog.Nop())
	d.Start(context.Background())

	d.Notify(domain.Notification{Email: "c@example.com", Kind: domain.NotificationOrderPlaced, OrderID: "o-1"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Stop(ctx); err != nil {
		t.Fatalf("a hung sender must be abandoned after the send timeout: %v", err)
	}
}

func TestDispatcher_NotifyAfterStopDrops(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(Options{Workers: 1}, sender, zerolog.Nop())
	d.Start(context.Background())
	_ = d.Stop(context.Background())

	d.Notify(domain.Notification{Email: "c@example.com", Kind: domain.NotificationOrderPlaced, OrderID: "late"})
	if sender.count() != 0 {
		t.Fatal("no delivery expected after stop")
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(Options{Workers: 8}, &recordingSender{}, zerolog.Nop())
	for _, id := range []string{"a", "order-1", "2f1c"} {
		first := d.shardIndex(id)
		if first < 0 || first >= 8 {
			t.Fatalf("index out of range: %d", first)
		}
		for i := 0; i < 10; i++ {
			if d.shardIndex(id) != first {
				t.Fatalf("shard index for %q is not stable", id)
			}
		}
	}
}

type stubRecipients struct {
	users map[string]domain.User
}

func (r stubRecipients) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func TestDispatcher_ResolvesRecipientFromUserID(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(Options{
		Workers:    1,
		Recipients: stubRecipients{users: map[string]domain.User{"u-1": {ID: "u-1", Email: "owner@example.com"}}},
	}, sender, zerolog.Nop())
	d.Start(context.Background())

	d.Notify(domain.Notification{Kind: domain.NotificationStatusChanged, OrderID: "o-1", UserID: "u-1"})
	d.Notify(domain.Notification{Kind: domain.NotificationStatusChanged, OrderID: "o-2", UserID: "gone"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if sender.count() != 1 {
		t.Fatalf("expected only the resolvable notification to be sent, got %d", sender.count())
	}
	if sender.sent[0].Email != "owner@example.com" || sender.sent[0].OrderID != "o-1" {
		t.Fatalf("unexpected delivery: %+v", sender.sent[0])
	}
}

func TestDispatcher_NoRecipientIsNotSent(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(Options{Workers: 1}, sender, zerolog.Nop())
	d.Start(context.Background())

	d.Notify(domain.Notification{Kind: domain.NotificationStatusChanged, OrderID: "o-1", UserID: "u-1"})
	_ = d.Stop(context.Background())

	if sender.count() != 0 {
		t.Fatal("a notification without an address must not reach the sender")
	}
}
