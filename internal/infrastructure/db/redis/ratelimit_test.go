package redis

import (
	"context"
	"testing"
	"time"
)

func TestFixedWindowLimiter_Key(t *testing.T) {
	l := &FixedWindowLimiter{}
	start := time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC)

	if got, want := l.key("login:10.0.0.1", start), "ratelimit:login:10.0.0.1:1767323040"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFixedWindowLimiter_StoreDown(t *testing.T) {
	client := NewClient(Config{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond})
	t.Cleanup(func() { _ = client.Close() })

	d, err := NewFixedWindowLimiter(client).Allow(context.Background(), "login:10.0.0.1", 5, time.Minute)
	if err == nil {
		t.Fatal("expected an error with redis unreachable")
	}
	if d.Allowed {
		t.Fatal("a failed check must not report a decision")
	}
}
