package notify

import (
	"bytes"
	"context"
	"mime"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	mail "github.com/wneessen/go-mail"

	"github.com/99minutos/order-tracking/internal/core/domain"
)

func TestSubject(t *testing.T) {
	placed := domain.Notification{Kind: domain.NotificationOrderPlaced, OrderID: "abc"}
	if got := Subject(placed); got != "Order Confirmation - #abc" {
		t.Errorf("unexpected subject %q", got)
	}
	changed := domain.Notification{Kind: domain.NotificationStatusChanged, OrderID: "abc", Status: domain.StatusOnTheWay}
	if got := Subject(changed); got != "Order #abc - ON_THE_WAY" {
		t.Errorf("unexpected subject %q", got)
	}
}

func TestHTMLBody(t *testing.T) {
	body, err := HTMLBody(domain.Notification{
		Kind:           domain.NotificationOrderPlaced,
		OrderID:        "abc",
		TrackingNumber: "ORD-ABCDEFGHIJ",
		TotalAmount:    12.5,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"Order Confirmation", "ORD-ABCDEFGHIJ", "$12.50"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}

	body, _ = HTMLBody(domain.Notification{Kind: domain.NotificationStatusChanged, OrderID: "<x>", Status: domain.StatusDelivered})
	if strings.Contains(body, "<x>") || !strings.Contains(body, "DELIVERED") {
		t.Errorf("expected escaped id and status in body:\n%s", body)
	}
	if strings.Contains(body, "Tracking:") {
		t.Error("tracking line must be omitted when there is no tracking number")
	}
}

func TestPlainBody(t *testing.T) {
	body := PlainBody(domain.Notification{Kind: domain.NotificationOrderPlaced, OrderID: "abc", TrackingNumber: "ORD-ABCDEFGHIJ", TotalAmount: 3})
	for _, want := range []string{"Order ID: abc", "Tracking Number: ORD-ABCDEFGHIJ", "$3.00"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
	body = PlainBody(domain.Notification{Kind: domain.NotificationStatusChanged, OrderID: "abc", Status: domain.StatusCancelled})
	if !strings.Contains(body, "Status: CANCELLED") || strings.Contains(body, "Tracking:") {
		t.Errorf("unexpected status body:\n%s", body)
	}
}

func TestSMTPSender_Message(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 587, User: "bot@example.com"})
	s.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	msg, err := s.message(domain.Notification{
		Kind:    domain.NotificationStatusChanged,
		Email:   "cust@example.com",
		OrderID: "pedido-ñ",
		Status:  domain.StatusOnTheWay,
	})
	if err != nil {
		t.Fatalf("build message: %v", err)
	}

	if from := msg.GetFromString(); len(from) != 1 || !strings.Contains(from[0], "bot@example.com") {
		t.Errorf("unexpected From: %v", from)
	}
	if to := msg.GetTo(); len(to) != 1 || to[0].Address != "cust@example.com" {
		t.Errorf("unexpected To: %v", to)
	}
	subj := msg.GetGenHeader(mail.HeaderSubject)
	if len(subj) != 1 || !strings.HasPrefix(strings.ToUpper(subj[0]), "=?UTF-8?") {
		t.Fatalf("non-ASCII subject must be RFC 2047 encoded: %v", subj)
	}
	if decoded, err := new(mime.WordDecoder).DecodeHeader(subj[0]); err != nil || decoded != "Order #pedido-ñ - ON_THE_WAY" {
		t.Errorf("unexpected Subject %q (%v)", decoded, err)
	}

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("write message: %v", err)
	}
	raw := buf.String()
	for _, want := range []string{"multipart/alternative", "text/plain", "text/html", "ON_THE_WAY"} {
		if !strings.Contains(raw, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestSMTPSender_InvalidRecipient(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 587, From: "bot@example.com"})
	if _, err := s.message(domain.Notification{Kind: domain.NotificationOrderPlaced, Email: "not an address"}); err == nil {
		t.Fatal("expected an error for a malformed recipient")
	}
}

func TestSMTPSender_DialFailure(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: 1, From: "bot@example.com"})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Send(ctx, domain.Notification{Kind: domain.NotificationOrderPlaced, Email: "a@b.co"}); err == nil {
		t.Fatal("expected dial error")
	}
}

func TestLogSender(t *testing.T) {
	var buf strings.Builder
	s := NewLogSender(zerolog.New(&buf))
	if err := s.Send(context.Background(), domain.Notification{Kind: domain.NotificationOrderPlaced, OrderID: "o-1", Email: "a@b.co"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(buf.String(), `"order_id":"o-1"`) {
		t.Errorf("unexpected log line: %s", buf.String())
	}
}
