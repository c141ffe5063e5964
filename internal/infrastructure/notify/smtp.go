package notify

import (
	"context"
	"fmt"
	"time"

	mail "github.com/wneessen/go-mail"

	"github.com/99minutos/order-tracking/internal/core/domain"
)

// SMTPConfig holds the mail relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SMTPSender delivers notifications as multipart email, a plain text part
// with an HTML alternative. Each Send dials the relay and upgrades with
// STARTTLS when the server offers it.
type SMTPSender struct {
	cfg  SMTPConfig
	opts []mail.Option
	now  func() time.Time
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.From == "" {
		cfg.From = cfg.User
	}
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.User),
			mail.WithPassword(cfg.Password),
		)
	}
	return &SMTPSender{cfg: cfg, opts: opts, now: time.Now}
}

func (s *SMTPSender) Send(ctx context.Context, n domain.Notification) error {
	msg, err := s.message(n)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(s.cfg.Host, s.opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send %s: %w", n.Kind, err)
	}
	return nil
}

func (s *SMTPSender) message(n domain.Notification) (*mail.Msg, error) {
	html, err := HTMLBody(n)
	if err != nil {
		return nil, err
	}

	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("smtp from %q: %w", s.cfg.From, err)
	}
	if err := m.To(n.Email); err != nil {
		return nil, fmt.Errorf("smtp to %q: %w", n.Email, err)
	}
	m.Subject(Subject(n))
	m.SetDateWithValue(s.now())
	m.SetBodyString(mail.TypeTextPlain, PlainBody(n))
	m.AddAlternativeString(mail.TypeTextHTML, html)
	return m, nil
}
