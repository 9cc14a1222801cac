package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/NotAnonymousUser/Ticket-System/internal/config"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
)

// Mailer sends one rendered message to one address.
type Mailer interface {
	Send(ctx context.Context, to string, m Message) error
}

// NewMailer returns an SMTP mailer, or a no-op mailer when credentials
// are missing.
func NewMailer(cfg config.MailConfig, log zerolog.Logger) (Mailer, error) {
	if !cfg.Configured() {
		log.Warn().Msg("email credentials not configured (EMAIL_USER/EMAIL_PASS); notifications will be skipped")
		return NopMailer{log: log}, nil
	}
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.User),
		mail.WithPassword(cfg.Pass),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	log.Info().Str("host", cfg.Host).Int("port", cfg.Port).Str("user", cfg.User).Msg("smtp mailer ready")
	return &SMTPMailer{client: client, from: cfg.From}, nil
}

type smtpSender interface {
	DialAndSendWithContext(ctx context.Context, msgs ...*mail.Msg) error
}

type SMTPMailer struct {
	mu     sync.Mutex // one SMTP session at a time
	client smtpSender
	from   string
}

func (s *SMTPMailer) Send(ctx context.Context, to string, m Message) error {
	msg, err := buildMsg(s.from, to, m)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send to %s: %w", to, err)
	}
	return nil
}

func buildMsg(from, to string, m Message) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("from %q: %w", from, err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("to %q: %w", to, err)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextPlain, m.Text)
	if m.HTML != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, m.HTML)
	}
	return msg, nil
}

// NopMailer stands in when no transport is configured. Sends succeed
// without doing anything.
type NopMailer struct{ log zerolog.Logger }

func (n NopMailer) Send(_ context.Context, to string, m Message) error {
	n.log.Warn().Str("to", to).Str("subject", m.Subject).Msg("email service not configured, skipping send")
	return nil
}
