package client

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"furnit-storefront/internal/config"
)

type MailMessage struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// MailTransport delivers one rendered message. Implementations bound every call by a timeout.
type MailTransport interface {
	Send(ctx context.Context, msg *MailMessage) error
	Verify(ctx context.Context) error
}

type smtpTransport struct {
	host string
	from string
	cfg  *config.SMTP
}

func NewSMTPTransport(cfg *config.SMTP) MailTransport {
	return &smtpTransport{
		host: cfg.Host,
		from: cfg.From,
		cfg:  cfg,
	}
}

// newClient builds a fresh connection per send; go-mail clients hold one SMTP session.
func (t *smtpTransport) newClient() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(t.cfg.Port),
		mail.WithTimeout(t.cfg.Timeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if t.cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(t.cfg.User),
			mail.WithPassword(t.cfg.Password),
		)
	}

	c, err := mail.NewClient(t.host, opts...)
	if err != nil {
		return nil, fmt.Errorf("new smtp client: %w", err)
	}
	return c, nil
}

func (t *smtpTransport) Send(ctx context.Context, msg *MailMessage) error {
	m := mail.NewMsg()
	if err := m.From(t.from); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("set to address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}

	c, err := t.newClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp dial and send: %w", err)
	}
	return nil
}

// Verify dials and authenticates without sending anything.
func (t *smtpTransport) Verify(ctx context.Context) error {
	c, err := t.newClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	if err := c.DialWithContext(ctx); err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	return c.Close()
}
