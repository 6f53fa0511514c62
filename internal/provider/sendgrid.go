package provider

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"gopkg.in/gomail.v2"

	"rar-studio/internal/config"
	"rar-studio/internal/model"
)

const defaultSubject = "Message from your business"

// SendGrid delivers email through the v3 mail send API or the SMTP relay
type SendGrid struct {
	cfg  config.SendGridConfig
	send func(ctx context.Context, msg Message) error
}

// NewSendGrid creates the adapter for the configured transport
func NewSendGrid(cfg config.SendGridConfig) *SendGrid {
	s := &SendGrid{cfg: cfg}
	if cfg.Transport == config.TransportSMTP {
		s.send = s.sendSMTP
	} else {
		s.send = s.sendAPI
	}
	return s
}

func (s *SendGrid) Name() string       { return "sendgrid" }
func (s *SendGrid) Label() string      { return "SendGrid" }
func (s *SendGrid) Channels() []string { return []string{model.ChannelEmail} }

func (s *SendGrid) Enabled(integ model.Integrations) bool {
	return integ.SendGridEnabled
}

func (s *SendGrid) CredentialsReady() bool {
	return s.cfg.Ready()
}

func (s *SendGrid) Send(ctx context.Context, msg Message) error {
	if msg.Recipient == "" {
		return fmt.Errorf("email recipient is required")
	}
	if msg.Subject == "" {
		msg.Subject = defaultSubject
	}
	return s.send(ctx, msg)
}

func (s *SendGrid) sendAPI(ctx context.Context, msg Message) error {
	from := mail.NewEmail(s.cfg.FromName, s.cfg.FromEmail)
	to := mail.NewEmail("", msg.Recipient)
	email := mail.NewV3MailInit(from, msg.Subject, to, mail.NewContent("text/plain", msg.Body))

	resp, err := sendgrid.NewSendClient(s.cfg.APIKey).SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("SendGrid request failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("SendGrid error %d: %s", resp.StatusCode, truncate(resp.Body, maxErrorBody))
	}
	return nil
}

// sendSMTP uses the SendGrid relay, which authenticates with the literal user "apikey"
func (s *SendGrid) sendSMTP(ctx context.Context, msg Message) error {
	m := gomail.NewMessage()
	if s.cfg.FromName != "" {
		m.SetAddressHeader("From", s.cfg.FromEmail, s.cfg.FromName)
	} else {
		m.SetHeader("From", s.cfg.FromEmail)
	}
	m.SetHeader("To", msg.Recipient)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	d := gomail.NewDialer(s.cfg.SMTPHost, s.cfg.SMTPPort, "apikey", s.cfg.APIKey)

	done := make(chan error, 1)
	go func() { done <- d.DialAndSend(m) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("SendGrid SMTP error: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("SendGrid SMTP timed out: %w", ctx.Err())
	}
}
