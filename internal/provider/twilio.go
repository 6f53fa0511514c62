package provider

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"rar-studio/internal/config"
	"rar-studio/internal/model"
)

// Twilio delivers sms through the Twilio Messages API
type Twilio struct {
	cfg    config.TwilioConfig
	client *twilio.RestClient
}

// NewTwilio creates the adapter. The client is built even without credentials;
// the credential gate keeps it from being used.
func NewTwilio(cfg config.TwilioConfig) *Twilio {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &Twilio{cfg: cfg, client: client}
}

func (t *Twilio) Name() string       { return "twilio" }
func (t *Twilio) Label() string      { return "Twilio" }
func (t *Twilio) Channels() []string { return []string{model.ChannelSMS, model.ChannelText} }

func (t *Twilio) Enabled(integ model.Integrations) bool {
	return integ.TwilioEnabled
}

func (t *Twilio) CredentialsReady() bool {
	return t.cfg.Ready()
}

// Send posts the message. The Twilio client takes no context, so the call is
// abandoned when ctx expires.
func (t *Twilio) Send(ctx context.Context, msg Message) error {
	if msg.Recipient == "" {
		return fmt.Errorf("sms recipient is required")
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(msg.Recipient)
	params.SetFrom(t.cfg.FromNumber)
	params.SetBody(msg.Body)

	done := make(chan error, 1)
	go func() {
		_, err := t.client.Api.CreateMessage(params)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("Twilio error: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("Twilio request timed out: %w", ctx.Err())
	}
}
