// Package provider decides whether an outbound message reaches a delivery
// adapter and reports every attempt as a structured Outcome.
package provider

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"rar-studio/internal/model"
)

// maxErrorBody bounds provider error text stored on a message
const maxErrorBody = 300

// Message is what an adapter needs to deliver one notification
type Message struct {
	ID        string
	Channel   string
	Recipient string
	Subject   string
	Body      string
}

// Outcome is the result of one gated attempt. Error is set only when OK is false.
type Outcome struct {
	OK       bool   `json:"ok"`
	Provider string `json:"provider"`
	Error    string `json:"error,omitempty"`
}

// Provider is a delivery adapter for one or more channels
type Provider interface {
	// Name is recorded on the outbound message, e.g. "twilio"
	Name() string
	// Label is used in operator facing error text, e.g. "Twilio"
	Label() string
	Channels() []string
	// Enabled reads the operator flag for this provider
	Enabled(integ model.Integrations) bool
	// CredentialsReady reports whether every required credential is non-empty
	CredentialsReady() bool
	Send(ctx context.Context, msg Message) error
}

// Registry routes channels to providers and applies the gates
type Registry struct {
	providers []Provider
	byChannel map[string]Provider
	dryRun    bool
	timeout   time.Duration
}

// NewRegistry creates a registry. In dry-run mode a message that passes both
// gates is reported as delivered without calling Send.
func NewRegistry(dryRun bool, timeout time.Duration, providers ...Provider) *Registry {
	r := &Registry{
		providers: providers,
		byChannel: make(map[string]Provider),
		dryRun:    dryRun,
		timeout:   timeout,
	}
	for _, p := range providers {
		for _, ch := range p.Channels() {
			r.byChannel[NormalizeChannel(ch)] = p
		}
	}
	return r
}

// NormalizeChannel lower-cases a channel and folds aliases
func NormalizeChannel(channel string) string {
	channel = strings.ToLower(strings.TrimSpace(channel))
	if channel == model.ChannelText {
		return model.ChannelSMS
	}
	return channel
}

// Lookup returns the provider serving channel, if any
func (r *Registry) Lookup(channel string) (Provider, bool) {
	p, ok := r.byChannel[NormalizeChannel(channel)]
	return p, ok
}

// Readiness reports credential presence per provider name
func (r *Registry) Readiness() map[string]bool {
	ready := make(map[string]bool, len(r.providers))
	for _, p := range r.providers {
		ready[p.Name()] = p.CredentialsReady()
	}
	return ready
}

// DryRun reports whether sends are simulated
func (r *Registry) DryRun() bool {
	return r.dryRun
}

// Dispatch runs msg through the feature flag gate, then the credential gate,
// then the adapter. Channels without a provider always succeed as simulated.
func (r *Registry) Dispatch(ctx context.Context, msg Message, integ model.Integrations) (out Outcome) {
	p, ok := r.Lookup(msg.Channel)
	if !ok {
		return Outcome{OK: true, Provider: model.ProviderSimulated}
	}

	if !p.Enabled(integ) {
		return Outcome{Provider: p.Name(), Error: p.Label() + " disabled in settings."}
	}
	if !p.CredentialsReady() {
		return Outcome{Provider: p.Name(), Error: p.Label() + " env keys missing."}
	}
	if r.dryRun {
		return Outcome{OK: true, Provider: p.Name()}
	}

	defer func() {
		if rec := recover(); rec != nil {
			logrus.WithFields(logrus.Fields{
				"message_id": msg.ID,
				"provider":   p.Name(),
			}).Errorf("Provider panicked: %v", rec)
			out = Outcome{Provider: p.Name(), Error: fmt.Sprintf("%s send panicked: %v", p.Label(), rec)}
		}
	}()

	sendCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := p.Send(sendCtx, msg); err != nil {
		return Outcome{Provider: p.Name(), Error: truncate(err.Error(), maxErrorBody)}
	}
	return Outcome{OK: true, Provider: p.Name()}
}

// truncate keeps at most n characters of s
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
