package provider

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rar-studio/internal/config"
	"rar-studio/internal/model"
)

// fakeProvider counts gate and send calls
type fakeProvider struct {
	enabled      bool
	ready        bool
	sendErr      error
	panicOnSend  bool
	block        bool
	flagChecks   int
	credChecks   int
	sends        int
	lastDeadline time.Time
}

func (f *fakeProvider) Name() string       { return "fake" }
func (f *fakeProvider) Label() string      { return "Fake" }
func (f *fakeProvider) Channels() []string { return []string{"sms", "text"} }

func (f *fakeProvider) Enabled(model.Integrations) bool {
	f.flagChecks++
	return f.enabled
}

func (f *fakeProvider) CredentialsReady() bool {
	f.credChecks++
	return f.ready
}

func (f *fakeProvider) Send(ctx context.Context, msg Message) error {
	f.sends++
	f.lastDeadline, _ = ctx.Deadline()
	if f.panicOnSend {
		panic("boom")
	}
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.sendErr
}

func TestTruncateKeepsWholeCharacters(t *testing.T) {
	s := strings.Repeat("a", 299) + "é…"
	out := truncate(s, maxErrorBody)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, maxErrorBody, utf8.RuneCountInString(out))
	assert.Equal(t, strings.Repeat("a", 299)+"é", out)

	assert.Equal(t, "short", truncate("short", maxErrorBody))
	assert.Equal(t, "ééé", truncate("éééé", 3))
}

func TestDispatchTruncatesMultibyteError(t *testing.T) {
	fake := &fakeProvider{enabled: true, ready: true, sendErr: errors.New(strings.Repeat("ü", 400))}
	reg := NewRegistry(false, time.Second, fake)

	out := reg.Dispatch(context.Background(), Message{Channel: "sms", Recipient: "+1"}, model.Integrations{})
	require.False(t, out.OK)
	assert.True(t, utf8.ValidString(out.Error))
	assert.Equal(t, maxErrorBody, utf8.RuneCountInString(out.Error))
}

func TestDispatchUnknownChannelIsSimulated(t *testing.T) {
	fake := &fakeProvider{}
	reg := NewRegistry(false, time.Second, fake)

	out := reg.Dispatch(context.Background(), Message{Channel: "demo"}, model.Integrations{})
	assert.Equal(t, Outcome{OK: true, Provider: model.ProviderSimulated}, out)
	assert.Zero(t, fake.flagChecks)
}

func TestDispatchDisabledSkipsCredentialCheck(t *testing.T) {
	fake := &fakeProvider{enabled: false, ready: true}
	reg := NewRegistry(false, time.Second, fake)

	out := reg.Dispatch(context.Background(), Message{Channel: "SMS"}, model.Integrations{})
	assert.False(t, out.OK)
	assert.Equal(t, "fake", out.Provider)
	assert.Equal(t, "Fake disabled in settings.", out.Error)
	assert.Equal(t, 1, fake.flagChecks)
	assert.Zero(t, fake.credChecks)
	assert.Zero(t, fake.sends)
}

func TestDispatchMissingCredentials(t *testing.T) {
	fake := &fakeProvider{enabled: true, ready: false}
	reg := NewRegistry(false, time.Second, fake)

	out := reg.Dispatch(context.Background(), Message{Channel: "text"}, model.Integrations{})
	assert.False(t, out.OK)
	assert.Equal(t, "Fake env keys missing.", out.Error)
	assert.Zero(t, fake.sends)
}

func TestDispatchDryRunDoesNotSend(t *testing.T) {
	fake := &fakeProvider{enabled: true, ready: true}
	reg := NewRegistry(true, time.Second, fake)

	out := reg.Dispatch(context.Background(), Message{Channel: "sms"}, model.Integrations{})
	assert.Equal(t, Outcome{OK: true, Provider: "fake"}, out)
	assert.Zero(t, fake.sends)
}

func TestDispatchSendPaths(t *testing.T) {
	fake := &fakeProvider{enabled: true, ready: true}
	reg := NewRegistry(false, 5*time.Second, fake)

	out := reg.Dispatch(context.Background(), Message{Channel: "sms"}, model.Integrations{})
	assert.True(t, out.OK)
	assert.Equal(t, 1, fake.sends)
	assert.False(t, fake.lastDeadline.IsZero(), "sends must carry a deadline")

	fake.sendErr = errors.New(strings.Repeat("x", 500))
	out = reg.Dispatch(context.Background(), Message{Channel: "sms"}, model.Integrations{})
	assert.False(t, out.OK)
	assert.Len(t, out.Error, maxErrorBody)

	fake.sendErr = nil
	fake.panicOnSend = true
	out = reg.Dispatch(context.Background(), Message{Channel: "sms"}, model.Integrations{})
	assert.False(t, out.OK)
	assert.Contains(t, out.Error, "panicked")
}

func TestDispatchTimesOut(t *testing.T) {
	fake := &fakeProvider{enabled: true, ready: true, block: true}
	reg := NewRegistry(false, 20*time.Millisecond, fake)

	out := reg.Dispatch(context.Background(), Message{Channel: "sms"}, model.Integrations{})
	assert.False(t, out.OK)
	assert.Contains(t, out.Error, "deadline exceeded")
}

func TestAdapterGates(t *testing.T) {
	tw := NewTwilio(config.TwilioConfig{AccountSID: "AC1", AuthToken: "tok"})
	assert.False(t, tw.CredentialsReady())
	assert.True(t, tw.Enabled(model.Integrations{TwilioEnabled: true}))
	assert.False(t, tw.Enabled(model.Integrations{SendGridEnabled: true}))

	tw = NewTwilio(config.TwilioConfig{AccountSID: "AC1", AuthToken: "tok", FromNumber: "+15550001111"})
	assert.True(t, tw.CredentialsReady())
	assert.Error(t, tw.Send(context.Background(), Message{Body: "hi"}))

	sg := NewSendGrid(config.SendGridConfig{APIKey: "SG.key"})
	assert.False(t, sg.CredentialsReady())
	assert.True(t, sg.Enabled(model.Integrations{SendGridEnabled: true}))

	sg = NewSendGrid(config.SendGridConfig{APIKey: "SG.key", FromEmail: "hi@example.com", Transport: config.TransportSMTP})
	assert.True(t, sg.CredentialsReady())
	assert.Error(t, sg.Send(context.Background(), Message{Body: "hi"}))

	reg := NewRegistry(true, time.Second, tw, sg)
	assert.Equal(t, map[string]bool{"twilio": true, "sendgrid": true}, reg.Readiness())

	p, ok := reg.Lookup("TEXT")
	require.True(t, ok)
	assert.Equal(t, "twilio", p.Name())
	p, ok = reg.Lookup("email")
	require.True(t, ok)
	assert.Equal(t, "sendgrid", p.Name())
}
