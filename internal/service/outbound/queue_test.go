package outbound

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"rar-studio/internal/metrics"
	"rar-studio/internal/model"
	"rar-studio/internal/provider"
	"rar-studio/internal/repository"
	"rar-studio/internal/service"
	"rar-studio/internal/testutil"
)

type countingProvider struct {
	credChecks int
	sends      int
}

func (p *countingProvider) Name() string       { return "twilio" }
func (p *countingProvider) Label() string      { return "Twilio" }
func (p *countingProvider) Channels() []string { return []string{"sms", "text"} }
func (p *countingProvider) Enabled(integ model.Integrations) bool {
	return integ.TwilioEnabled
}
func (p *countingProvider) CredentialsReady() bool {
	p.credChecks++
	return true
}
func (p *countingProvider) Send(context.Context, provider.Message) error {
	p.sends++
	return nil
}

// flakyStore fails the settings read for one message id
type flakyStore struct {
	*repository.Repository
	calls  int
	failOn int
}

func (s *flakyStore) GetIntegrations(ctx context.Context) (*model.Integrations, error) {
	s.calls++
	if s.calls == s.failOn {
		return nil, errors.New("settings unavailable")
	}
	return s.Repository.GetIntegrations(ctx)
}

type panicDispatcher struct{ target string }

func (d panicDispatcher) Dispatch(_ context.Context, msg provider.Message, _ model.Integrations) provider.Outcome {
	if msg.ID == d.target {
		panic("adapter exploded")
	}
	return provider.Outcome{OK: true, Provider: model.ProviderSimulated}
}

func setup(t *testing.T) (*gorm.DB, *repository.Repository, *testutil.Clock) {
	t.Helper()
	db := testutil.NewDB(t)
	return db, repository.New(db), &testutil.Clock{Current: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func enqueueN(t *testing.T, q *Queue, clock *testutil.Clock, channel string, n int) []string {
	t.Helper()
	var ids []string
	for i := 0; i < n; i++ {
		msg, err := q.Enqueue(context.Background(), EnqueueInput{Channel: channel, Recipient: "+15550001111", Body: "hello"})
		require.NoError(t, err)
		ids = append(ids, msg.ID)
		clock.Advance(time.Second)
	}
	return ids
}

func statusOf(t *testing.T, repo *repository.Repository, id string) *model.OutboundMessage {
	t.Helper()
	msg, err := repo.GetOutbound(context.Background(), id)
	require.NoError(t, err)
	return msg
}

func TestEnqueueRejectsEmptyBody(t *testing.T) {
	db, repo, clock := setup(t)
	q := NewQueue(repo, provider.NewRegistry(true, time.Second), metrics.NewNop(), 25).WithClock(clock.Now)

	_, err := q.Enqueue(context.Background(), EnqueueInput{Channel: "sms", Body: "   "})
	require.Error(t, err)
	assert.True(t, service.IsValidation(err))

	var count int64
	require.NoError(t, db.Model(&model.OutboundMessage{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestEnqueueDefaults(t *testing.T) {
	_, repo, clock := setup(t)
	q := NewQueue(repo, provider.NewRegistry(true, time.Second), metrics.NewNop(), 25).WithClock(clock.Now)

	msg, err := q.Enqueue(context.Background(), EnqueueInput{Body: "  hi there  "})
	require.NoError(t, err)
	assert.Equal(t, model.ChannelSMS, msg.Channel)
	assert.Equal(t, "hi there", msg.Body)
	assert.Equal(t, model.StatusQueued, msg.Status)
	assert.Nil(t, msg.LeadID)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, clock.Current, msg.CreatedAt)
}

func TestRunSimulatedChannelInBatches(t *testing.T) {
	_, repo, clock := setup(t)
	q := NewQueue(repo, provider.NewRegistry(false, time.Second), metrics.NewNop(), 25).WithClock(clock.Now)
	ids := enqueueN(t, q, clock, "demo", 3)

	res, err := q.Run(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, RunResult{QueuedFound: 2, Sent: 2, Failed: 0}, res)

	assert.Equal(t, model.StatusSent, statusOf(t, repo, ids[0]).Status)
	assert.Equal(t, model.StatusSent, statusOf(t, repo, ids[1]).Status)
	assert.Equal(t, model.StatusQueued, statusOf(t, repo, ids[2]).Status)

	res, err = q.Run(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, RunResult{QueuedFound: 1, Sent: 1, Failed: 0}, res)

	last := statusOf(t, repo, ids[2])
	assert.Equal(t, model.StatusSent, last.Status)
	assert.Equal(t, model.ProviderSimulated, last.Provider)
	assert.Empty(t, last.Error)
	require.NotNil(t, last.SentAt)

	res, err = q.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, RunResult{}, res)
}

func TestRunProcessesOldestFirst(t *testing.T) {
	_, repo, clock := setup(t)
	q := NewQueue(repo, provider.NewRegistry(false, time.Second), metrics.NewNop(), 25).WithClock(clock.Now)
	ids := enqueueN(t, q, clock, "demo", 4)

	res, err := q.Run(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, model.StatusSent, statusOf(t, repo, ids[0]).Status)
	for _, id := range ids[1:] {
		assert.Equal(t, model.StatusQueued, statusOf(t, repo, id).Status)
	}
}

func TestRunDisabledFlagFailsWithoutCredentialCheck(t *testing.T) {
	db, repo, clock := setup(t)
	testutil.SetIntegrations(t, db, false, false)
	fake := &countingProvider{}
	q := NewQueue(repo, provider.NewRegistry(false, time.Second, fake), metrics.NewNop(), 25).WithClock(clock.Now)
	ids := enqueueN(t, q, clock, "sms", 2)

	res, err := q.Run(context.Background(), 25)
	require.NoError(t, err)
	assert.Equal(t, RunResult{QueuedFound: 2, Sent: 0, Failed: 2}, res)
	assert.Zero(t, fake.credChecks)
	assert.Zero(t, fake.sends)

	msg := statusOf(t, repo, ids[0])
	assert.Equal(t, model.StatusFailed, msg.Status)
	assert.Equal(t, "twilio", msg.Provider)
	assert.Contains(t, msg.Error, "disabled")
	require.NotNil(t, msg.SentAt)

	// Failed messages are never picked up again.
	res, err = q.Run(context.Background(), 25)
	require.NoError(t, err)
	assert.Zero(t, res.QueuedFound)
}

func TestRunReadsFlagsPerMessage(t *testing.T) {
	db, repo, clock := setup(t)
	testutil.SetIntegrations(t, db, true, false)
	fake := &countingProvider{}
	q := NewQueue(repo, provider.NewRegistry(false, time.Second, fake), metrics.NewNop(), 25).WithClock(clock.Now)
	enqueueN(t, q, clock, "text", 1)

	res, err := q.Run(context.Background(), 25)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, 1, fake.sends)

	testutil.SetIntegrations(t, db, false, false)
	enqueueN(t, q, clock, "text", 1)

	res, err = q.Run(context.Background(), 25)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, fake.sends)
}

func TestRunRecordsInternalFailuresAndContinues(t *testing.T) {
	_, repo, clock := setup(t)
	store := &flakyStore{Repository: repo, failOn: 2}
	q := NewQueue(store, provider.NewRegistry(false, time.Second), metrics.NewNop(), 25).WithClock(clock.Now)
	ids := enqueueN(t, q, clock, "demo", 3)

	res, err := q.Run(context.Background(), 25)
	require.NoError(t, err)
	assert.Equal(t, RunResult{QueuedFound: 3, Sent: 2, Failed: 1}, res)

	bad := statusOf(t, repo, ids[1])
	assert.Equal(t, model.StatusFailed, bad.Status)
	assert.Equal(t, model.ProviderInternal, bad.Provider)
	assert.Equal(t, "settings unavailable", bad.Error)
	assert.Equal(t, model.StatusSent, statusOf(t, repo, ids[2]).Status)
}

func TestRunRecoversPanics(t *testing.T) {
	_, repo, clock := setup(t)
	seed := NewQueue(repo, provider.NewRegistry(false, time.Second), metrics.NewNop(), 25).WithClock(clock.Now)
	ids := enqueueN(t, seed, clock, "demo", 2)

	q := NewQueue(repo, panicDispatcher{target: ids[0]}, metrics.NewNop(), 25).WithClock(clock.Now)
	res, err := q.Run(context.Background(), 25)
	require.NoError(t, err)
	assert.Equal(t, RunResult{QueuedFound: 2, Sent: 1, Failed: 1}, res)

	bad := statusOf(t, repo, ids[0])
	assert.Equal(t, model.ProviderInternal, bad.Provider)
	assert.Contains(t, bad.Error, "adapter exploded")
}

func TestList(t *testing.T) {
	_, repo, clock := setup(t)
	q := NewQueue(repo, provider.NewRegistry(false, time.Second), metrics.NewNop(), 25).WithClock(clock.Now)
	enqueueN(t, q, clock, "demo", 3)
	_, err := q.Run(context.Background(), 1)
	require.NoError(t, err)

	msgs, total, page, limit, err := q.List(context.Background(), model.StatusQueued, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, msgs, 2)
	assert.Equal(t, 1, page)
	assert.Equal(t, 50, limit)
}

// cancellingDispatcher cancels the caller's context during the first dispatch
type cancellingDispatcher struct {
	cancel context.CancelFunc
	calls  int
}

func (d *cancellingDispatcher) Dispatch(context.Context, provider.Message, model.Integrations) provider.Outcome {
	d.calls++
	if d.calls == 1 {
		d.cancel()
	}
	return provider.Outcome{OK: true, Provider: model.ProviderSimulated}
}

func TestRunCompletesBatchAfterCancel(t *testing.T) {
	_, repo, clock := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher := &cancellingDispatcher{cancel: cancel}
	q := NewQueue(repo, dispatcher, metrics.NewNop(), 25).WithClock(clock.Now)
	ids := enqueueN(t, q, clock, "demo", 3)

	res, err := q.Run(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, RunResult{QueuedFound: 3, Sent: 3, Failed: 0}, res)
	assert.Equal(t, 3, dispatcher.calls)

	for _, id := range ids {
		assert.Equal(t, model.StatusSent, statusOf(t, repo, id).Status)
	}
}

func TestRunWithCancelledContextSelectsNothing(t *testing.T) {
	_, repo, clock := setup(t)
	q := NewQueue(repo, provider.NewRegistry(false, time.Second), metrics.NewNop(), 25).WithClock(clock.Now)
	ids := enqueueN(t, q, clock, "demo", 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := q.Run(ctx, 3)
	assert.Error(t, err)
	assert.Equal(t, model.StatusQueued, statusOf(t, repo, ids[0]).Status)
}
