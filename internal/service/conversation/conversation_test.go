package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"rar-studio/internal/llm"
	"rar-studio/internal/metrics"
	"rar-studio/internal/model"
	"rar-studio/internal/provider"
	"rar-studio/internal/repository"
	"rar-studio/internal/service"
	"rar-studio/internal/service/outbound"
	"rar-studio/internal/service/usage"
	"rar-studio/internal/testutil"
)

type stubGenerator struct {
	reply    string
	err      error
	requests []llm.Request
}

func (g *stubGenerator) Generate(_ context.Context, req llm.Request) (string, error) {
	g.requests = append(g.requests, req)
	return g.reply, g.err
}

func newOrchestrator(t *testing.T, gen llm.Generator) (*Orchestrator, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	repo := repository.New(db)
	m := metrics.NewNop()
	meter := usage.NewMeter(repo, m)
	queue := outbound.NewQueue(repo, provider.NewRegistry(true, time.Second), m, 25)
	return NewOrchestrator(repo, meter, queue, gen, m, Brand{Name: "RAR AI Studio", Audience: "small business"}), db
}

func TestChatPersistsTurnAndReportsUsage(t *testing.T) {
	gen := &stubGenerator{reply: "Happy to help! When works for you?"}
	orch, db := newOrchestrator(t, gen)
	testutil.CreateLead(t, db, "lead-1", "+15550001111")
	ctx := context.Background()

	reply, err := orch.Chat(ctx, "lead-1", "  do you fix leaks?  ")
	require.NoError(t, err)
	assert.Equal(t, "Happy to help! When works for you?", reply.Reply)
	assert.Equal(t, int64(1), reply.Usage.Used)
	assert.Equal(t, model.DefaultLeadCap, reply.Usage.Cap)
	assert.Equal(t, model.DefaultPlan, reply.Usage.Plan)

	history, err := orch.History(ctx, "lead-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.RoleUser, history[0].Role)
	assert.Equal(t, "do you fix leaks?", history[0].Content)
	assert.Equal(t, model.RoleAssistant, history[1].Role)

	require.Len(t, gen.requests, 1)
	req := gen.requests[0]
	assert.Equal(t, llm.ToolSalespersonChat, req.Tool)
	assert.Equal(t, "confident", req.Tone)
	require.Len(t, req.History, 1)
	assert.Equal(t, "do you fix leaks?", req.History[0].Content)

	var queuedCount int64
	require.NoError(t, db.Model(&model.OutboundMessage{}).Count(&queuedCount).Error)
	assert.Zero(t, queuedCount, "autosend is off by default")
}

func TestChatValidation(t *testing.T) {
	orch, _ := newOrchestrator(t, &stubGenerator{reply: "hi"})

	_, err := orch.Chat(context.Background(), "", "hello")
	assert.True(t, service.IsValidation(err))

	_, err = orch.Chat(context.Background(), "lead-1", "   ")
	assert.True(t, service.IsValidation(err))

	_, err = orch.Chat(context.Background(), "missing", "hello")
	assert.ErrorIs(t, err, service.ErrLeadNotFound)
}

func TestChatRejectsOverCapWithoutWrites(t *testing.T) {
	gen := &stubGenerator{reply: "hi"}
	orch, db := newOrchestrator(t, gen)
	testutil.SetLeadCap(t, db, 1)
	testutil.CreateLead(t, db, "lead-1", "a@example.com")
	testutil.CreateLead(t, db, "lead-2", "b@example.com")
	ctx := context.Background()

	_, err := orch.Chat(ctx, "lead-1", "hello")
	require.NoError(t, err)

	_, err = orch.Chat(ctx, "lead-2", "hello")
	var capErr *service.CapacityExceededError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, int64(1), capErr.Used)
	assert.Equal(t, 1, capErr.Cap)
	assert.Contains(t, capErr.Error(), "(1/1)")

	var msgs int64
	require.NoError(t, db.Model(&model.Message{}).Where("lead_id = ?", "lead-2").Count(&msgs).Error)
	assert.Zero(t, msgs)

	// The already counted lead keeps chatting.
	_, err = orch.Chat(ctx, "lead-1", "still there?")
	assert.NoError(t, err)
	assert.Len(t, gen.requests, 2)
}

func TestChatFallbackWhenGeneratorDisabled(t *testing.T) {
	orch, db := newOrchestrator(t, llm.Disabled{})
	testutil.CreateLead(t, db, "lead-1", "a@example.com")

	reply, err := orch.Chat(context.Background(), "lead-1", "hello")
	require.NoError(t, err)
	assert.Equal(t, replyNotConfigured, reply.Reply)
}

func TestChatAutosendQueuesMatchingChannels(t *testing.T) {
	orch, db := newOrchestrator(t, &stubGenerator{reply: "See you Tuesday"})
	require.NoError(t, db.Model(&model.Integrations{}).Where("id = ?", model.SingletonID).Updates(map[string]interface{}{
		"autosend_enabled":  true,
		"autosend_channels": "sms, email",
	}).Error)
	testutil.CreateLead(t, db, "lead-1", "pat@example.com")

	_, err := orch.Chat(context.Background(), "lead-1", "book me")
	require.NoError(t, err)

	var queued []model.OutboundMessage
	require.NoError(t, db.Find(&queued).Error)
	require.Len(t, queued, 1)
	assert.Equal(t, model.ChannelEmail, queued[0].Channel)
	assert.Equal(t, "pat@example.com", queued[0].Recipient)
	assert.Equal(t, "See you Tuesday", queued[0].Body)
	assert.Equal(t, model.StatusQueued, queued[0].Status)
	require.NotNil(t, queued[0].LeadID)
	assert.Equal(t, "lead-1", *queued[0].LeadID)
}

func TestAutosendChannels(t *testing.T) {
	assert.Equal(t, []string{"sms"}, AutosendChannels("sms,email", "+15550001111"))
	assert.Equal(t, []string{"email"}, AutosendChannels("sms,email", "a@example.com"))
	assert.Equal(t, []string{"sms"}, AutosendChannels("text,sms", "+15550001111"))
	assert.Empty(t, AutosendChannels("sms,email", ""))
	assert.Empty(t, AutosendChannels("fax", "+15550001111"))
}
