// Package conversation runs metered salesperson chat turns for a lead.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"rar-studio/internal/llm"
	metricsPkg "rar-studio/internal/metrics"
	"rar-studio/internal/model"
	"rar-studio/internal/provider"
	"rar-studio/internal/repository"
	"rar-studio/internal/service"
	"rar-studio/internal/service/outbound"
	"rar-studio/internal/service/usage"
)

// historyWindow is how many prior messages are sent with each turn
const historyWindow = 12

const (
	replyNotConfigured = "Text generation is not configured. Set OPENAI_API_KEY to enable replies."
	replyUnavailable   = "Sorry, I can't reply right now. We'll get back to you shortly."
)

// Store is the persistence the orchestrator needs
type Store interface {
	GetLead(ctx context.Context, id string) (*model.Lead, error)
	AppendMessage(ctx context.Context, msg *model.Message) error
	RecentMessages(ctx context.Context, leadID string, n int) ([]model.Message, error)
	Conversation(ctx context.Context, leadID string) ([]model.Message, error)
	TouchLead(ctx context.Context, id string, at time.Time) error
	GetProfile(ctx context.Context) (*model.BusinessProfile, error)
	GetIntegrations(ctx context.Context) (*model.Integrations, error)
}

// Meter gates turns behind the monthly lead cap
type Meter interface {
	Admit(ctx context.Context, leadID string) (usage.Decision, error)
	Snapshot(ctx context.Context) (usage.Usage, error)
}

// Enqueuer queues autosend notifications
type Enqueuer interface {
	Enqueue(ctx context.Context, in outbound.EnqueueInput) (*model.OutboundMessage, error)
}

// Brand is the prompt context shared by every turn
type Brand struct {
	Name     string
	Audience string
}

// Reply is the result of one chat turn
type Reply struct {
	Reply string      `json:"reply"`
	Usage usage.Usage `json:"usage"`
}

// Orchestrator persists the back-and-forth with a lead
type Orchestrator struct {
	store     Store
	meter     Meter
	queue     Enqueuer
	generator llm.Generator
	metrics   *metricsPkg.Metrics
	brand     Brand
	now       func() time.Time
}

func NewOrchestrator(store Store, meter Meter, queue Enqueuer, generator llm.Generator, metrics *metricsPkg.Metrics, brand Brand) *Orchestrator {
	return &Orchestrator{
		store:     store,
		meter:     meter,
		queue:     queue,
		generator: generator,
		metrics:   metrics,
		brand:     brand,
		now:       time.Now,
	}
}

// Chat admits the lead against the monthly cap, records the user message,
// generates and records a reply, then optionally queues it for delivery.
func (o *Orchestrator) Chat(ctx context.Context, leadID, message string) (*Reply, error) {
	leadID = strings.TrimSpace(leadID)
	message = strings.TrimSpace(message)
	if leadID == "" || message == "" {
		return nil, service.Invalid("", "lead_id and message required")
	}

	lead, err := o.store.GetLead(ctx, leadID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, service.ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}

	decision, err := o.meter.Admit(ctx, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to check usage: %w", err)
	}
	if !decision.Admitted {
		return nil, &service.CapacityExceededError{Month: decision.Month, Used: decision.Used, Cap: decision.Cap}
	}

	if err := o.store.AppendMessage(ctx, &model.Message{
		LeadID:    leadID,
		Role:      model.RoleUser,
		Content:   message,
		CreatedAt: o.now().UTC(),
	}); err != nil {
		return nil, err
	}

	profile, err := o.store.GetProfile(ctx)
	if err != nil {
		return nil, err
	}
	history, err := o.store.RecentMessages(ctx, leadID, historyWindow)
	if err != nil {
		return nil, err
	}

	reply := o.generate(ctx, lead, profile, history)

	if err := o.store.AppendMessage(ctx, &model.Message{
		LeadID:    leadID,
		Role:      model.RoleAssistant,
		Content:   reply,
		CreatedAt: o.now().UTC(),
	}); err != nil {
		return nil, err
	}
	if err := o.store.TouchLead(ctx, leadID, o.now().UTC()); err != nil {
		return nil, err
	}

	o.metrics.ChatTurns.Inc()
	o.autosend(ctx, lead, profile, reply)

	snapshot, err := o.meter.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &Reply{Reply: reply, Usage: snapshot}, nil
}

func (o *Orchestrator) generate(ctx context.Context, lead *model.Lead, profile *model.BusinessProfile, history []model.Message) string {
	turns := make([]llm.Turn, 0, len(history))
	for _, m := range history {
		turns = append(turns, llm.Turn{Role: m.Role, Content: m.Content})
	}

	tone := profile.Tone
	if tone == "" {
		tone = "confident"
	}

	reply, err := o.generator.Generate(ctx, llm.Request{
		Tool:     llm.ToolSalespersonChat,
		Tone:     tone,
		Audience: o.brand.Audience,
		Brand:    o.brand.Name,
		Inputs: map[string]string{
			"biz_name":       profile.BizName,
			"biz_type":       profile.BizType,
			"offer":          profile.Offer,
			"location":       profile.Location,
			"contact_method": profile.ContactMethod,
			"lead_name":      lead.Name,
			"lead_stage":     lead.Stage,
		},
		History: turns,
	})
	if errors.Is(err, llm.ErrNotConfigured) {
		return replyNotConfigured
	}
	if err != nil {
		logrus.WithField("lead_id", lead.ID).Errorf("Failed to generate reply: %v", err)
		return replyUnavailable
	}
	if strings.TrimSpace(reply) == "" {
		return replyUnavailable
	}
	return reply
}

// autosend queues the reply on every configured channel the lead's contact can receive.
// Failures are logged; the chat turn has already been committed.
func (o *Orchestrator) autosend(ctx context.Context, lead *model.Lead, profile *model.BusinessProfile, reply string) {
	integ, err := o.store.GetIntegrations(ctx)
	if err != nil {
		logrus.WithField("lead_id", lead.ID).Errorf("Failed to read integrations for autosend: %v", err)
		return
	}
	if !integ.AutosendEnabled {
		return
	}

	for _, channel := range AutosendChannels(integ.AutosendChannels, lead.Contact) {
		subject := ""
		if channel == model.ChannelEmail && profile.BizName != "" {
			subject = "Message from " + profile.BizName
		}
		if _, err := o.queue.Enqueue(ctx, outbound.EnqueueInput{
			LeadID:    lead.ID,
			Channel:   channel,
			Recipient: lead.Contact,
			Subject:   subject,
			Body:      reply,
		}); err != nil {
			logrus.WithFields(logrus.Fields{
				"lead_id": lead.ID,
				"channel": channel,
			}).Errorf("Failed to queue autosend: %v", err)
		}
	}
}

// AutosendChannels filters the configured channel list down to those that
// fit contact: email needs an address, sms needs a number.
func AutosendChannels(configured, contact string) []string {
	contact = strings.TrimSpace(contact)
	if contact == "" {
		return nil
	}
	isEmail := strings.Contains(contact, "@")

	seen := make(map[string]bool)
	var channels []string
	for _, raw := range strings.Split(configured, ",") {
		channel := provider.NormalizeChannel(raw)
		if channel == "" || seen[channel] {
			continue
		}
		switch channel {
		case model.ChannelEmail:
			if !isEmail {
				continue
			}
		case model.ChannelSMS:
			if isEmail {
				continue
			}
		default:
			continue
		}
		seen[channel] = true
		channels = append(channels, channel)
	}
	return channels
}

// History returns the lead's conversation in order
func (o *Orchestrator) History(ctx context.Context, leadID string) ([]model.Message, error) {
	return o.store.Conversation(ctx, leadID)
}
