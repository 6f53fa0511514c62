// Package outbound persists notification intent and drains it through the
// provider gates, one terminal transition per message.
package outbound

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	metricsPkg "rar-studio/internal/metrics"
	"rar-studio/internal/model"
	"rar-studio/internal/provider"
	"rar-studio/internal/service"
)

// DefaultBatchLimit is used when Run is called without a positive limit
const DefaultBatchLimit = 25

// Store is the persistence the queue needs
type Store interface {
	CreateOutbound(ctx context.Context, msg *model.OutboundMessage) error
	ListQueued(ctx context.Context, limit int) ([]model.OutboundMessage, error)
	FinishOutbound(ctx context.Context, id, status, provider, errMsg string, at time.Time) (bool, error)
	ListOutbound(ctx context.Context, status string, offset, limit int) ([]model.OutboundMessage, int64, error)
	GetIntegrations(ctx context.Context) (*model.Integrations, error)
}

// Dispatcher applies the provider gates to one message
type Dispatcher interface {
	Dispatch(ctx context.Context, msg provider.Message, integ model.Integrations) provider.Outcome
}

// EnqueueInput describes one notification to queue
type EnqueueInput struct {
	LeadID    string
	Channel   string
	Recipient string
	Subject   string
	Body      string
}

// RunResult summarizes one batch
type RunResult struct {
	QueuedFound int `json:"queued_found"`
	Sent        int `json:"sent"`
	Failed      int `json:"failed"`
}

// Queue records outbound messages and processes them in creation order
type Queue struct {
	store      Store
	dispatcher Dispatcher
	metrics    *metricsPkg.Metrics
	batchLimit int
	now        func() time.Time
}

// NewQueue creates a queue. batchLimit <= 0 falls back to DefaultBatchLimit.
func NewQueue(store Store, dispatcher Dispatcher, metrics *metricsPkg.Metrics, batchLimit int) *Queue {
	if batchLimit <= 0 {
		batchLimit = DefaultBatchLimit
	}
	return &Queue{
		store:      store,
		dispatcher: dispatcher,
		metrics:    metrics,
		batchLimit: batchLimit,
		now:        time.Now,
	}
}

// WithClock replaces the time source for created_at and sent_at
func (q *Queue) WithClock(now func() time.Time) *Queue {
	q.now = now
	return q
}

// Enqueue validates and persists a message in the queued state. Nothing is sent.
func (q *Queue) Enqueue(ctx context.Context, in EnqueueInput) (*model.OutboundMessage, error) {
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, service.Invalid("body", "body required")
	}

	channel := strings.ToLower(strings.TrimSpace(in.Channel))
	if channel == "" {
		channel = model.ChannelSMS
	}

	msg := &model.OutboundMessage{
		ID:        uuid.NewString(),
		Channel:   channel,
		Recipient: strings.TrimSpace(in.Recipient),
		Subject:   strings.TrimSpace(in.Subject),
		Body:      body,
		Status:    model.StatusQueued,
		CreatedAt: q.now().UTC(),
	}
	if leadID := strings.TrimSpace(in.LeadID); leadID != "" {
		msg.LeadID = &leadID
	}

	if err := q.store.CreateOutbound(ctx, msg); err != nil {
		return nil, err
	}

	q.metrics.OutboundEnqueued.WithLabelValues(channel).Inc()
	logrus.WithFields(logrus.Fields{
		"message_id": msg.ID,
		"channel":    channel,
	}).Debug("Outbound message queued")
	return msg, nil
}

// Run processes up to limit queued messages, oldest first. Only a failure to
// select the batch is returned; per-message failures are recorded on the row.
// Once selected, the batch runs to completion even if ctx is cancelled; the
// provider send timeout is the only bound on each message.
func (q *Queue) Run(ctx context.Context, limit int) (RunResult, error) {
	if limit <= 0 {
		limit = q.batchLimit
	}

	startTime := time.Now()
	defer func() { q.metrics.RunDuration.Observe(time.Since(startTime).Seconds()) }()

	msgs, err := q.store.ListQueued(ctx, limit)
	if err != nil {
		return RunResult{}, fmt.Errorf("failed to select queued messages: %w", err)
	}

	batchCtx := context.WithoutCancel(ctx)
	result := RunResult{QueuedFound: len(msgs)}
	for _, msg := range msgs {
		switch q.processOne(batchCtx, msg) {
		case model.StatusSent:
			result.Sent++
		case model.StatusFailed:
			result.Failed++
		}
	}

	logrus.WithFields(logrus.Fields{
		"queued_found": result.QueuedFound,
		"sent":         result.Sent,
		"failed":       result.Failed,
		"duration":     time.Since(startTime).String(),
	}).Info("Outbound run completed")
	return result, nil
}

// processOne moves msg to a terminal state and returns it, or "" if another
// run finalized the row first or the terminal write itself failed.
func (q *Queue) processOne(ctx context.Context, msg model.OutboundMessage) (status string) {
	defer func() {
		if rec := recover(); rec != nil {
			status = q.finishInternal(ctx, msg, fmt.Errorf("panic: %v", rec))
		}
	}()

	// Settings are re-read per message so a flag flipped mid-batch applies immediately.
	integ, err := q.store.GetIntegrations(ctx)
	if err != nil {
		return q.finishInternal(ctx, msg, err)
	}

	out := q.dispatcher.Dispatch(ctx, provider.Message{
		ID:        msg.ID,
		Channel:   msg.Channel,
		Recipient: msg.Recipient,
		Subject:   msg.Subject,
		Body:      msg.Body,
	}, *integ)

	if out.OK {
		return q.finish(ctx, msg, model.StatusSent, out.Provider, "")
	}

	reason := out.Error
	if reason == "" {
		reason = "failed"
	}
	return q.finish(ctx, msg, model.StatusFailed, out.Provider, reason)
}

func (q *Queue) finishInternal(ctx context.Context, msg model.OutboundMessage, cause error) string {
	logrus.WithFields(logrus.Fields{
		"message_id": msg.ID,
		"channel":    msg.Channel,
	}).Errorf("Failed to process outbound message: %v", cause)
	return q.finish(ctx, msg, model.StatusFailed, model.ProviderInternal, cause.Error())
}

func (q *Queue) finish(ctx context.Context, msg model.OutboundMessage, status, providerName, errMsg string) string {
	fields := logrus.Fields{
		"message_id": msg.ID,
		"channel":    msg.Channel,
		"provider":   providerName,
		"status":     status,
	}

	ok, err := q.store.FinishOutbound(ctx, msg.ID, status, providerName, errMsg, q.now().UTC())
	if err != nil {
		logrus.WithFields(fields).Errorf("Failed to record outbound outcome: %v", err)
		if status == model.StatusFailed && providerName == model.ProviderInternal {
			return ""
		}
		// The outcome could not be stored; record the store error instead.
		return q.finishInternal(ctx, msg, err)
	}
	if !ok {
		logrus.WithFields(fields).Warn("Outbound message already finalized by another run")
		return ""
	}

	q.metrics.OutboundProcessed.WithLabelValues(status, providerName).Inc()
	if status == model.StatusFailed {
		logrus.WithFields(fields).WithField("error", errMsg).Warn("Outbound message failed")
	} else {
		logrus.WithFields(fields).Info("Outbound message sent")
	}
	return status
}

// List pages through outbound messages newest first. It returns the page and
// limit actually applied after clamping.
func (q *Queue) List(ctx context.Context, status string, page, limit int) (msgs []model.OutboundMessage, total int64, appliedPage, appliedLimit int, err error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	msgs, total, err = q.store.ListOutbound(ctx, status, (page-1)*limit, limit)
	return msgs, total, page, limit, err
}
