// Package usage meters AI chat turns against the monthly distinct-lead cap.
package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	metricsPkg "rar-studio/internal/metrics"
	"rar-studio/internal/model"
)

// Store is the persistence the meter needs
type Store interface {
	CountUsedLeads(ctx context.Context, month string) (int64, error)
	IsLeadCounted(ctx context.Context, month, leadID string) (bool, error)
	RecordUsage(ctx context.Context, month, leadID string, at time.Time) error
	GetLimits(ctx context.Context) (*model.TenantLimits, error)
}

// Decision is the outcome of one admission check
type Decision struct {
	Admitted       bool
	AlreadyCounted bool
	Month          string
	Used           int64
	Cap            int
	Plan           string
}

// Usage is a point-in-time view of the current month's consumption
type Usage struct {
	Month string `json:"month"`
	Used  int64  `json:"used_leads"`
	Cap   int    `json:"lead_cap"`
	Plan  string `json:"plan"`
}

// Meter counts distinct leads engaged per calendar month.
//
// The check in CheckAndAdmit and the insert in RecordUsage are separate store
// calls. Two first contacts racing for the last slot can both be admitted, so
// the cap may be overshot by the number of concurrent first contacts. The
// (month, lead) primary key still guarantees one event per lead.
type Meter struct {
	store   Store
	metrics *metricsPkg.Metrics
	now     func() time.Time
}

// NewMeter creates a meter reading the wall clock
func NewMeter(store Store, metrics *metricsPkg.Metrics) *Meter {
	return &Meter{
		store:   store,
		metrics: metrics,
		now:     time.Now,
	}
}

// WithClock replaces the time source used to derive the month
func (m *Meter) WithClock(now func() time.Time) *Meter {
	m.now = now
	return m
}

// CurrentMonth returns the month key for the meter's clock
func (m *Meter) CurrentMonth() string {
	return model.MonthKey(m.now())
}

func (m *Meter) CountUsed(ctx context.Context, month string) (int64, error) {
	return m.store.CountUsedLeads(ctx, month)
}

func (m *Meter) IsCounted(ctx context.Context, month, leadID string) (bool, error) {
	return m.store.IsLeadCounted(ctx, month, leadID)
}

// RecordUsage consumes a slot for lead in month. Repeated calls are no-ops.
func (m *Meter) RecordUsage(ctx context.Context, month, leadID string) error {
	return m.store.RecordUsage(ctx, month, leadID, m.now().UTC())
}

// CheckAndAdmit admits a lead already counted this month, or any lead while the month is under cap
func (m *Meter) CheckAndAdmit(ctx context.Context, month, leadID string, cap int) (bool, error) {
	_, _, admitted, err := m.check(ctx, month, leadID, cap)
	return admitted, err
}

func (m *Meter) check(ctx context.Context, month, leadID string, cap int) (counted bool, used int64, admitted bool, err error) {
	counted, err = m.IsCounted(ctx, month, leadID)
	if err != nil {
		return false, 0, false, err
	}

	used, err = m.CountUsed(ctx, month)
	if err != nil {
		return false, 0, false, err
	}
	return counted, used, counted || used < int64(cap), nil
}

// Admit checks the current month against freshly read limits and records the
// slot before returning an admitted decision.
func (m *Meter) Admit(ctx context.Context, leadID string) (Decision, error) {
	limits, err := m.store.GetLimits(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to read limits: %w", err)
	}

	month := m.CurrentMonth()
	decision := Decision{Month: month, Cap: limits.LeadCap, Plan: limits.Plan}

	decision.AlreadyCounted, decision.Used, decision.Admitted, err = m.check(ctx, month, leadID, limits.LeadCap)
	if err != nil {
		return Decision{}, err
	}

	if !decision.Admitted {
		m.metrics.UsageAdmissions.WithLabelValues("rejected").Inc()
		logrus.WithFields(logrus.Fields{
			"lead_id":  leadID,
			"month":    month,
			"used":     decision.Used,
			"lead_cap": limits.LeadCap,
		}).Info("Lead rejected by monthly cap")
		return decision, nil
	}

	if decision.AlreadyCounted {
		m.metrics.UsageAdmissions.WithLabelValues("counted").Inc()
		return decision, nil
	}

	if err := m.RecordUsage(ctx, month, leadID); err != nil {
		return Decision{}, err
	}
	decision.Used++
	m.metrics.UsageAdmissions.WithLabelValues("admitted").Inc()
	return decision, nil
}

// Snapshot reports the current month's usage against freshly read limits
func (m *Meter) Snapshot(ctx context.Context) (Usage, error) {
	limits, err := m.store.GetLimits(ctx)
	if err != nil {
		return Usage{}, fmt.Errorf("failed to read limits: %w", err)
	}

	month := m.CurrentMonth()
	used, err := m.CountUsed(ctx, month)
	if err != nil {
		return Usage{}, err
	}
	return Usage{Month: month, Used: used, Cap: limits.LeadCap, Plan: limits.Plan}, nil
}
