package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	OutboundEnqueued  *prometheus.CounterVec
	OutboundProcessed *prometheus.CounterVec
	RunDuration       prometheus.Histogram
	UsageAdmissions   *prometheus.CounterVec
	ChatTurns         prometheus.Counter
}

// NewMetrics registers the studio metrics on reg. Tests pass a fresh registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		OutboundEnqueued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_outbound_enqueued_total",
			Help: "Total number of outbound messages queued",
		}, []string{"channel"}),
		OutboundProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_outbound_processed_total",
			Help: "Total number of outbound messages moved to a terminal state",
		}, []string{"status", "provider"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "studio_outbound_run_duration_seconds",
			Help:    "Time spent processing one outbound batch",
			Buckets: prometheus.DefBuckets,
		}),
		UsageAdmissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_usage_admissions_total",
			Help: "Usage meter decisions by result",
		}, []string{"result"}),
		ChatTurns: factory.NewCounter(prometheus.CounterOpts{
			Name: "studio_chat_turns_total",
			Help: "Total number of completed salesperson chat turns",
		}),
	}
}

// NewNop returns metrics bound to a private registry that is never scraped
func NewNop() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
