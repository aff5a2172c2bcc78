package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects Prometheus series for the guard's decision points:
// classifier verdicts, path-guard verdicts, approval-store occupancy,
// rate-limiter retries, and injection-filter hits. Grounded on the
// teacher's internal/observability.Metrics (CounterVec/GaugeVec/
// HistogramVec fields built with label sets, one constructor
// registering everything at startup).
type Metrics struct {
	// CommandVerdicts counts classifier decisions.
	// Labels: verdict (allow|dangerous|forbidden)
	CommandVerdicts *prometheus.CounterVec

	// PathVerdicts counts path-guard decisions.
	// Labels: op (read|write|list), verdict (allow|blocked)
	PathVerdicts *prometheus.CounterVec

	// ApprovalsPending gauges the number of outstanding approvals.
	ApprovalsPending prometheus.Gauge

	// ApprovalOutcomes counts how pending approvals are resolved.
	// Labels: outcome (consumed|expired|canceled)
	ApprovalOutcomes *prometheus.CounterVec

	// RateLimiterRetries counts provider-signaled retry-afters honored
	// by the outbound sender.
	// Labels: scope (global|group)
	RateLimiterRetries *prometheus.CounterVec

	// RateLimiterWait measures how long Send spent sleeping for
	// pacing or retry-after before dispatching, in seconds.
	RateLimiterWait prometheus.Histogram

	// InjectionHits counts prompt-injection filter rejections.
	InjectionHits prometheus.Counter

	// UserLockQueueDepth gauges the number of turns currently queued
	// behind a per-user serializer lock.
	UserLockQueueDepth prometheus.Gauge
}

// NewMetrics builds and registers Metrics against reg. Passing a
// fresh *prometheus.Registry (rather than the global default) keeps
// repeated construction in tests from panicking on duplicate
// registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CommandVerdicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guard_command_verdicts_total",
				Help: "Total number of command classifier verdicts by kind",
			},
			[]string{"verdict"},
		),
		PathVerdicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guard_path_verdicts_total",
				Help: "Total number of path guard verdicts by operation and kind",
			},
			[]string{"op", "verdict"},
		),
		ApprovalsPending: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "guard_approvals_pending",
				Help: "Current number of approvals awaiting a decision",
			},
		),
		ApprovalOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guard_approval_outcomes_total",
				Help: "Total number of pending approvals resolved by outcome",
			},
			[]string{"outcome"},
		),
		RateLimiterRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guard_ratelimiter_retries_total",
				Help: "Total number of retry-after waits honored by the outbound sender",
			},
			[]string{"scope"},
		),
		RateLimiterWait: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "guard_ratelimiter_wait_seconds",
				Help:    "Time spent waiting for pacing or retry-after before send",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
		),
		InjectionHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "guard_injection_hits_total",
				Help: "Total number of prompt injection filter rejections",
			},
		),
		UserLockQueueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "guard_userlock_queue_depth",
				Help: "Current number of turns queued behind per-user serializer locks",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(
			m.CommandVerdicts,
			m.PathVerdicts,
			m.ApprovalsPending,
			m.ApprovalOutcomes,
			m.RateLimiterRetries,
			m.RateLimiterWait,
			m.InjectionHits,
			m.UserLockQueueDepth,
		)
	}
	return m
}

// RecordCommandVerdict increments the counter for a classifier
// decision kind ("allow", "dangerous", "forbidden").
func (m *Metrics) RecordCommandVerdict(kind string) {
	m.CommandVerdicts.WithLabelValues(kind).Inc()
}

// RecordPathVerdict increments the counter for a path guard decision.
func (m *Metrics) RecordPathVerdict(op, kind string) {
	m.PathVerdicts.WithLabelValues(op, kind).Inc()
}

// ApprovalStored increments the pending-approvals gauge.
func (m *Metrics) ApprovalStored() {
	m.ApprovalsPending.Inc()
}

// ApprovalResolved decrements the pending-approvals gauge and records
// the resolution outcome ("consumed", "expired", "canceled").
func (m *Metrics) ApprovalResolved(outcome string) {
	m.ApprovalsPending.Dec()
	m.ApprovalOutcomes.WithLabelValues(outcome).Inc()
}

// RecordRetry records a provider retry-after wait for scope ("global"
// or "group") and the number of seconds waited.
func (m *Metrics) RecordRetry(scope string, waitSeconds float64) {
	m.RateLimiterRetries.WithLabelValues(scope).Inc()
	m.RateLimiterWait.Observe(waitSeconds)
}

// RecordInjectionHit increments the injection-filter hit counter.
func (m *Metrics) RecordInjectionHit() {
	m.InjectionHits.Inc()
}

// SetUserLockQueueDepth sets the current queue-depth gauge.
func (m *Metrics) SetUserLockQueueDepth(depth int) {
	m.UserLockQueueDepth.Set(float64(depth))
}
