package observability

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordCommandVerdict(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.RecordCommandVerdict("forbid")
	m.RecordCommandVerdict("forbid")
	m.RecordCommandVerdict("allow")

	expected := `
		# HELP guard_command_verdicts_total Total number of command classifier verdicts by kind
		# TYPE guard_command_verdicts_total counter
		guard_command_verdicts_total{verdict="allow"} 1
		guard_command_verdicts_total{verdict="forbid"} 2
	`
	if err := testutil.CollectAndCompare(m.CommandVerdicts, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metric value: %v", err)
	}
}

func TestApprovalStoredAndResolved(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.ApprovalStored()
	m.ApprovalStored()
	m.ApprovalResolved("consumed")

	if got := testutil.ToFloat64(m.ApprovalsPending); got != 1 {
		t.Errorf("ApprovalsPending = %v, want 1", got)
	}
	if count := testutil.CollectAndCount(m.ApprovalOutcomes); count != 1 {
		t.Errorf("expected 1 outcome label combination, got %d", count)
	}
}

func TestRecordRetryAndInjectionHit(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.RecordRetry("group", 1.5)
	m.RecordInjectionHit()

	if count := testutil.CollectAndCount(m.RateLimiterRetries); count != 1 {
		t.Errorf("expected 1 retry label combination, got %d", count)
	}
	if got := testutil.ToFloat64(m.InjectionHits); got != 1 {
		t.Errorf("InjectionHits = %v, want 1", got)
	}
}

func TestSetUserLockQueueDepth(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.SetUserLockQueueDepth(3)
	if got := testutil.ToFloat64(m.UserLockQueueDepth); got != 3 {
		t.Errorf("UserLockQueueDepth = %v, want 3", got)
	}
}
