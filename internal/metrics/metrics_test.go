package metrics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"podqueue/internal/metrics"
	"podqueue/internal/queue"
	"podqueue/internal/testsupport"
)

func TestObserverRecordsMutations(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.PositionChanged(queue.MutationMoveToHead, 3, 2*time.Millisecond)
	m.PositionChanged(queue.MutationInsert, 0, time.Millisecond)
	m.PositionChanged(queue.MutationInsert, 0, time.Millisecond)
	m.PositionFailed(&queue.NotFoundError{ID: 9})
	m.PositionFailed(errors.New("boom"))
	m.SetQueueLength(4)
	m.AddDropped(2)

	values := gather(t, reg)
	expect := map[string]float64{
		"podqueue_queue_mutations_total{kind=insert}":            2,
		"podqueue_queue_mutations_total{kind=move_toward_head}":  1,
		"podqueue_queue_shifted_rows_total":                      3,
		"podqueue_queue_mutation_failures_total{kind=not_found}": 1,
		"podqueue_queue_mutation_failures_total{kind=internal}":  1,
		"podqueue_queue_length":                                  4,
		"podqueue_change_notifications_dropped_total":            2,
		"podqueue_queue_mutation_seconds_count":                  3,
	}
	for key, want := range expect {
		got, ok := values[key]
		if !ok {
			t.Fatalf("metric %s not gathered; have %v", key, values)
		}
		if got != want {
			t.Fatalf("metric %s = %v, want %v", key, got, want)
		}
	}
}

func TestOrdererReportsToMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	orderer := testsupport.NewOrderer(t, cfg, store, queue.WithObserver(m))
	ids := testsupport.SeedQueue(t, store, orderer, "A", "B", "C")

	ctx := context.Background()
	if err := orderer.MoveTo(ctx, ids["C"], 0); err != nil {
		t.Fatalf("MoveTo failed: %v", err)
	}
	if err := orderer.RemoveFromQueue(ctx, 404); err == nil {
		t.Fatal("expected not found error")
	}

	values := gather(t, reg)
	if got := values["podqueue_queue_mutations_total{kind=insert}"]; got != 3 {
		t.Fatalf("expected 3 inserts, got %v", got)
	}
	if got := values["podqueue_queue_mutations_total{kind=move_toward_head}"]; got != 1 {
		t.Fatalf("expected 1 move, got %v", got)
	}
	if got := values["podqueue_queue_shifted_rows_total"]; got != 2 {
		t.Fatalf("expected 2 shifted rows, got %v", got)
	}
	if got := values["podqueue_queue_mutation_failures_total{kind=not_found}"]; got != 1 {
		t.Fatalf("expected 1 not_found failure, got %v", got)
	}
}

func gather(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	out := make(map[string]float64)
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			key := family.GetName()
			for _, label := range metric.GetLabel() {
				key += "{" + label.GetName() + "=" + label.GetValue() + "}"
			}
			switch {
			case metric.GetCounter() != nil:
				out[key] = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				out[key] = metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				out[key+"_count"] = float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}
	return out
}
