// Package metrics exposes Prometheus instruments for queue mutations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"podqueue/internal/queue"
)

// Metrics groups the queue instruments. Build one with New and pass it to
// queue.WithObserver.
type Metrics struct {
	Mutations    *prometheus.CounterVec
	ShiftedRows  prometheus.Counter
	Failures     *prometheus.CounterVec
	MutationTime prometheus.Histogram
	QueueLength  prometheus.Gauge
	Dropped      prometheus.Counter
}

// New registers every instrument with reg. Tests pass a fresh
// prometheus.NewRegistry so registrations never collide.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "podqueue",
			Name:      "queue_mutations_total",
			Help:      "Committed queue position changes by mutation kind.",
		}, []string{"kind"}),
		ShiftedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "podqueue",
			Name:      "queue_shifted_rows_total",
			Help:      "Episodes whose position moved by one as a side effect of a mutation.",
		}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "podqueue",
			Name:      "queue_mutation_failures_total",
			Help:      "Failed queue position changes by error kind.",
		}, []string{"kind"}),
		MutationTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "podqueue",
			Name:      "queue_mutation_seconds",
			Help:      "Time from lock acquisition to commit for queue mutations.",
			Buckets:   prometheus.DefBuckets,
		}),
		QueueLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "podqueue",
			Name:      "queue_length",
			Help:      "Number of queued episodes at the last refresh.",
		}),
		Dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "podqueue",
			Name:      "change_notifications_dropped_total",
			Help:      "Change notifications skipped because a subscriber was not keeping up.",
		}),
	}

	reg.MustRegister(
		m.Mutations,
		m.ShiftedRows,
		m.Failures,
		m.MutationTime,
		m.QueueLength,
		m.Dropped,
	)
	return m
}

// PositionChanged implements queue.Observer.
func (m *Metrics) PositionChanged(kind queue.Mutation, shifted int64, elapsed time.Duration) {
	m.Mutations.WithLabelValues(string(kind)).Inc()
	if shifted > 0 {
		m.ShiftedRows.Add(float64(shifted))
	}
	m.MutationTime.Observe(elapsed.Seconds())
}

// PositionFailed implements queue.Observer.
func (m *Metrics) PositionFailed(err error) {
	m.Failures.WithLabelValues(queue.KindOf(err)).Inc()
}

// SetQueueLength records the current queue length.
func (m *Metrics) SetQueueLength(n int) {
	m.QueueLength.Set(float64(n))
}

// AddDropped records notifications a broadcaster could not deliver.
func (m *Metrics) AddDropped(n uint64) {
	if n > 0 {
		m.Dropped.Add(float64(n))
	}
}
