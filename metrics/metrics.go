// Package metrics exports regeneration statistics to Prometheus.
package metrics

import (
	"time"

	"git.sr.ht/~gioverse/listbench/regen"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "listbench"

// Regen implements regen.Observer with Prometheus collectors.
type Regen struct {
	requested  prometheus.Counter
	finished   *prometheus.CounterVec
	pending    prometheus.Gauge
	generation prometheus.Histogram
	count      prometheus.Gauge
}

var _ regen.Observer = (*Regen)(nil)

// NewRegen allocates the collectors. Register them with Register.
func NewRegen() *Regen {
	return &Regen{
		requested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "regen",
			Name:      "requests_total",
			Help:      "Total number of regeneration requests",
		}),
		finished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "regen",
				Name:      "tasks_total",
				Help:      "Finished regeneration tasks by terminal state",
			},
			[]string{"state"},
		),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "regen",
			Name:      "unfinished_tasks",
			Help:      "Regeneration tasks that have not reached a terminal state",
		}),
		generation: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "regen",
			Name:      "generation_duration_seconds",
			Help:      "Time spent generating item lists",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		count: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "regen",
			Name:      "requested_count",
			Help:      "Most recently requested item count",
		}),
	}
}

// Register adds the collectors to reg.
func (m *Regen) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.requested, m.finished, m.pending, m.generation, m.count} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Requested implements regen.Observer.
func (m *Regen) Requested(count int) {
	m.requested.Inc()
	m.pending.Inc()
	m.count.Set(float64(count))
}

// Finished implements regen.Observer.
func (m *Regen) Finished(state regen.State, generation time.Duration) {
	m.pending.Dec()
	m.finished.WithLabelValues(state.String()).Inc()
	if generation > 0 {
		m.generation.Observe(generation.Seconds())
	}
}
