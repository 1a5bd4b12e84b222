// Package metrics exports validation passes to Prometheus.
//
// Metrics:
//   - grape_validation_passes_total: finished passes by result (passed, failed)
//   - grape_validation_failures_total: recorded messages by rule
//   - grape_validation_duration_seconds: pass duration (histogram)
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/reoring/grape"
)

const namespace = "grape"

// Observer records every pass it is handed through grape.WithObserver.
// It is safe for concurrent passes.
type Observer struct {
	passes   *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewObserver creates the collectors and registers them with reg.
func NewObserver(reg prometheus.Registerer) (*Observer, error) {
	o := &Observer{
		passes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "validation",
				Name:      "passes_total",
				Help:      "Finished validation passes by result",
			},
			[]string{"result"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "validation",
				Name:      "failures_total",
				Help:      "Recorded validation failures by rule",
			},
			[]string{"rule"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "validation",
				Name:      "duration_seconds",
				Help:      "Duration of validation passes",
				// 10µs to ~1s
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 9),
			},
		),
	}
	for _, c := range []prometheus.Collector{o.passes, o.failures, o.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// MustObserver is NewObserver that panics on a registration error.
func MustObserver(reg prometheus.Registerer) *Observer {
	o, err := NewObserver(reg)
	if err != nil {
		panic(err)
	}
	return o
}

// ObservePass implements grape.Observer.
func (o *Observer) ObservePass(r *grape.Result, elapsed time.Duration) {
	result := "passed"
	if r.Failed() {
		result = "failed"
	}
	o.passes.WithLabelValues(result).Inc()
	for _, m := range r.Messages() {
		o.failures.WithLabelValues(m.Rule).Inc()
	}
	o.duration.Observe(elapsed.Seconds())
}

var _ grape.Observer = (*Observer)(nil)
