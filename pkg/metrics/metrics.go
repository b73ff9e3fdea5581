// Package metrics instruments schedule generation with Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/justinleeeeeeeeeee/DUTYPLANNER/pkg/models"
)

// Run outcomes
const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// Metrics collects schedule generation counters. A nil *Metrics discards everything.
type Metrics struct {
	runs     *prometheus.CounterVec
	slots    *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewPrometheus registers the collectors with reg (prometheus.DefaultRegisterer
// if nil) under namespace ("dutyplanner" if empty).
func NewPrometheus(reg prometheus.Registerer, namespace string) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "dutyplanner"
	}

	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "schedule",
			Name:      "runs_total",
			Help:      "Schedule generation requests by outcome.",
		}, []string{"result"}),
		slots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "schedule",
			Name:      "slots_total",
			Help:      "Generated duty slots by slot kind and whether a person was found.",
		}, []string{"slot", "result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "schedule",
			Name:      "generation_seconds",
			Help:      "Time spent generating one month.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
	}
	reg.MustRegister(m.runs, m.slots, m.duration)
	return m
}

// ObserveRun records a successful generation
func (m *Metrics) ObserveRun(month models.ScheduleMonth, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(ResultOK).Inc()
	m.duration.Observe(elapsed.Seconds())

	for _, day := range month {
		for _, kind := range models.SlotOrder {
			result := "filled"
			if day.Slot(kind) == "" {
				result = "unfilled"
			}
			m.slots.WithLabelValues(kind.String(), result).Inc()
		}
	}
}

// ObserveFailure records a generation that did not produce a month
func (m *Metrics) ObserveFailure(result string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(result).Inc()
}
