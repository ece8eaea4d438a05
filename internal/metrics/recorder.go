// Package metrics exposes chronod's Prometheus instrumentation, modeled
// on inful-docbuilder's internal/metrics.PrometheusRecorder: a
// sync.Once-guarded constructor registering a small, fixed set of
// vectors, with nil-receiver methods so an unconfigured Recorder is a
// safe no-op.
package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/cronforge/chronod/internal/jobdriver"
)

// Recorder is the metrics surface a JobDriver reports through. It
// satisfies jobdriver.MetricsRecorder.
type Recorder struct {
	once            sync.Once
	runsTotal       *prom.CounterVec
	busy            *prom.GaugeVec
	schedulingDelay *prom.HistogramVec
}

// NewRecorder constructs and registers chronod's Prometheus metrics
// against reg (a fresh prom.NewRegistry() if reg is nil). Registration
// is idempotent per Recorder instance.
func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &Recorder{}
	r.once.Do(func() {
		r.runsTotal = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "chronod",
			Name:      "runs_total",
			Help:      "Total job driver ticks by outcome",
		}, []string{"job", "outcome"})
		r.busy = prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "chronod",
			Name:      "busy",
			Help:      "1 while a job's callback is executing, 0 otherwise",
		}, []string{"job"})
		r.schedulingDelay = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "chronod",
			Name:      "scheduling_delay_seconds",
			Help:      "Actual fire time minus scheduled time",
			Buckets:   prom.DefBuckets,
		}, []string{"job"})
		reg.MustRegister(r.runsTotal, r.busy, r.schedulingDelay)
	})
	return r
}

// ObserveRun records one tick's outcome and scheduling delay.
func (r *Recorder) ObserveRun(job string, outcome jobdriver.Outcome, schedulingDelay time.Duration) {
	if r == nil || r.runsTotal == nil {
		return
	}
	r.runsTotal.WithLabelValues(job, string(outcome)).Inc()
	if schedulingDelay >= 0 {
		r.schedulingDelay.WithLabelValues(job).Observe(schedulingDelay.Seconds())
	}
}

// SetBusy reports whether job's callback is currently executing.
func (r *Recorder) SetBusy(job string, busy bool) {
	if r == nil || r.busy == nil {
		return
	}
	v := 0.0
	if busy {
		v = 1.0
	}
	r.busy.WithLabelValues(job).Set(v)
}
