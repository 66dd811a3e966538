// Package metrics exposes scheduler counters through Prometheus.
//
// A nil *Collector is valid and records nothing, so components can take an
// optional collector without nil checks at every call site.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "motionchart"

// Collector groups the scheduler's metrics.
type Collector struct {
	ticks        prometheus.Counter
	transitions  *prometheus.CounterVec
	queuePolls   *prometheus.CounterVec
	starvations  prometheus.Counter
	fallbacks    *prometheus.CounterVec
	plansStarted prometheus.Counter
	planWorkers  prometheus.Gauge
	planDuration prometheus.Histogram
	sinkErrors   prometheus.Counter
	collisions   prometheus.Counter
	actions      *prometheus.CounterVec
}

// New creates a Collector registered with reg. A nil reg creates
// unregistered metrics.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		ticks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Number of controller updates.",
		}),
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "State changes by how the next state was obtained.",
		}, []string{"source"}),
		queuePolls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queue_polls_total",
			Help:      "State queue polls by result.",
		}, []string{"result"}),
		starvations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "starvations_total",
			Help:      "Idle states synthesized because the planner was not ready.",
		}),
		fallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Controlled transitions rerouted to the idle node.",
		}, []string{"reason"}),
		plansStarted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_started_total",
			Help:      "Background plans spawned.",
		}),
		planWorkers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "plan_workers",
			Help:      "Live planner workers (0 or 1).",
		}),
		planDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_duration_seconds",
			Help:      "Wall time of background plans.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		}),
		sinkErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_errors_total",
			Help:      "Poses the visualization sink failed to accept.",
		}),
		collisions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collisions_total",
			Help:      "Collision interrupts handled.",
		}),
		actions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "action_requests_total",
			Help:      "Action requests by outcome.",
		}, []string{"result"}),
	}
}

func (c *Collector) Tick() {
	if c == nil {
		return
	}
	c.ticks.Inc()
}

func (c *Collector) Transition(source string) {
	if c == nil {
		return
	}
	c.transitions.WithLabelValues(source).Inc()
}

// QueuePoll records one poll; hit reports whether an entry was returned.
func (c *Collector) QueuePoll(hit bool) {
	if c == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.queuePolls.WithLabelValues(result).Inc()
}

func (c *Collector) Starvation() {
	if c == nil {
		return
	}
	c.starvations.Inc()
}

func (c *Collector) Fallback(reason string) {
	if c == nil {
		return
	}
	c.fallbacks.WithLabelValues(reason).Inc()
}

// PlanStarted counts a spawned worker and raises the live gauge.
func (c *Collector) PlanStarted() {
	if c == nil {
		return
	}
	c.plansStarted.Inc()
	c.planWorkers.Inc()
}

// PlanFinished lowers the live gauge and observes the plan's duration.
func (c *Collector) PlanFinished(d time.Duration) {
	if c == nil {
		return
	}
	c.planWorkers.Dec()
	c.planDuration.Observe(d.Seconds())
}

func (c *Collector) SinkError() {
	if c == nil {
		return
	}
	c.sinkErrors.Inc()
}

func (c *Collector) Collision() {
	if c == nil {
		return
	}
	c.collisions.Inc()
}

// ActionRequest records an action request outcome.
func (c *Collector) ActionRequest(accepted bool) {
	if c == nil {
		return
	}
	result := "rejected"
	if accepted {
		result = "accepted"
	}
	c.actions.WithLabelValues(result).Inc()
}
