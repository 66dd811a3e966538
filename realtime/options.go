package realtime

import (
	"log/slog"

	"github.com/comalice/motionchart"
	"github.com/comalice/motionchart/internal/metrics"
)

// Option configures a Controller.
type Option func(*Controller)

// WithPlanner uses p for every graph. Without it the controller creates a
// sampling planner per graph.
func WithPlanner(p motionchart.Planner) Option {
	return func(c *Controller) {
		c.plannerFor = func(motionchart.TransitionGraph) motionchart.Planner { return p }
	}
}

// WithPlannerFactory builds the planner for each graph the controller plays,
// including graphs installed by SetGraph.
func WithPlannerFactory(f func(motionchart.TransitionGraph) motionchart.Planner) Option {
	return func(c *Controller) {
		c.plannerFor = f
	}
}

// WithSink receives every emitted pose.
func WithSink(s motionchart.Sink) Option {
	return func(c *Controller) {
		c.sink = s
	}
}

// WithPolicy replaces the default distance based transition policy.
func WithPolicy(p motionchart.TransitionPolicy) Option {
	return func(c *Controller) {
		c.policy = p
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

func WithMetrics(m *metrics.Collector) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithPublisher is notified of every state change. Publish is called with
// the controller mutex held and must not block.
func WithPublisher(p motionchart.Publisher) Option {
	return func(c *Controller) {
		c.publisher = p
	}
}
