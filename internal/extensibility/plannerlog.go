package extensibility

import (
	"context"
	"log/slog"
	"time"

	"github.com/comalice/motionchart"
)

// LoggingPlanner wraps a Planner and logs around every call.
type LoggingPlanner struct {
	inner  motionchart.Planner
	logger *slog.Logger
}

// NewLoggingPlanner wraps inner. A nil logger uses slog.Default.
func NewLoggingPlanner(inner motionchart.Planner, logger *slog.Logger) *LoggingPlanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingPlanner{inner: inner, logger: logger}
}

func (p *LoggingPlanner) GenerateMotionStates(ctx context.Context, req motionchart.PlanRequest, out motionchart.EntryWriter) error {
	p.logger.Debug("planning", "plan", req.ID.String(), "actions", len(req.Actions), "start", req.Start.String())
	start := time.Now()
	cw := &countingWriter{inner: out}
	err := p.inner.GenerateMotionStates(ctx, req, cw)
	p.logger.Debug("planned",
		"plan", req.ID.String(),
		"entries", cw.n,
		"elapsed", time.Since(start),
		"error", err,
	)
	return err
}

func (p *LoggingPlanner) GenerateSegment(ctx context.Context, req motionchart.SegmentRequest) (motionchart.Frames, error) {
	start := time.Now()
	frames, err := p.inner.GenerateSegment(ctx, req)
	p.logger.Debug("segment",
		"node", req.Node.String(),
		"frames", len(frames),
		"elapsed", time.Since(start),
		"error", err,
	)
	return frames, err
}

type countingWriter struct {
	inner motionchart.EntryWriter
	n     int
}

func (w *countingWriter) Push(e motionchart.Entry) bool {
	ok := w.inner.Push(e)
	if ok {
		w.n++
	}
	return ok
}
