// Package planner provides the reference motionchart.Planner: it realizes an
// action sequence by sampling each node of the actions' graph walks and
// aligning every segment with the poses planned before it.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/comalice/motionchart"
	"github.com/comalice/motionchart/internal/align"
)

// ErrSuperseded is returned when the queue refuses an entry because a newer
// plan has replaced this one.
var ErrSuperseded = errors.New("plan superseded")

// Sampler plans by sampling graph nodes in sequence.
type Sampler struct {
	graph       motionchart.TransitionGraph
	frameTime   float64
	stepDelay   time.Duration
	historySize int
	logger      *slog.Logger
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithFrameTime sets the frame time of produced motion states.
func WithFrameTime(ft float64) Option {
	return func(s *Sampler) { s.frameTime = ft }
}

// WithStepDelay makes every planned segment cost at least d. It simulates
// an expensive optimizer and is honoured cooperatively.
func WithStepDelay(d time.Duration) Option {
	return func(s *Sampler) { s.stepDelay = d }
}

// WithHistorySize bounds the pose history carried between planned segments.
func WithHistorySize(n int) Option {
	return func(s *Sampler) { s.historySize = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Sampler) { s.logger = l }
}

// New creates a Sampler over graph.
func New(graph motionchart.TransitionGraph, opts ...Option) *Sampler {
	s := &Sampler{
		graph:       graph,
		frameTime:   motionchart.DefaultFrameTime,
		historySize: 20,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateMotionStates walks every requested action's node sequence and
// pushes one entry per node. It checks ctx between segments.
func (s *Sampler) GenerateMotionStates(ctx context.Context, req motionchart.PlanRequest, out motionchart.EntryWriter) error {
	history := append([]motionchart.Pose(nil), req.Poses...)
	frameTime := s.frameTime
	if req.DT > 0 {
		frameTime = req.DT
	}

	for _, action := range req.Actions {
		info, ok := s.graph.Action(action.Action)
		if !ok {
			return fmt.Errorf("plan %s: action %q: %w", req.ID, action.Action, motionchart.ErrUnknownAction)
		}
		for i, step := range info.Sequence {
			if err := ctx.Err(); err != nil {
				return err
			}

			var constraint motionchart.Constraint
			if i == len(info.Sequence)-1 {
				constraint = action.Constraint
			}
			frames, err := s.sample(step.Node, constraint)
			if err != nil {
				return fmt.Errorf("plan %s: %w", req.ID, err)
			}
			frames = align.Segment(history, frames)

			state, err := motionchart.NewMotionState(frames, frameTime)
			if err != nil {
				return fmt.Errorf("plan %s: node %s: %w", req.ID, step.Node, err)
			}
			entry := motionchart.Entry{
				Node:  step.Node,
				Type:  step.Type,
				State: state,
				Poses: append([]motionchart.Pose(nil), history...),
				Plan:  req.ID,
			}
			if !out.Push(entry) {
				return ErrSuperseded
			}
			s.logger.Debug("planned segment", "plan", req.ID, "node", step.Node.String(), "frames", len(frames))

			history = s.trim(append(history, frames...))
			if err := s.wait(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// GenerateSegment samples one node, back projecting when the constraint
// carries explicit parameters.
func (s *Sampler) GenerateSegment(ctx context.Context, req motionchart.SegmentRequest) (motionchart.Frames, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.sample(req.Node, req.Constraint)
}

func (s *Sampler) sample(node motionchart.NodeID, c motionchart.Constraint) (motionchart.Frames, error) {
	if c.Set && len(c.Params) > 0 {
		return s.graph.BackProject(node, c.Params)
	}
	return s.graph.Sample(node)
}

func (s *Sampler) trim(history []motionchart.Pose) []motionchart.Pose {
	if s.historySize > 0 && len(history) > s.historySize {
		history = append([]motionchart.Pose(nil), history[len(history)-s.historySize:]...)
	}
	return history
}

func (s *Sampler) wait(ctx context.Context) error {
	if s.stepDelay <= 0 {
		return nil
	}
	t := time.NewTimer(s.stepDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
