package testutil

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/comalice/motionchart"
)

// FakePlanner pushes Entries fixed-length hold states per plan, Delay apart,
// and tracks how many workers run at once. Segments are delegated to Graph
// when set.
type FakePlanner struct {
	Graph    motionchart.TransitionGraph
	Entries  int
	Frames   int
	Delay    time.Duration
	Node     motionchart.NodeID
	SegErr   error
	PlanErr  error // returned once every entry was pushed
	live     atomic.Int32
	maxLive  atomic.Int32
	started  atomic.Int32
	pushed   atomic.Int32
	rejected atomic.Int32
}

func (p *FakePlanner) GenerateMotionStates(ctx context.Context, req motionchart.PlanRequest, out motionchart.EntryWriter) error {
	n := p.live.Add(1)
	defer p.live.Add(-1)
	p.started.Add(1)
	for {
		m := p.maxLive.Load()
		if n <= m || p.maxLive.CompareAndSwap(m, n) {
			break
		}
	}

	frames := max(p.Frames, 1)
	for i := 0; i < p.Entries; i++ {
		if p.Delay > 0 {
			t := time.NewTimer(p.Delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		st := motionchart.HoldState(motionchart.Pose{}, frames, req.DT)
		if !out.Push(motionchart.Entry{Node: p.Node, Type: motionchart.NodeSingle, State: st, Plan: req.ID}) {
			p.rejected.Add(1)
			return errors.New("superseded")
		}
		p.pushed.Add(1)
	}
	return p.PlanErr
}

func (p *FakePlanner) GenerateSegment(ctx context.Context, req motionchart.SegmentRequest) (motionchart.Frames, error) {
	if p.SegErr != nil {
		return nil, p.SegErr
	}
	if p.Graph != nil {
		return p.Graph.Sample(req.Node)
	}
	return motionchart.Frames{{}, {}}, nil
}

func (p *FakePlanner) Live() int     { return int(p.live.Load()) }
func (p *FakePlanner) MaxLive() int  { return int(p.maxLive.Load()) }
func (p *FakePlanner) Started() int  { return int(p.started.Load()) }
func (p *FakePlanner) Pushed() int   { return int(p.pushed.Load()) }
func (p *FakePlanner) Rejected() int { return int(p.rejected.Load()) }

// StallingPlanner never produces an entry. Its workers block until
// cancelled. Segments come from Graph.
type StallingPlanner struct {
	Graph   motionchart.TransitionGraph
	running atomic.Int32
}

func (p *StallingPlanner) GenerateMotionStates(ctx context.Context, _ motionchart.PlanRequest, _ motionchart.EntryWriter) error {
	p.running.Add(1)
	defer p.running.Add(-1)
	<-ctx.Done()
	return ctx.Err()
}

func (p *StallingPlanner) GenerateSegment(_ context.Context, req motionchart.SegmentRequest) (motionchart.Frames, error) {
	return p.Graph.Sample(req.Node)
}

// Running returns the number of blocked workers.
func (p *StallingPlanner) Running() int { return int(p.running.Load()) }

// RecordingSink stores every pose it receives.
type RecordingSink struct {
	mu    sync.Mutex
	poses []motionchart.Pose
	Err   error
}

func (s *RecordingSink) UpdateTransformation(p motionchart.Pose) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.poses = append(s.poses, p.Clone())
	return s.Err
}

func (s *RecordingSink) Poses() []motionchart.Pose {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]motionchart.Pose(nil), s.poses...)
}

func (s *RecordingSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.poses)
}

// RecordingPublisher stores transition events.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []motionchart.TransitionEvent
}

func (p *RecordingPublisher) Publish(_ context.Context, ev motionchart.TransitionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *RecordingPublisher) Events() []motionchart.TransitionEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]motionchart.TransitionEvent(nil), p.events...)
}

// Visited returns the To node of every event, in order.
func (p *RecordingPublisher) Visited() []motionchart.NodeID {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]motionchart.NodeID, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.To
	}
	return out
}
