package realtime

import (
	"context"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/comalice/motionchart"
	"github.com/comalice/motionchart/internal/align"
)

// NodeQueue is the FIFO of explicit transitions requested by actions. It is
// owned by the controller and guarded by its mutex.
type NodeQueue []motionchart.QueuedNode

func (q *NodeQueue) Push(steps ...motionchart.QueuedNode) {
	*q = append(*q, steps...)
}

func (q *NodeQueue) Pop() (motionchart.QueuedNode, bool) {
	if len(*q) == 0 {
		return motionchart.QueuedNode{}, false
	}
	step := (*q)[0]
	*q = (*q)[1:]
	return step, true
}

func (q NodeQueue) Len() int { return len(q) }

func (q *NodeQueue) Clear() { *q = nil }

// SelectReason says which rule chose the next node.
type SelectReason int

const (
	SelectExplicit SelectReason = iota
	SelectGraph
	SelectFallback
)

func (r SelectReason) String() string {
	switch r {
	case SelectExplicit:
		return "explicit"
	case SelectGraph:
		return "graph"
	}
	return "fallback"
}

// SelectNextNode picks the node that follows current. A pending explicit
// transition wins. Otherwise the policy names the wanted type and the graph
// supplies a random edge to it. With no such edge the walk returns to idle.
func SelectNextNode(
	graph motionchart.TransitionGraph,
	policy motionchart.TransitionPolicy,
	current motionchart.NodeID,
	currentType motionchart.NodeType,
	explicit *NodeQueue,
	stepDistance float64,
	idle motionchart.NodeID,
) (motionchart.QueuedNode, SelectReason) {
	if explicit != nil {
		if step, ok := explicit.Pop(); ok {
			return step, SelectExplicit
		}
	}
	want := policy.NextType(currentType, stepDistance)
	if next, ok := graph.GenerateRandomTransition(current, want); ok {
		return motionchart.QueuedNode{Node: next, Type: want}, SelectGraph
	}
	return motionchart.QueuedNode{Node: idle, Type: motionchart.NodeIdle}, SelectFallback
}

// transitionToNextStateControlledLocked switches to the next node chosen
// from the graph, fetching its segment synchronously. A failed segment
// reroutes to the idle node, and if even that fails the last pose is held.
func (c *Controller) transitionToNextStateControlledLocked() {
	dist := c.stepDistanceLocked()
	step, reason := SelectNextNode(c.graph, c.policy, c.current, c.currentType, &c.explicit, dist, c.idle)
	if reason == SelectFallback && c.currentType != motionchart.NodeIdle {
		c.metrics.Fallback("no_edge")
		c.logger.Debug("no edge to wanted type, returning to idle", "node", c.current.String())
	}
	if reason == SelectGraph && c.hasTarget && isLocomotion(step.Type) {
		step.Constraint = c.steerLocked()
	}

	frames, err := c.segmentLocked(step)
	if err != nil {
		c.metrics.Fallback("segment_error")
		c.logger.Warn("segment request failed, rerouting to idle", "node", step.Node.String(), "error", err)
		step = motionchart.QueuedNode{Node: c.idle, Type: motionchart.NodeIdle}
		if frames, err = c.graph.Sample(c.idle); err != nil {
			c.logger.Error("sample idle node failed", "node", c.idle.String(), "error", err)
			c.synthesizeIdleLocked()
			return
		}
	}

	if err := c.playLocked(step.Node, step.Type, frames, motionchart.SourceControlled); err != nil {
		c.logger.Error("segment rejected", "node", step.Node.String(), "error", err)
		c.synthesizeIdleLocked()
		return
	}
	if isLocomotion(step.Type) {
		c.consumeTravelLocked(frames)
	}
}

func (c *Controller) segmentLocked(step motionchart.QueuedNode) (motionchart.Frames, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.SegmentTimeout)
	defer cancel()
	return c.planner.GenerateSegment(ctx, motionchart.SegmentRequest{
		Node:       step.Node,
		Type:       step.Type,
		Constraint: step.Constraint,
		Poses:      c.poses.Snapshot(),
	})
}

// stepDistanceLocked is the remaining distance to the walk target, or the
// free travel distance when no target is set. Reaching the target clears it.
func (c *Controller) stepDistanceLocked() float64 {
	if !c.hasTarget {
		return c.travel
	}
	last, ok := c.poses.Last()
	if !ok {
		return align.GroundDistance(r3.Vec{}, c.target)
	}
	d := align.GroundDistance(last.Root, c.target)
	if d <= c.cfg.ArrivalRadius {
		c.logger.Debug("walk target reached", "distance", d)
		c.hasTarget = false
		c.travel = 0
		return 0
	}
	return d
}

// steerLocked builds a constraint turning the next step toward the walk
// target. Params are the stride scale and the per frame turn rate.
func (c *Controller) steerLocked() motionchart.Constraint {
	var from motionchart.Pose
	if last, ok := c.poses.Last(); ok {
		from = last
	}
	d := r3.Sub(c.target, from.Root)
	want := math.Atan2(d.X, d.Z)
	turn := math.Remainder(want-from.Heading, 2*math.Pi) * steerGain
	turn = math.Max(-maxTurnRate, math.Min(maxTurnRate, turn))
	return motionchart.Constraint{
		Set:      true,
		Position: c.target,
		Heading:  want,
		Params:   []float64{1, turn},
	}
}

const (
	steerGain   = 0.1
	maxTurnRate = 0.1 // radians per frame
)

func isLocomotion(t motionchart.NodeType) bool {
	return t == motionchart.NodeStart || t == motionchart.NodeStandard
}

// consumeTravelLocked subtracts the ground covered by a locomotion segment
// from the free travel distance.
func (c *Controller) consumeTravelLocked(frames motionchart.Frames) {
	if c.hasTarget || c.travel == 0 || len(frames) == 0 {
		return
	}
	covered := align.GroundDistance(frames[0].Root, frames[len(frames)-1].Root)
	c.travel = max(c.travel-covered, 0)
}
