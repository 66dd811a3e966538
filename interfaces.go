package motionchart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	ErrUnknownNode   = errors.New("unknown node")
	ErrUnknownAction = errors.New("unknown action")
	ErrNoIdleNode    = errors.New("graph has no idle node")
)

// ActionCategory groups actions by whether they may be interrupted by a new
// action request.
type ActionCategory int

const (
	CategoryIdle ActionCategory = iota
	CategoryLocomotion
	CategoryManipulation
)

func (c ActionCategory) String() string {
	switch c {
	case CategoryIdle:
		return "idle"
	case CategoryLocomotion:
		return "locomotion"
	case CategoryManipulation:
		return "manipulation"
	}
	return "unknown"
}

// Interruptible reports whether an action request may start while an action
// of this category plays.
func (c ActionCategory) Interruptible() bool {
	return c == CategoryIdle || c == CategoryLocomotion
}

// ParseActionCategory maps a config name to its category.
func ParseActionCategory(s string) (ActionCategory, error) {
	switch s {
	case "idle":
		return CategoryIdle, nil
	case "locomotion", "":
		return CategoryLocomotion, nil
	case "manipulation":
		return CategoryManipulation, nil
	}
	return 0, errors.New("unknown action category " + s)
}

// QueuedNode is one step of an explicit graph walk.
type QueuedNode struct {
	Node       NodeID
	Type       NodeType
	Constraint Constraint
}

// ActionInfo describes an action of the graph: its category and the node
// sequence that performs it.
type ActionInfo struct {
	Name     string
	Category ActionCategory
	Sequence []QueuedNode
}

// Constraint is a spatial goal attached to an action request.
type Constraint struct {
	Set      bool
	Position r3.Vec
	Heading  float64
	Params   []float64 // primitive parameters for back projection
}

// ActionRequest pairs an action with the constraint it must satisfy.
type ActionRequest struct {
	Action     string
	Constraint Constraint
}

// ActionSequence is the ordered list of actions a background plan realizes.
type ActionSequence []ActionRequest

// Clone copies the sequence so the worker never shares it with the caller.
func (s ActionSequence) Clone() ActionSequence {
	out := make(ActionSequence, len(s))
	for i, a := range s {
		out[i] = a
		if a.Constraint.Params != nil {
			out[i].Constraint.Params = append([]float64(nil), a.Constraint.Params...)
		}
	}
	return out
}

// TransitionGraph is the motion graph the controller walks.
type TransitionGraph interface {
	// GenerateRandomTransition picks a uniformly random outgoing edge of
	// node whose target has type typ.
	GenerateRandomTransition(node NodeID, typ NodeType) (NodeID, bool)
	Sample(node NodeID) (Frames, error)
	BackProject(node NodeID, params []float64) (Frames, error)
	AnimatedJoints(node NodeID) []string
	NodeType(node NodeID) (NodeType, bool)
	Action(name string) (ActionInfo, bool)
}

// PlanRequest is the immutable input of a background plan.
type PlanRequest struct {
	ID        uuid.UUID
	Actions   ActionSequence
	Start     NodeID
	StartType NodeType
	Poses     []Pose // snapshot copy of the pose buffer
	DT        float64
}

// SegmentRequest asks for a single segment, synchronously.
type SegmentRequest struct {
	Node       NodeID
	Type       NodeType
	Constraint Constraint
	Poses      []Pose
}

// Planner produces motion segments.
//
// GenerateMotionStates runs on the worker goroutine, pushes zero or more
// entries through out, and must return promptly once ctx is cancelled.
// GenerateSegment is a bounded one-shot call made from the tick.
type Planner interface {
	GenerateMotionStates(ctx context.Context, req PlanRequest, out EntryWriter) error
	GenerateSegment(ctx context.Context, req SegmentRequest) (Frames, error)
}

// Sink receives every played pose (visualization, grounding).
type Sink interface {
	UpdateTransformation(pose Pose) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Pose) error

func (f SinkFunc) UpdateTransformation(p Pose) error { return f(p) }

// TransitionPolicy decides which node type should follow the current one.
type TransitionPolicy interface {
	NextType(current NodeType, stepDistance float64) NodeType
}

// TransitionSource says how the controller arrived at a new state.
type TransitionSource string

const (
	SourceQueue      TransitionSource = "queue"
	SourceControlled TransitionSource = "controlled"
	SourceIdle       TransitionSource = "idle"
	SourceGraph      TransitionSource = "graph"
)

// TransitionEvent is emitted after every state change.
type TransitionEvent struct {
	From      NodeID           `json:"from" yaml:"from"`
	To        NodeID           `json:"to" yaml:"to"`
	Type      NodeType         `json:"type" yaml:"type"`
	Source    TransitionSource `json:"source" yaml:"source"`
	Tick      uint64           `json:"tick" yaml:"tick"`
	Plan      uuid.UUID        `json:"plan,omitempty" yaml:"plan,omitempty"`
	Timestamp time.Time        `json:"timestamp" yaml:"timestamp"`
}

// Publisher forwards transition events; implementations must not block.
type Publisher interface {
	Publish(ctx context.Context, ev TransitionEvent) error
}
