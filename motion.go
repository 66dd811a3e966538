package motionchart

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// NodeID identifies a vertex of the transition graph: an action and one of its
// motion primitives, e.g. {"walk", "leftStance"}.
type NodeID struct {
	Action    string `json:"action" yaml:"action" msgpack:"action"`
	Primitive string `json:"primitive" yaml:"primitive" msgpack:"primitive"`
}

// Node is shorthand for NodeID{action, primitive}.
func Node(action, primitive string) NodeID {
	return NodeID{Action: action, Primitive: primitive}
}

func (n NodeID) String() string {
	return n.Action + ":" + n.Primitive
}

// IsZero reports whether n names no node.
func (n NodeID) IsZero() bool {
	return n.Action == "" && n.Primitive == ""
}

// ParseNodeID parses the "action:primitive" form produced by String.
func ParseNodeID(s string) (NodeID, error) {
	action, primitive, ok := strings.Cut(s, ":")
	if !ok || action == "" || primitive == "" {
		return NodeID{}, fmt.Errorf("invalid node id %q: want action:primitive", s)
	}
	return NodeID{Action: action, Primitive: primitive}, nil
}

// NodeType classifies a node by its role in a graph walk.
type NodeType int

const (
	NodeStart NodeType = iota
	NodeStandard
	NodeEnd
	NodeIdle
	NodeSingle
)

var nodeTypeNames = [...]string{
	NodeStart:    "start",
	NodeStandard: "standard",
	NodeEnd:      "end",
	NodeIdle:     "idle",
	NodeSingle:   "single",
}

func (t NodeType) String() string {
	if t < 0 || int(t) >= len(nodeTypeNames) {
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
	return nodeTypeNames[t]
}

// Valid reports whether t is one of the declared node types.
func (t NodeType) Valid() bool {
	return t >= NodeStart && t <= NodeSingle
}

// ParseNodeType maps a config name ("start", "standard", ...) to its NodeType.
func ParseNodeType(s string) (NodeType, error) {
	for i, name := range nodeTypeNames {
		if strings.EqualFold(s, name) {
			return NodeType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown node type %q", s)
}

// Pose is one full-body frame: root position, heading (yaw, radians) and
// opaque joint parameters.
type Pose struct {
	Root    r3.Vec    `json:"root" yaml:"root" msgpack:"root"`
	Heading float64   `json:"heading" yaml:"heading" msgpack:"heading"`
	Joints  []float64 `json:"joints,omitempty" yaml:"joints,omitempty" msgpack:"joints,omitempty"`
}

// Clone returns a deep copy of p.
func (p Pose) Clone() Pose {
	out := p
	if p.Joints != nil {
		out.Joints = append([]float64(nil), p.Joints...)
	}
	return out
}

// Frames is a sampled motion segment.
type Frames []Pose

// Clone deep-copies every pose.
func (f Frames) Clone() Frames {
	if f == nil {
		return nil
	}
	out := make(Frames, len(f))
	for i, p := range f {
		out[i] = p.Clone()
	}
	return out
}

// ErrEmptyClip is returned when a motion state is built from zero frames.
var ErrEmptyClip = errors.New("motion clip has no frames")

// DefaultFrameTime is 30 frames per second.
const DefaultFrameTime = 1.0 / 30.0

// MotionState is a playback cursor over a frame sequence. It is owned by a
// single goroutine at a time and is not safe for concurrent use.
type MotionState struct {
	frames    Frames
	frameTime float64
	time      float64
	playing   bool
}

// NewMotionState creates a paused state positioned on the first frame.
func NewMotionState(frames Frames, frameTime float64) (*MotionState, error) {
	if len(frames) == 0 {
		return nil, ErrEmptyClip
	}
	if frameTime <= 0 {
		frameTime = DefaultFrameTime
	}
	return &MotionState{frames: frames, frameTime: frameTime}, nil
}

// HoldState builds a state that repeats pose for n frames.
func HoldState(pose Pose, n int, frameTime float64) *MotionState {
	if n < 1 {
		n = 1
	}
	frames := make(Frames, n)
	for i := range frames {
		frames[i] = pose.Clone()
	}
	ms, _ := NewMotionState(frames, frameTime)
	return ms
}

// Update advances the cursor by delta seconds while playing and reports
// whether the last frame has been reached. A paused state never moves.
func (m *MotionState) Update(delta float64) bool {
	if !m.playing {
		return false
	}
	if delta > 0 {
		m.time += delta
	}
	last := float64(len(m.frames) - 1)
	if m.time/m.frameTime >= last {
		m.time = last * m.frameTime
		return true
	}
	return false
}

// Frame returns the index of the current frame.
func (m *MotionState) Frame() int {
	idx := int(math.Floor(m.time/m.frameTime + 1e-9))
	if idx >= len(m.frames) {
		idx = len(m.frames) - 1
	}
	return idx
}

// Pose returns a copy of the current frame.
func (m *MotionState) Pose() Pose {
	return m.frames[m.Frame()].Clone()
}

// Frames exposes the underlying frame sequence. Callers must not modify it.
func (m *MotionState) Frames() Frames { return m.frames }

func (m *MotionState) FrameTime() float64 { return m.frameTime }
func (m *MotionState) Len() int           { return len(m.frames) }
func (m *MotionState) Playing() bool      { return m.playing }
func (m *MotionState) Play()              { m.playing = true }
func (m *MotionState) Pause()             { m.playing = false }

// Ended reports whether the cursor sits on the final frame.
func (m *MotionState) Ended() bool {
	return m.Frame() == len(m.frames)-1
}

// Reset rewinds to the first frame without changing the play flag.
func (m *MotionState) Reset() {
	m.time = 0
}
