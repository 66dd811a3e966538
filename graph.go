package motionchart

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"
)

// Clip is the procedural stand-in for a statistical motion primitive: a
// segment of Frames poses that walks Stride units per frame along the
// heading and turns Turn radians per frame. Noise jitters stride and turn on
// every Sample call.
type Clip struct {
	Frames int      `json:"frames" yaml:"frames"`
	Stride float64  `json:"stride,omitempty" yaml:"stride,omitempty"`
	Turn   float64  `json:"turn,omitempty" yaml:"turn,omitempty"`
	Noise  float64  `json:"noise,omitempty" yaml:"noise,omitempty"`
	Joints []string `json:"joints,omitempty" yaml:"joints,omitempty"`
}

type graphNode struct {
	id    NodeID
	typ   NodeType
	clip  Clip
	edges []NodeID
}

// Graph is an in-memory TransitionGraph. The topology is immutable after
// Build; the random source is guarded so Sample may be called from the tick
// and the planner worker at the same time.
type Graph struct {
	nodes   map[NodeID]*graphNode
	order   []NodeID
	actions map[string]ActionInfo
	idle    NodeID

	mu  sync.Mutex
	rng *rand.Rand
}

var _ TransitionGraph = (*Graph)(nil)

// Idle returns the graph's idle/start node.
func (g *Graph) Idle() NodeID { return g.idle }

// Nodes returns all node IDs in declaration order.
func (g *Graph) Nodes() []NodeID {
	return append([]NodeID(nil), g.order...)
}

// Edges returns the outgoing edges of node.
func (g *Graph) Edges(node NodeID) []NodeID {
	n, ok := g.nodes[node]
	if !ok {
		return nil
	}
	return append([]NodeID(nil), n.edges...)
}

// Actions returns action names, sorted.
func (g *Graph) Actions() []string {
	names := make([]string, 0, len(g.actions))
	for name := range g.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (g *Graph) NodeType(node NodeID) (NodeType, bool) {
	n, ok := g.nodes[node]
	if !ok {
		return 0, false
	}
	return n.typ, true
}

func (g *Graph) Action(name string) (ActionInfo, bool) {
	a, ok := g.actions[name]
	if !ok {
		return ActionInfo{}, false
	}
	a.Sequence = append([]QueuedNode(nil), a.Sequence...)
	return a, true
}

func (g *Graph) GenerateRandomTransition(node NodeID, typ NodeType) (NodeID, bool) {
	n, ok := g.nodes[node]
	if !ok {
		return NodeID{}, false
	}
	var candidates []NodeID
	for _, e := range n.edges {
		if g.nodes[e].typ == typ {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return NodeID{}, false
	}
	g.mu.Lock()
	i := g.rng.IntN(len(candidates))
	g.mu.Unlock()
	return candidates[i], true
}

func (g *Graph) AnimatedJoints(node NodeID) []string {
	n, ok := g.nodes[node]
	if !ok {
		return nil
	}
	return append([]string(nil), n.clip.Joints...)
}

// Sample draws a new variation of the node's clip, starting at the origin
// facing +Z.
func (g *Graph) Sample(node NodeID) (Frames, error) {
	n, ok := g.nodes[node]
	if !ok {
		return nil, fmt.Errorf("sample %s: %w", node, ErrUnknownNode)
	}
	stride, turn := n.clip.Stride, n.clip.Turn
	if n.clip.Noise > 0 {
		g.mu.Lock()
		stride *= 1 + n.clip.Noise*(2*g.rng.Float64()-1)
		turn *= 1 + n.clip.Noise*(2*g.rng.Float64()-1)
		g.mu.Unlock()
	}
	return synthesize(n.clip, stride, turn)
}

// BackProject builds the clip from explicit parameters: params[0] scales
// the stride and params[1], when present, replaces the turn rate.
func (g *Graph) BackProject(node NodeID, params []float64) (Frames, error) {
	n, ok := g.nodes[node]
	if !ok {
		return nil, fmt.Errorf("back project %s: %w", node, ErrUnknownNode)
	}
	stride, turn := n.clip.Stride, n.clip.Turn
	if len(params) > 0 {
		stride *= params[0]
	}
	if len(params) > 1 {
		turn = params[1]
	}
	return synthesize(n.clip, stride, turn)
}

func synthesize(c Clip, stride, turn float64) (Frames, error) {
	if c.Frames < 1 {
		return nil, ErrEmptyClip
	}
	frames := make(Frames, c.Frames)
	var root r3.Vec
	heading := 0.0
	for i := range frames {
		joints := make([]float64, len(c.Joints))
		for j := range joints {
			joints[j] = math.Sin(float64(i)*0.2 + float64(j))
		}
		frames[i] = Pose{Root: root, Heading: heading, Joints: joints}
		heading += turn
		root = r3.Add(root, r3.Vec{X: stride * math.Sin(heading), Z: stride * math.Cos(heading)})
	}
	return frames, nil
}
