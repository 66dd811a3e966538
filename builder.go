package motionchart

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

// GraphBuilder provides a fluent API for constructing a Graph from
// "action:primitive" names instead of hand-built node structs.
type GraphBuilder struct {
	nodes   map[NodeID]*graphNode
	order   []NodeID
	edges   map[NodeID][]string // raw edge targets, resolved in Build
	actions map[string]*actionDraft
	idle    NodeID
	seed    uint64
	errs    []error
}

type actionDraft struct {
	category ActionCategory
	sequence []string
	declared bool
}

// NodeBuilder provides fluent methods for configuring one node.
type NodeBuilder struct {
	b    *GraphBuilder
	node *graphNode
}

// NewGraphBuilder creates an empty builder. The random source used by the
// built graph is seeded with 1 unless Seed is called.
func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{
		nodes:   make(map[NodeID]*graphNode),
		edges:   make(map[NodeID][]string),
		actions: make(map[string]*actionDraft),
		seed:    1,
	}
}

// Seed sets the seed of the graph's random source.
func (b *GraphBuilder) Seed(seed uint64) *GraphBuilder {
	b.seed = seed
	return b
}

// Node creates or retrieves a node by "action:primitive" name.
func (b *GraphBuilder) Node(name string, typ NodeType) *NodeBuilder {
	id, err := ParseNodeID(name)
	if err != nil {
		b.errs = append(b.errs, err)
		id = NodeID{Action: name, Primitive: name}
	}
	n, ok := b.nodes[id]
	if !ok {
		n = &graphNode{id: id, typ: typ, clip: Clip{Frames: 1}}
		b.nodes[id] = n
		b.order = append(b.order, id)
		if _, ok := b.actions[id.Action]; !ok {
			b.actions[id.Action] = &actionDraft{category: CategoryLocomotion}
		}
	}
	n.typ = typ
	if typ == NodeIdle && b.idle.IsZero() {
		b.idle = id
	}
	return &NodeBuilder{b: b, node: n}
}

// Idle marks the named node as the graph's idle/start node.
func (b *GraphBuilder) Idle(name string) *GraphBuilder {
	id, err := ParseNodeID(name)
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	b.idle = id
	return b
}

// Action declares an action with its category and node sequence. Sequence
// entries are "action:primitive" names; a bare primitive is qualified with
// the action name.
func (b *GraphBuilder) Action(name string, category ActionCategory, sequence ...string) *GraphBuilder {
	d := b.actions[name]
	if d == nil {
		d = &actionDraft{}
		b.actions[name] = d
	}
	d.category = category
	d.declared = true
	d.sequence = nil
	for _, s := range sequence {
		if !strings.Contains(s, ":") {
			s = name + ":" + s
		}
		d.sequence = append(d.sequence, s)
	}
	return b
}

// Clip sets the node's procedural clip.
func (nb *NodeBuilder) Clip(c Clip) *NodeBuilder {
	nb.node.clip = c
	return nb
}

// To adds outgoing edges to the named nodes.
func (nb *NodeBuilder) To(targets ...string) *NodeBuilder {
	nb.b.edges[nb.node.id] = append(nb.b.edges[nb.node.id], targets...)
	return nb
}

// Node continues with another node on the same builder.
func (nb *NodeBuilder) Node(name string, typ NodeType) *NodeBuilder {
	return nb.b.Node(name, typ)
}

// Done returns to the graph builder.
func (nb *NodeBuilder) Done() *GraphBuilder {
	return nb.b
}

// Build validates the configuration and constructs the Graph.
func (b *GraphBuilder) Build() (*Graph, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	g := &Graph{
		nodes:   make(map[NodeID]*graphNode, len(b.nodes)),
		order:   append([]NodeID(nil), b.order...),
		actions: make(map[string]ActionInfo, len(b.actions)),
		idle:    b.idle,
		rng:     rand.New(rand.NewPCG(b.seed, b.seed^0x9e3779b97f4a7c15)),
	}
	for id, n := range b.nodes {
		cp := *n
		cp.edges = nil
		for _, t := range b.edges[id] {
			target, _ := ParseNodeID(t)
			cp.edges = append(cp.edges, target)
		}
		g.nodes[id] = &cp
	}
	for name, d := range b.actions {
		info := ActionInfo{Name: name, Category: d.category}
		for _, s := range d.sequence {
			id, _ := ParseNodeID(s)
			info.Sequence = append(info.Sequence, QueuedNode{Node: id, Type: g.nodes[id].typ})
		}
		if !d.declared && g.nodes[b.idle] != nil && b.idle.Action == name {
			info.Category = CategoryIdle
		}
		g.actions[name] = info
	}
	return g, nil
}

// validate checks that names parse, every edge and sequence entry points at
// a declared node, and an idle node exists.
func (b *GraphBuilder) validate() error {
	if len(b.errs) > 0 {
		return errors.Join(b.errs...)
	}
	if len(b.nodes) == 0 {
		return errors.New("graph has no nodes")
	}
	if b.idle.IsZero() {
		return ErrNoIdleNode
	}
	idle, ok := b.nodes[b.idle]
	if !ok {
		return fmt.Errorf("idle node %s: %w", b.idle, ErrUnknownNode)
	}
	if idle.typ != NodeIdle {
		return fmt.Errorf("idle node %s has type %s: %w", b.idle, idle.typ, ErrNoIdleNode)
	}
	for _, id := range b.order {
		n := b.nodes[id]
		if n.clip.Frames < 1 {
			return fmt.Errorf("node %s: %w", id, ErrEmptyClip)
		}
		for _, t := range b.edges[id] {
			target, err := ParseNodeID(t)
			if err != nil {
				return fmt.Errorf("edge from %s: %w", id, err)
			}
			if _, ok := b.nodes[target]; !ok {
				return fmt.Errorf("edge %s -> %s: %w", id, target, ErrUnknownNode)
			}
		}
	}
	for name, d := range b.actions {
		for _, s := range d.sequence {
			id, err := ParseNodeID(s)
			if err != nil {
				return fmt.Errorf("action %q: %w", name, err)
			}
			if _, ok := b.nodes[id]; !ok {
				return fmt.Errorf("action %q step %s: %w", name, id, ErrUnknownNode)
			}
		}
	}
	return nil
}
