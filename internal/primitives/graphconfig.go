package primitives

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/comalice/motionchart"
)

// GraphConfig is the declarative form of a motion graph. Nodes are keyed by
// "action:primitive".
type GraphConfig struct {
	Version string                   `json:"version,omitempty" yaml:"version,omitempty"`
	ID      string                   `json:"id" yaml:"id"`
	Idle    string                   `json:"idle" yaml:"idle"`
	Seed    uint64                   `json:"seed,omitempty" yaml:"seed,omitempty"`
	Nodes   map[string]*NodeConfig   `json:"nodes" yaml:"nodes"`
	Actions map[string]*ActionConfig `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// NodeConfig declares one motion primitive node.
type NodeConfig struct {
	Type string           `json:"type" yaml:"type"`
	Clip motionchart.Clip `json:"clip" yaml:"clip"`
	To   []string         `json:"to,omitempty" yaml:"to,omitempty"`
}

// ActionConfig declares an action's category and node sequence. Sequence
// entries may omit the action prefix.
type ActionConfig struct {
	Category string   `json:"category,omitempty" yaml:"category,omitempty"`
	Sequence []string `json:"sequence" yaml:"sequence"`
}

// Parse decodes a YAML graph config. Unknown fields are rejected.
func Parse(r io.Reader) (*GraphConfig, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var cfg GraphConfig
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode graph config: %w", err)
	}
	return &cfg, nil
}

// Load reads and validates the graph config at path.
func Load(path string) (*GraphConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph config: %w", err)
	}
	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid graph config %s: %w", path, err)
	}
	return cfg, nil
}

// Marshal encodes the config as YAML.
func (g *GraphConfig) Marshal() ([]byte, error) {
	return yaml.Marshal(g)
}

// Validate validates the graph configuration:
// - Non-empty ID and idle node
// - Idle node exists with type idle
// - Node names, types and clips are valid
// - Edge targets and action steps exist
// - No orphaned nodes (every node reachable from idle via edges or actions)
func (g *GraphConfig) Validate() error {
	if g.ID == "" {
		return errors.New("graph ID is required")
	}
	if g.Idle == "" {
		return errors.New("idle node is required")
	}
	if len(g.Nodes) == 0 {
		return errors.New("nodes map is required and cannot be empty")
	}
	idle, ok := g.Nodes[g.Idle]
	if !ok {
		return fmt.Errorf("idle node %q not found in nodes", g.Idle)
	}
	if typ, err := motionchart.ParseNodeType(idle.Type); err != nil || typ != motionchart.NodeIdle {
		return fmt.Errorf("idle node %q has type %q: %w", g.Idle, idle.Type, motionchart.ErrNoIdleNode)
	}

	for name, n := range g.Nodes {
		if _, err := motionchart.ParseNodeID(name); err != nil {
			return fmt.Errorf("node %q: %w", name, err)
		}
		if _, err := motionchart.ParseNodeType(n.Type); err != nil {
			return fmt.Errorf("node %q: %w", name, err)
		}
		if n.Clip.Frames < 1 {
			return fmt.Errorf("node %q: %w", name, motionchart.ErrEmptyClip)
		}
		for _, target := range n.To {
			if _, ok := g.Nodes[target]; !ok {
				return fmt.Errorf("invalid edge target %q (node %q)", target, name)
			}
		}
	}

	for name, a := range g.Actions {
		if _, err := motionchart.ParseActionCategory(a.Category); err != nil {
			return fmt.Errorf("action %q: %w", name, err)
		}
		if len(a.Sequence) == 0 {
			return fmt.Errorf("action %q has an empty sequence", name)
		}
		for i, step := range a.Sequence {
			if _, ok := g.Nodes[qualify(name, step)]; !ok {
				return fmt.Errorf("invalid step %q (action %q, step %d)", step, name, i)
			}
		}
	}

	visited := make(map[string]bool)
	g.markReachable(g.Idle, visited)
	for _, a := range sortedKeys(g.Actions) {
		for _, step := range g.Actions[a].Sequence {
			g.markReachable(qualify(a, step), visited)
		}
	}
	for name := range g.Nodes {
		if !visited[name] {
			return fmt.Errorf("orphaned node %q (not reachable from idle %q or any action)", name, g.Idle)
		}
	}
	return nil
}

// markReachable marks every node reachable from name via edges.
func (g *GraphConfig) markReachable(name string, visited map[string]bool) {
	if visited[name] {
		return
	}
	visited[name] = true
	n, ok := g.Nodes[name]
	if !ok {
		return
	}
	for _, target := range n.To {
		g.markReachable(target, visited)
	}
}

// FindNode resolves a node by "action:primitive" name.
func (g *GraphConfig) FindNode(name string) (*NodeConfig, error) {
	if name == "" {
		return nil, errors.New("name cannot be empty")
	}
	n, ok := g.Nodes[name]
	if !ok {
		return nil, fmt.Errorf("node %q: %w", name, motionchart.ErrUnknownNode)
	}
	return n, nil
}

// IdleNode returns the parsed idle node ID.
func (g *GraphConfig) IdleNode() (motionchart.NodeID, error) {
	return motionchart.ParseNodeID(g.Idle)
}

// Build validates the config and constructs the runtime graph. Nodes are
// added in name order so a fixed seed yields the same graph every time.
func (g *GraphConfig) Build() (*motionchart.Graph, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	b := motionchart.NewGraphBuilder()
	if g.Seed != 0 {
		b.Seed(g.Seed)
	}
	for _, name := range sortedKeys(g.Nodes) {
		n := g.Nodes[name]
		typ, _ := motionchart.ParseNodeType(n.Type)
		b.Node(name, typ).Clip(n.Clip).To(n.To...)
	}
	b.Idle(g.Idle)
	for _, name := range sortedKeys(g.Actions) {
		a := g.Actions[name]
		cat, _ := motionchart.ParseActionCategory(a.Category)
		b.Action(name, cat, a.Sequence...)
	}
	return b.Build()
}

func qualify(action, step string) string {
	if _, err := motionchart.ParseNodeID(step); err == nil {
		return step
	}
	return action + ":" + step
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
