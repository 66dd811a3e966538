// Package benchmarks provides shared helpers for benchmark tests.
package benchmarks

import (
	"fmt"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/comalice/motionchart"
	"github.com/comalice/motionchart/internal/logging"
	"github.com/comalice/motionchart/internal/primitives"
	"github.com/comalice/motionchart/realtime"
)

// GenWalkConfig creates the four-node walk cycle plus n single-step actions
// "a<i>:step".
func GenWalkConfig(n int) *primitives.GraphConfig {
	config := &primitives.GraphConfig{
		ID:   fmt.Sprintf("walk_%d", n),
		Idle: "walk:idle",
		Seed: 1,
		Nodes: map[string]*primitives.NodeConfig{
			"walk:idle":     {Type: "idle", Clip: motionchart.Clip{Frames: 30}, To: []string{"walk:start"}},
			"walk:start":    {Type: "start", Clip: motionchart.Clip{Frames: 20, Stride: 0.02}, To: []string{"walk:standard", "walk:end"}},
			"walk:standard": {Type: "standard", Clip: motionchart.Clip{Frames: 30, Stride: 0.04}, To: []string{"walk:standard", "walk:end"}},
			"walk:end":      {Type: "end", Clip: motionchart.Clip{Frames: 15, Stride: 0.01}, To: []string{"walk:idle"}},
		},
		Actions: make(map[string]*primitives.ActionConfig, n),
	}
	for i := 0; i < n; i++ {
		action := fmt.Sprintf("a%d", i)
		config.Nodes[action+":step"] = &primitives.NodeConfig{Type: "single", Clip: motionchart.Clip{Frames: 10, Joints: []string{"shoulder"}}}
		config.Actions[action] = &primitives.ActionConfig{Category: "locomotion", Sequence: []string{"step"}}
	}
	return config
}

// GenWideConfig creates an idle node with width start successors, so each
// random transition draws from width candidates.
func GenWideConfig(width int) *primitives.GraphConfig {
	if width < 1 {
		width = 1
	}
	config := &primitives.GraphConfig{
		ID:    fmt.Sprintf("wide_%d", width),
		Idle:  "walk:idle",
		Seed:  1,
		Nodes: map[string]*primitives.NodeConfig{},
	}
	idle := &primitives.NodeConfig{Type: "idle", Clip: motionchart.Clip{Frames: 10}}
	for i := 0; i < width; i++ {
		name := fmt.Sprintf("walk:start%d", i)
		idle.To = append(idle.To, name)
		config.Nodes[name] = &primitives.NodeConfig{Type: "start", Clip: motionchart.Clip{Frames: 10, Stride: 0.02}, To: []string{"walk:idle"}}
	}
	config.Nodes["walk:idle"] = idle
	return config
}

// BuildGraph builds config or fails the benchmark.
func BuildGraph(tb testing.TB, config *primitives.GraphConfig) *motionchart.Graph {
	tb.Helper()
	g, err := config.Build()
	if err != nil {
		tb.Fatal(err)
	}
	return g
}

// NewController creates a quiet controller on config's graph.
func NewController(tb testing.TB, config *primitives.GraphConfig, opts ...realtime.Option) *realtime.Controller {
	tb.Helper()
	idle, err := config.IdleNode()
	if err != nil {
		tb.Fatal(err)
	}
	opts = append([]realtime.Option{realtime.WithLogger(logging.Discard())}, opts...)
	ctrl, err := realtime.New(BuildGraph(tb, config), idle, realtime.Config{}, opts...)
	if err != nil {
		tb.Fatal(err)
	}
	tb.Cleanup(func() { _ = ctrl.Close() })
	return ctrl
}

// GenSnapshot runs a walking controller for ticks updates and snapshots it.
func GenSnapshot(tb testing.TB, ticks int) realtime.Snapshot {
	tb.Helper()
	ctrl := NewController(tb, GenWalkConfig(0))
	ctrl.SetTravelDistance(float64(ticks))
	for i := 0; i < ticks; i++ {
		ctrl.Update(motionchart.DefaultFrameTime)
	}
	return ctrl.Snapshot()
}

// GenSnapshotYAML generates YAML bytes for a snapshot after ticks updates.
func GenSnapshotYAML(tb testing.TB, ticks int) []byte {
	tb.Helper()
	data, err := yaml.Marshal(GenSnapshot(tb, ticks))
	if err != nil {
		tb.Fatal(err)
	}
	return data
}
