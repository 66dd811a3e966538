package primitives

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/comalice/motionchart"
)

func validConfig() *GraphConfig {
	return &GraphConfig{
		ID:   "g",
		Idle: "walk:idle",
		Nodes: map[string]*NodeConfig{
			"walk:idle":  {Type: "idle", Clip: motionchart.Clip{Frames: 3}, To: []string{"walk:start"}},
			"walk:start": {Type: "start", Clip: motionchart.Clip{Frames: 3, Stride: 0.1}, To: []string{"walk:idle"}},
			"wave:wave":  {Type: "single", Clip: motionchart.Clip{Frames: 2}},
		},
		Actions: map[string]*ActionConfig{
			"wave": {Sequence: []string{"wave"}},
		},
	}
}

func TestGraphConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*GraphConfig)
		wantErr bool
	}{
		{"minimal valid", func(*GraphConfig) {}, false},
		{"missing graph ID", func(g *GraphConfig) { g.ID = "" }, true},
		{"missing idle", func(g *GraphConfig) { g.Idle = "" }, true},
		{"idle not found", func(g *GraphConfig) { g.Idle = "walk:missing" }, true},
		{"idle wrong type", func(g *GraphConfig) { g.Idle = "walk:start" }, true},
		{"empty nodes", func(g *GraphConfig) { g.Nodes = nil }, true},
		{"bad node name", func(g *GraphConfig) {
			g.Nodes["nocolon"] = &NodeConfig{Type: "single", Clip: motionchart.Clip{Frames: 1}}
		}, true},
		{"bad node type", func(g *GraphConfig) { g.Nodes["walk:start"].Type = "hover" }, true},
		{"empty clip", func(g *GraphConfig) { g.Nodes["walk:start"].Clip.Frames = 0 }, true},
		{"bad edge", func(g *GraphConfig) { g.Nodes["walk:idle"].To = []string{"walk:run"} }, true},
		{"bad category", func(g *GraphConfig) { g.Actions["wave"].Category = "dance" }, true},
		{"empty sequence", func(g *GraphConfig) { g.Actions["wave"].Sequence = nil }, true},
		{"bad step", func(g *GraphConfig) { g.Actions["wave"].Sequence = []string{"bow"} }, true},
		{"orphan", func(g *GraphConfig) { delete(g.Actions, "wave") }, true},
		{"qualified step", func(g *GraphConfig) { g.Actions["wave"].Sequence = []string{"wave:wave"} }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIdleWrongTypeIsNoIdleNode(t *testing.T) {
	cfg := validConfig()
	cfg.Idle = "walk:start"
	if err := cfg.Validate(); !errors.Is(err, motionchart.ErrNoIdleNode) {
		t.Errorf("expected ErrNoIdleNode, got %v", err)
	}
}

func TestLoadAndBuild(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "locomotion.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ID != "locomotion" || len(cfg.Nodes) != 6 {
		t.Fatalf("unexpected config %s with %d nodes", cfg.ID, len(cfg.Nodes))
	}

	g, err := cfg.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	idle, _ := cfg.IdleNode()
	if g.Idle() != idle {
		t.Errorf("expected idle %s, got %s", idle, g.Idle())
	}
	info, ok := g.Action("pickLeft")
	if !ok {
		t.Fatal("pickLeft missing")
	}
	if info.Category != motionchart.CategoryManipulation || len(info.Sequence) != 2 {
		t.Errorf("unexpected pickLeft %+v", info)
	}
	if info.Sequence[0].Node != motionchart.Node("pickLeft", "reach") {
		t.Errorf("unexpected first step %s", info.Sequence[0].Node)
	}
	walk, _ := g.Action("walk")
	if walk.Category != motionchart.CategoryIdle {
		t.Errorf("walk should be idle category, got %v", walk.Category)
	}
	if got := g.AnimatedJoints(motionchart.Node("pickLeft", "reach")); len(got) != 2 || got[0] != "shoulder" {
		t.Errorf("unexpected joints %v", got)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "locomotion.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	node := motionchart.Node("walk", "standard")
	a, _ := cfg.Build()
	b, _ := cfg.Build()
	for i := 0; i < 5; i++ {
		fa, _ := a.Sample(node)
		fb, _ := b.Sample(node)
		if fa[len(fa)-1].Root != fb[len(fb)-1].Root {
			t.Fatalf("sample %d differs", i)
		}
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse(strings.NewReader("id: g\nidle: a:b\nspeed: 3\n"))
	if err == nil {
		t.Error("expected unknown field error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := validConfig()
	data, err := cfg.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	back, err := Parse(strings.NewReader(string(data)))
	if err != nil {
		t.Fatal(err)
	}
	if ComputeVersion(back) != ComputeVersion(cfg) {
		t.Error("round trip changed the version hash")
	}
}

func TestFindNode(t *testing.T) {
	cfg := validConfig()
	if _, err := cfg.FindNode("walk:idle"); err != nil {
		t.Error(err)
	}
	if _, err := cfg.FindNode("walk:run"); !errors.Is(err, motionchart.ErrUnknownNode) {
		t.Errorf("expected ErrUnknownNode, got %v", err)
	}
	if _, err := cfg.FindNode(""); err == nil {
		t.Error("expected error for empty name")
	}
}

func TestComputeVersion(t *testing.T) {
	cfg := validConfig()
	v1 := ComputeVersion(cfg)
	if len(v1) != 16 {
		t.Errorf("expected 16 hex chars, got %q", v1)
	}
	if ComputeVersion(validConfig()) != v1 {
		t.Error("equal configs hash differently")
	}
	cfg.Nodes["walk:start"].Clip.Stride = 0.2
	if ComputeVersion(cfg) == v1 {
		t.Error("changed config kept its version")
	}
	cfg.Version = "v2"
	if ComputeVersion(cfg) != "v2" {
		t.Error("explicit version ignored")
	}
}
