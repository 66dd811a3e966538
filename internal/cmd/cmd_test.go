package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/comalice/motionchart/internal/config"
	"github.com/comalice/motionchart/internal/logging"
)

var exampleGraph = filepath.Join("..", "..", "configs", "locomotion.yaml")

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		dotHighlight, dotJSON, dotOutput = "", false, ""
	})
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestValidateCommand(t *testing.T) {
	out, _, err := execute(t, "validate", exampleGraph)
	require.NoError(t, err)
	require.Contains(t, out, "ok (graph locomotion, 11 nodes, 5 actions")
}

func TestValidateCommandReportsInvalid(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("id: bad\nidle: \"walk:idle\"\nnodes: {}\n"), 0o644))

	_, errOut, err := execute(t, "validate", exampleGraph, bad)
	require.Error(t, err)
	require.Contains(t, err.Error(), "1 of 2")
	require.Contains(t, errOut, "bad.yaml")
}

func TestDotCommand(t *testing.T) {
	out, _, err := execute(t, "dot", exampleGraph, "--highlight", "walk:standard")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, `digraph "locomotion" {`))
	require.Contains(t, out, `"walk:standard" [label="standard\n(standard, 30)" fillcolor=lightgreen];`)
}

func TestDotCommandUnknownHighlight(t *testing.T) {
	_, _, err := execute(t, "dot", exampleGraph, "--highlight", "walk:run")
	require.Error(t, err)
}

func TestDotCommandJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	_, _, err := execute(t, "dot", exampleGraph, "--json", "-o", path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"id": "locomotion"`)
}

func TestSimulate(t *testing.T) {
	cfg := config.Default()
	cfg.Graph.Path = exampleGraph
	cfg.Runtime.TickRate = 2 * time.Millisecond
	cfg.Simulate.Interval = 10 * time.Millisecond
	cfg.Simulate.Actions = []string{"wave"}
	cfg.Persist.Enabled = true
	cfg.Persist.Dir = t.TempDir()
	cfg.Persist.Format = "msgpack"

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	summary, err := simulate(ctx, cfg, logging.Discard())
	require.NoError(t, err)
	require.Positive(t, summary.ticks)
	require.Equal(t, summary.ticks, summary.poses)
	require.Positive(t, summary.transitions)

	files, err := filepath.Glob(filepath.Join(cfg.Persist.Dir, "*.msgpack"))
	require.NoError(t, err)
	require.Len(t, files, 1)
}

func TestSimulateMissingGraph(t *testing.T) {
	cfg := config.Default()
	cfg.Graph.Path = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := simulate(context.Background(), cfg, logging.Discard())
	require.Error(t, err)
}
