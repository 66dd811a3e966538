package production

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/comalice/motionchart"
	"github.com/comalice/motionchart/internal/logging"
	"github.com/comalice/motionchart/realtime"
	"github.com/comalice/motionchart/testutil"
)

func runController(t *testing.T, ticks int) *realtime.Controller {
	t.Helper()
	ctrl, err := realtime.New(testutil.LocomotionGraph(t), testutil.WalkIdle, realtime.Config{BufferSize: 8},
		realtime.WithLogger(logging.Discard()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = ctrl.Close() })
	ctrl.SetTravelDistance(3)
	for i := 0; i < ticks; i++ {
		ctrl.Update(motionchart.DefaultFrameTime)
	}
	return ctrl
}

func TestPersisters_RoundTrip(t *testing.T) {
	formats := []string{"json", "yaml", "msgpack"}
	for _, format := range formats {
		t.Run(format, func(t *testing.T) {
			dir := t.TempDir()
			p, err := NewPersister(format, dir)
			if err != nil {
				t.Fatalf("NewPersister failed: %v", err)
			}

			ctrl := runController(t, 30)
			snapshot := ctrl.Snapshot()
			if err := p.Save(context.Background(), snapshot); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			loaded, err := p.Load(context.Background(), snapshot.ID)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if loaded.Node != snapshot.Node || loaded.Type != snapshot.Type {
				t.Errorf("node mismatch: got %s/%s, want %s/%s", loaded.Node, loaded.Type, snapshot.Node, snapshot.Type)
			}
			if loaded.Tick != snapshot.Tick || loaded.Travel != snapshot.Travel {
				t.Errorf("tick/travel mismatch: got %d/%v, want %d/%v", loaded.Tick, loaded.Travel, snapshot.Tick, snapshot.Travel)
			}
			if len(loaded.Poses) != len(snapshot.Poses) {
				t.Fatalf("expected %d poses, got %d", len(snapshot.Poses), len(loaded.Poses))
			}
			last := len(loaded.Poses) - 1
			if loaded.Poses[last].Root != snapshot.Poses[last].Root {
				t.Errorf("pose mismatch: got %v, want %v", loaded.Poses[last].Root, snapshot.Poses[last].Root)
			}
			if !loaded.Timestamp.Equal(snapshot.Timestamp) {
				t.Errorf("timestamp mismatch: got %v, want %v", loaded.Timestamp, snapshot.Timestamp)
			}
		})
	}
}

func TestPersister_FileNaming(t *testing.T) {
	dir := t.TempDir()
	p, err := NewMsgpackPersister(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Save(context.Background(), realtime.Snapshot{ID: "ctrl-1"}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "ctrl-1.msgpack")); err != nil {
		t.Errorf("expected snapshot file: %v", err)
	}
}

func TestPersister_LoadNonExistent(t *testing.T) {
	for _, format := range []string{"json", "yaml", "msgpack"} {
		p, err := NewPersister(format, t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		_, err = p.Load(context.Background(), "nonexistent")
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("%s: expected os.ErrNotExist wrapped error, got %v", format, err)
		}
	}
}

func TestPersister_RejectsEmptyID(t *testing.T) {
	p, err := NewJSONPersister(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Save(context.Background(), realtime.Snapshot{}); err == nil {
		t.Error("expected error for empty ID")
	}
}

func TestPersister_CancelledContext(t *testing.T) {
	p, err := NewYAMLPersister(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Save(ctx, realtime.Snapshot{ID: "x"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNewPersister_UnknownFormat(t *testing.T) {
	if _, err := NewPersister("xml", t.TempDir()); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestPersister_Integration_RestoreController(t *testing.T) {
	p, err := NewJSONPersister(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	src := runController(t, 40)
	if err := p.Save(context.Background(), src.Snapshot()); err != nil {
		t.Fatal(err)
	}

	loaded, err := p.Load(context.Background(), src.ID().String())
	if err != nil {
		t.Fatal(err)
	}
	dst := runController(t, 0)
	if err := dst.Restore(loaded); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if node, _ := dst.CurrentNode(); node != loaded.Node {
		t.Errorf("expected restored node %s, got %s", loaded.Node, node)
	}
	if dst.Tick() != loaded.Tick {
		t.Errorf("expected tick %d, got %d", loaded.Tick, dst.Tick())
	}
	if dst.PoseCount() != len(loaded.Poses) {
		t.Errorf("expected %d poses, got %d", len(loaded.Poses), dst.PoseCount())
	}
}
