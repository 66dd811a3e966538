package motionchart_test

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/comalice/motionchart"
)

func linearFrames(n int) motionchart.Frames {
	frames := make(motionchart.Frames, n)
	for i := range frames {
		frames[i] = motionchart.Pose{Root: r3.Vec{Z: float64(i)}, Joints: []float64{float64(i)}}
	}
	return frames
}

func TestParseNodeID(t *testing.T) {
	tests := []struct {
		in      string
		want    motionchart.NodeID
		wantErr bool
	}{
		{"walk:idle", motionchart.Node("walk", "idle"), false},
		{"pickLeft:reach", motionchart.Node("pickLeft", "reach"), false},
		{"a:b:c", motionchart.Node("a", "b:c"), false},
		{"walk", motionchart.NodeID{}, true},
		{":idle", motionchart.NodeID{}, true},
		{"walk:", motionchart.NodeID{}, true},
		{"", motionchart.NodeID{}, true},
	}
	for _, tt := range tests {
		got, err := motionchart.ParseNodeID(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseNodeID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseNodeID(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if !tt.wantErr && got.String() != tt.in {
			t.Errorf("String() = %q, want %q", got.String(), tt.in)
		}
	}
}

func TestNodeType(t *testing.T) {
	for _, typ := range []motionchart.NodeType{
		motionchart.NodeStart, motionchart.NodeStandard, motionchart.NodeEnd, motionchart.NodeIdle, motionchart.NodeSingle,
	} {
		back, err := motionchart.ParseNodeType(typ.String())
		if err != nil || back != typ {
			t.Errorf("round trip of %v gave %v, %v", typ, back, err)
		}
		if !typ.Valid() {
			t.Errorf("%v should be valid", typ)
		}
	}
	if typ, err := motionchart.ParseNodeType("IDLE"); err != nil || typ != motionchart.NodeIdle {
		t.Errorf("parse is case-insensitive, got %v, %v", typ, err)
	}
	if _, err := motionchart.ParseNodeType("hover"); err == nil {
		t.Error("expected error for unknown type")
	}
	if motionchart.NodeType(9).Valid() {
		t.Error("NodeType(9) should be invalid")
	}
	if got := motionchart.NodeType(9).String(); got != "NodeType(9)" {
		t.Errorf("unexpected String %q", got)
	}
}

func TestMotionStateEmptyClip(t *testing.T) {
	if _, err := motionchart.NewMotionState(nil, motionchart.DefaultFrameTime); !errors.Is(err, motionchart.ErrEmptyClip) {
		t.Errorf("expected ErrEmptyClip, got %v", err)
	}
}

func TestMotionStateCursorMonotonic(t *testing.T) {
	ms, err := motionchart.NewMotionState(linearFrames(10), 0.1)
	if err != nil {
		t.Fatal(err)
	}
	if ms.Playing() || ms.Frame() != 0 {
		t.Fatal("new state should be paused on frame 0")
	}
	ms.Play()

	prev := ms.Frame()
	ended := false
	for i := 0; i < 30 && !ended; i++ {
		ended = ms.Update(0.05)
		if ms.Frame() < prev {
			t.Fatalf("cursor moved backwards: %d -> %d", prev, ms.Frame())
		}
		prev = ms.Frame()
	}
	if !ended || !ms.Ended() || ms.Frame() != 9 {
		t.Errorf("expected to end on frame 9, got %d (ended %v)", ms.Frame(), ended)
	}
	// Further updates clamp at the last frame.
	if !ms.Update(1) || ms.Frame() != 9 {
		t.Errorf("expected clamp on last frame, got %d", ms.Frame())
	}
	if ms.Pose().Root.Z != 9 {
		t.Errorf("expected last pose, got %v", ms.Pose().Root)
	}
}

func TestMotionStatePausedIsFrozen(t *testing.T) {
	ms, _ := motionchart.NewMotionState(linearFrames(10), 0.1)
	ms.Play()
	ms.Update(0.35)
	frame := ms.Frame()
	if frame != 3 {
		t.Fatalf("expected frame 3, got %d", frame)
	}

	ms.Pause()
	for i := 0; i < 10; i++ {
		if ms.Update(1) {
			t.Fatal("paused state reported end")
		}
	}
	if ms.Frame() != frame {
		t.Errorf("paused cursor moved: %d -> %d", frame, ms.Frame())
	}

	ms.Play()
	ms.Update(-1)
	if ms.Frame() != frame {
		t.Error("negative delta moved the cursor")
	}
	ms.Reset()
	if ms.Frame() != 0 || !ms.Playing() {
		t.Error("Reset should rewind and keep playing")
	}
}

func TestMotionStateSingleFrame(t *testing.T) {
	ms, _ := motionchart.NewMotionState(linearFrames(1), 0.1)
	ms.Play()
	if !ms.Update(0) {
		t.Error("a one-frame state ends immediately")
	}
}

func TestHoldState(t *testing.T) {
	pose := motionchart.Pose{Root: r3.Vec{X: 1}, Heading: 0.5, Joints: []float64{1, 2}}
	ms := motionchart.HoldState(pose, 5, 0)
	if ms.Len() != 5 || ms.FrameTime() != motionchart.DefaultFrameTime {
		t.Fatalf("unexpected hold state: %d frames, frame time %v", ms.Len(), ms.FrameTime())
	}
	pose.Joints[0] = 99
	for i, f := range ms.Frames() {
		if f.Root.X != 1 || f.Joints[0] != 1 {
			t.Errorf("frame %d not an independent copy: %+v", i, f)
		}
	}
	if motionchart.HoldState(pose, 0, 0.1).Len() != 1 {
		t.Error("hold length is at least one frame")
	}
}

func TestPoseCloneIsDeep(t *testing.T) {
	frames := linearFrames(3)
	cp := frames.Clone()
	cp[1].Joints[0] = 42
	if frames[1].Joints[0] == 42 {
		t.Error("Frames.Clone shares joint slices")
	}
	if motionchart.Frames(nil).Clone() != nil {
		t.Error("nil clone should stay nil")
	}
}
