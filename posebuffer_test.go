package motionchart_test

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/comalice/motionchart"
)

func TestPoseBufferBounded(t *testing.T) {
	const size = 5
	for _, n := range []int{0, 1, 4, 5, 6, 50} {
		buf := motionchart.NewPoseBuffer(size)
		for i := 0; i < n; i++ {
			buf.Append(motionchart.Pose{Root: r3.Vec{X: float64(i)}})
		}
		if want := min(n, size); buf.Len() != want {
			t.Errorf("after %d appends: len %d, want %d", n, buf.Len(), want)
		}
		if n == 0 {
			if _, ok := buf.Last(); ok {
				t.Error("empty buffer has no last pose")
			}
			continue
		}
		last, _ := buf.Last()
		if last.Root.X != float64(n-1) {
			t.Errorf("last pose %v, want %d", last.Root.X, n-1)
		}
		if first := buf.Snapshot()[0].Root.X; first != float64(max(0, n-size)) {
			t.Errorf("oldest pose %v, want %d", first, max(0, n-size))
		}
	}
}

func TestPoseBufferSnapshotIsCopy(t *testing.T) {
	buf := motionchart.NewPoseBuffer(3)
	buf.Append(motionchart.Pose{Joints: []float64{1}})

	snap := buf.Snapshot()
	snap[0].Joints[0] = 7
	snap[0].Heading = 3
	if last, _ := buf.Last(); last.Joints[0] != 1 || last.Heading != 0 {
		t.Errorf("snapshot aliases buffer: %+v", last)
	}

	pose := motionchart.Pose{Joints: []float64{2}}
	buf.Append(pose)
	pose.Joints[0] = 9
	if last, _ := buf.Last(); last.Joints[0] != 2 {
		t.Error("Append kept the caller's joint slice")
	}
}

func TestPoseBufferLoadAndClear(t *testing.T) {
	buf := motionchart.NewPoseBuffer(3)
	poses := make([]motionchart.Pose, 5)
	for i := range poses {
		poses[i].Root.Z = float64(i)
	}
	buf.Load(poses)
	if buf.Len() != 3 {
		t.Fatalf("expected 3 poses after load, got %d", buf.Len())
	}
	if buf.Snapshot()[0].Root.Z != 2 {
		t.Errorf("load should keep the newest poses, got %v", buf.Snapshot()[0].Root)
	}
	buf.Clear()
	if buf.Len() != 0 || buf.Size() != 3 {
		t.Errorf("clear: len %d size %d", buf.Len(), buf.Size())
	}
	if motionchart.NewPoseBuffer(0).Size() != 1 {
		t.Error("size is at least one")
	}
}
