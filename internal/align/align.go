// Package align computes the rigid ground-plane transform that makes a freshly
// sampled segment continue from the last played pose.
package align

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/comalice/motionchart"
)

var up = r3.Vec{Y: 1}

// Transform rotates by Yaw about the vertical axis through Pivot, then
// translates by Offset. Offset has no vertical component: segments keep
// their own height profile.
type Transform struct {
	Pivot  r3.Vec
	Yaw    float64
	Offset r3.Vec
}

// Identity leaves poses unchanged.
func Identity() Transform { return Transform{} }

// IsIdentity reports whether t leaves poses unchanged.
func (t Transform) IsIdentity() bool {
	return t.Yaw == 0 && t.Offset == (r3.Vec{})
}

// Between returns the transform that maps first onto anchor's ground
// position and heading.
func Between(anchor, first motionchart.Pose) Transform {
	offset := r3.Sub(anchor.Root, first.Root)
	offset.Y = 0
	return Transform{
		Pivot:  first.Root,
		Yaw:    wrap(anchor.Heading - first.Heading),
		Offset: offset,
	}
}

// FromHistory aligns a segment starting at first with the newest pose of
// history. An empty history yields the identity.
func FromHistory(history []motionchart.Pose, first motionchart.Pose) Transform {
	if len(history) == 0 {
		return Identity()
	}
	return Between(history[len(history)-1], first)
}

// ApplyPose transforms a single pose.
func (t Transform) ApplyPose(p motionchart.Pose) motionchart.Pose {
	out := p.Clone()
	local := r3.Sub(p.Root, t.Pivot)
	if t.Yaw != 0 {
		local = r3.NewRotation(t.Yaw, up).Rotate(local)
	}
	out.Root = r3.Add(r3.Add(t.Pivot, local), t.Offset)
	out.Heading = wrap(p.Heading + t.Yaw)
	return out
}

// Apply returns a transformed copy of frames.
func (t Transform) Apply(frames motionchart.Frames) motionchart.Frames {
	if t.IsIdentity() {
		return frames.Clone()
	}
	out := make(motionchart.Frames, len(frames))
	for i, p := range frames {
		out[i] = t.ApplyPose(p)
	}
	return out
}

// Segment aligns frames against history in one step.
func Segment(history []motionchart.Pose, frames motionchart.Frames) motionchart.Frames {
	if len(frames) == 0 {
		return frames
	}
	return FromHistory(history, frames[0]).Apply(frames)
}

// GroundDistance is the horizontal distance between a and b.
func GroundDistance(a, b r3.Vec) float64 {
	d := r3.Sub(b, a)
	d.Y = 0
	return r3.Norm(d)
}

// wrap maps an angle to (-pi, pi].
func wrap(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
