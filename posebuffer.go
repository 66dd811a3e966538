package motionchart

// PoseBuffer is a bounded rolling history of recently played poses.
//
// It is owned by the controller and is not safe for concurrent use. Other
// goroutines only ever receive Snapshot copies.
type PoseBuffer struct {
	size  int
	poses []Pose
}

// NewPoseBuffer creates an empty buffer holding at most size poses.
func NewPoseBuffer(size int) *PoseBuffer {
	if size < 1 {
		size = 1
	}
	return &PoseBuffer{
		size:  size,
		poses: make([]Pose, 0, size),
	}
}

// Append adds pose to the end, dropping the oldest entry once full.
func (b *PoseBuffer) Append(pose Pose) {
	if len(b.poses) == b.size {
		copy(b.poses, b.poses[1:])
		b.poses = b.poses[:b.size-1]
	}
	b.poses = append(b.poses, pose.Clone())
}

// Len returns the number of stored poses.
func (b *PoseBuffer) Len() int { return len(b.poses) }

// Size returns the capacity the buffer trims to.
func (b *PoseBuffer) Size() int { return b.size }

// Last returns the most recent pose.
func (b *PoseBuffer) Last() (Pose, bool) {
	if len(b.poses) == 0 {
		return Pose{}, false
	}
	return b.poses[len(b.poses)-1].Clone(), true
}

// Snapshot returns a deep copy of the history, oldest first.
// Modifications to the returned slice do not affect the buffer.
func (b *PoseBuffer) Snapshot() []Pose {
	out := make([]Pose, len(b.poses))
	for i, p := range b.poses {
		out[i] = p.Clone()
	}
	return out
}

// Load replaces the contents with poses, keeping only the newest Size entries.
func (b *PoseBuffer) Load(poses []Pose) {
	b.poses = b.poses[:0]
	if len(poses) > b.size {
		poses = poses[len(poses)-b.size:]
	}
	for _, p := range poses {
		b.poses = append(b.poses, p.Clone())
	}
}

// Clear empties the buffer.
func (b *PoseBuffer) Clear() {
	b.poses = b.poses[:0]
}
