package motionchart

// DistancePolicy is the default locomotion policy: keep stepping while the
// remaining travel distance exceeds one step, otherwise wind down to idle.
type DistancePolicy struct {
	StepLength float64
}

var _ TransitionPolicy = DistancePolicy{}

func (p DistancePolicy) NextType(current NodeType, stepDistance float64) NodeType {
	moving := stepDistance > p.StepLength
	switch current {
	case NodeIdle:
		if moving {
			return NodeStart
		}
		return NodeIdle
	case NodeStart, NodeStandard:
		if moving {
			return NodeStandard
		}
		return NodeEnd
	default: // End, Single
		return NodeIdle
	}
}
