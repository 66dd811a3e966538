package realtime

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/comalice/motionchart"
)

// TriggerKind enumerates the inputs a Runtime accepts between ticks.
type TriggerKind int

const (
	TriggerAction TriggerKind = iota
	TriggerWalkTarget
	TriggerTravel
	TriggerKey
	TriggerCollision
	TriggerPlan
	TriggerGraph
)

func (k TriggerKind) String() string {
	switch k {
	case TriggerAction:
		return "action"
	case TriggerWalkTarget:
		return "walk_target"
	case TriggerTravel:
		return "travel"
	case TriggerKey:
		return "key"
	case TriggerCollision:
		return "collision"
	case TriggerPlan:
		return "plan"
	case TriggerGraph:
		return "graph"
	}
	return fmt.Sprintf("trigger(%d)", int(k))
}

// Trigger is one queued input. Only the fields of its Kind are read.
type Trigger struct {
	Kind       TriggerKind
	Action     string
	Constraint motionchart.Constraint
	Target     r3.Vec
	Distance   float64
	Key        Key
	Plan       motionchart.ActionSequence
	Graph      motionchart.TransitionGraph
	Start      motionchart.NodeID
}

func ActionTrigger(action string, c motionchart.Constraint) Trigger {
	return Trigger{Kind: TriggerAction, Action: action, Constraint: c}
}

func WalkTargetTrigger(target r3.Vec) Trigger {
	return Trigger{Kind: TriggerWalkTarget, Target: target}
}

func TravelTrigger(d float64) Trigger {
	return Trigger{Kind: TriggerTravel, Distance: d}
}

func KeyTrigger(k Key) Trigger {
	return Trigger{Kind: TriggerKey, Key: k}
}

func CollisionTrigger() Trigger {
	return Trigger{Kind: TriggerCollision}
}

func PlanTrigger(actions motionchart.ActionSequence) Trigger {
	return Trigger{Kind: TriggerPlan, Plan: actions}
}

func GraphTrigger(g motionchart.TransitionGraph, start motionchart.NodeID) Trigger {
	return Trigger{Kind: TriggerGraph, Graph: g, Start: start}
}

// TriggerWithMeta adds sequencing metadata for deterministic ordering.
type TriggerWithMeta struct {
	Trigger     Trigger
	SequenceNum uint64
	Priority    int
}

// sortTriggers orders by priority, highest first, then by submission.
func sortTriggers(triggers []TriggerWithMeta) {
	sort.SliceStable(triggers, func(i, j int) bool {
		if triggers[i].Priority != triggers[j].Priority {
			return triggers[i].Priority > triggers[j].Priority
		}
		return triggers[i].SequenceNum < triggers[j].SequenceNum
	})
}
