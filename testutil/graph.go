// Package testutil holds fixtures and fakes shared by motionchart tests.
package testutil

import (
	"testing"

	"github.com/comalice/motionchart"
)

// Node IDs of the locomotion fixture.
var (
	WalkIdle     = motionchart.Node("walk", "idle")
	WalkStart    = motionchart.Node("walk", "start")
	WalkStandard = motionchart.Node("walk", "standard")
	WalkEnd      = motionchart.Node("walk", "end")
	PickReach    = motionchart.Node("pickLeft", "reach")
	PickRetrieve = motionchart.Node("pickLeft", "retrieve")
	TurnLeft     = motionchart.Node("turnLeft", "turn")
	Wave         = motionchart.Node("wave", "wave")
)

// LocomotionBuilder returns the builder of the locomotion fixture so tests
// can extend it before building.
func LocomotionBuilder() *motionchart.GraphBuilder {
	joints := []string{"hip", "knee", "shoulder"}
	return motionchart.NewGraphBuilder().
		Seed(7).
		Node("walk:idle", motionchart.NodeIdle).
		Clip(motionchart.Clip{Frames: 10, Joints: joints}).
		To("walk:start").
		Node("walk:start", motionchart.NodeStart).
		Clip(motionchart.Clip{Frames: 8, Stride: 0.05, Joints: joints}).
		To("walk:standard", "walk:end").
		Node("walk:standard", motionchart.NodeStandard).
		Clip(motionchart.Clip{Frames: 12, Stride: 0.08, Noise: 0.1, Joints: joints}).
		To("walk:standard", "walk:end").
		Node("walk:end", motionchart.NodeEnd).
		Clip(motionchart.Clip{Frames: 6, Stride: 0.02, Joints: joints}).
		To("walk:idle").
		Node("pickLeft:reach", motionchart.NodeSingle).
		Clip(motionchart.Clip{Frames: 10, Joints: joints}).
		Node("pickLeft:retrieve", motionchart.NodeSingle).
		Clip(motionchart.Clip{Frames: 10, Joints: joints}).
		Node("turnLeft:turn", motionchart.NodeSingle).
		Clip(motionchart.Clip{Frames: 10, Turn: 0.05, Joints: joints}).
		Node("wave:wave", motionchart.NodeSingle).
		Clip(motionchart.Clip{Frames: 4, Joints: joints}).
		Done().
		Action("pickLeft", motionchart.CategoryManipulation, "reach", "retrieve").
		Action("turnLeft", motionchart.CategoryLocomotion, "turn").
		Action("wave", motionchart.CategoryLocomotion, "wave")
}

// LocomotionGraph builds the locomotion fixture: a walk cycle around
// walk:idle, the two step pickLeft manipulation, turnLeft and wave.
func LocomotionGraph(tb testing.TB) *motionchart.Graph {
	tb.Helper()
	g, err := LocomotionBuilder().Build()
	if err != nil {
		tb.Fatalf("build locomotion graph: %v", err)
	}
	return g
}

// StandGraph builds a graph with a single idle node named stand:idle.
func StandGraph(tb testing.TB) *motionchart.Graph {
	tb.Helper()
	g, err := motionchart.NewGraphBuilder().
		Node("stand:idle", motionchart.NodeIdle).
		Clip(motionchart.Clip{Frames: 5}).
		To("stand:idle").
		Done().
		Build()
	if err != nil {
		tb.Fatalf("build stand graph: %v", err)
	}
	return g
}
