// Package motionchart provides the data model of the motion-state scheduler:
// graph nodes, poses, playback cursors, the rolling pose history and the
// queue that carries planned segments from the planner worker to the tick.
//
// The scheduler itself lives in package realtime. A minimal setup:
//
//	g, _ := motionchart.NewGraphBuilder().
//		Node("walk:idle", motionchart.NodeIdle).Clip(motionchart.Clip{Frames: 30}).To("walk:start").
//		Node("walk:start", motionchart.NodeStart).Clip(motionchart.Clip{Frames: 20, Stride: 0.03}).To("walk:idle").
//		Done().Build()
//	ctrl, _ := realtime.New(g, g.Idle(), realtime.DefaultConfig())
//	for {
//		ctrl.Update(1.0 / 60)
//	}
//
// # Ownership
//
// StateQueue is the only value shared between goroutines. PoseBuffer and
// MotionState belong to the controller; the planner worker sees copies.
package motionchart
