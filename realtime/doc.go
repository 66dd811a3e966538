// Package realtime schedules motion playback over a transition graph.
//
// A Controller plays one motion state at a time and emits a pose per
// Update. When the state ends the next one comes from one of three places:
//   - the explicit transition queue filled by actions
//   - the state queue filled by the background planner worker
//   - a random graph edge of the type the transition policy asks for
//
// At most one planner worker exists. EnqueueStates stops and joins the old
// worker, clears the state queue and only then spawns the new one, so no
// stale entry survives a replan, collision or graph swap.
//
// # Example Usage
//
//	g, _ := motionchart.NewGraphBuilder(). /* nodes */ Build()
//	ctrl, _ := realtime.New(g, g.Idle(), realtime.Config{})
//	rt := realtime.NewRuntime(ctrl, realtime.RuntimeConfig{
//		TickRate: 16667 * time.Microsecond, // 60 FPS
//	})
//	rt.Start(ctx)
//	rt.Send(realtime.ActionTrigger("pickLeft", motionchart.Constraint{}))
//
// # Trigger Ordering
//
// Triggers sent to a Runtime are applied at the start of the next tick:
//  1. Priority (higher first)
//  2. Sequence number (FIFO for equal priority)
//
// Without background plans, the same trigger sequence against the same
// seeded graph replays the same walk.
package realtime
