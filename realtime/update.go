package realtime

import (
	"github.com/comalice/motionchart"
	"github.com/comalice/motionchart/internal/align"
)

// Update advances playback by dt seconds and emits one pose.
//
// When the active state ends, or was stopped by a collision, the next state
// comes from the planner's queue while a plan is in flight or entries remain
// and no explicit transitions are pending. Otherwise it is chosen from the
// graph. Update never joins the planner worker; its only wait is the bounded
// queue poll.
func (c *Controller) Update(dt float64) motionchart.Pose {
	c.mu.Lock()
	defer c.mu.Unlock()

	ended := c.state.Update(c.cfg.Speed * dt)
	if ended || c.stopCurrent {
		c.phase = PhaseTransitioning
		c.stopCurrent = false
		if c.useQueueLocked() {
			c.popNextStateLocked()
		} else {
			c.transitionToNextStateControlledLocked()
		}
		c.phase = PhasePlaying
	}

	pose := c.state.Pose()
	c.poses.Append(pose)
	if err := c.sink.UpdateTransformation(pose); err != nil {
		c.metrics.SinkError()
		c.logger.Warn("sink rejected pose", "tick", c.tick, "error", err)
	}
	c.tick++
	c.metrics.Tick()
	return pose
}

func (c *Controller) useQueueLocked() bool {
	return c.explicit.Len() == 0 && (c.processingLocked() || c.queue.Len() > 0)
}

// popNextStateLocked takes the next planned entry. If the planner cannot
// supply one within the query budget an idle state is synthesized instead.
func (c *Controller) popNextStateLocked() {
	for i := 0; i < c.cfg.MaxStateQueries; i++ {
		entry, ok := c.queue.WaitFirst(c.cfg.QueryWait)
		c.metrics.QueuePoll(ok)
		if ok && entry.State == nil {
			c.logger.Warn("dropping planned entry without a state", "node", entry.Node.String(), "plan", entry.Plan.String())
			continue
		}
		if ok {
			st := c.anchorLocked(entry)
			st.Play()
			c.setStateLocked(entry.Node, entry.Type, st, motionchart.SourceQueue, entry.Plan)
			return
		}
		if !c.processingLocked() && c.queue.Len() == 0 {
			// Plan finished without more entries; resume graph control.
			c.transitionToNextStateControlledLocked()
			return
		}
	}
	c.logger.Debug("planner not ready, holding idle", "queries", c.cfg.MaxStateQueries)
	c.synthesizeIdleLocked()
}

// anchorLocked moves a planned segment so it starts at the last played pose.
// The planner aligned it with the history captured when the plan began, and
// playback has moved on since.
func (c *Controller) anchorLocked(e motionchart.Entry) *motionchart.MotionState {
	frames := e.State.Frames()
	last, ok := c.poses.Last()
	if !ok || len(frames) == 0 {
		return e.State
	}
	if n := len(e.Poses); n > 0 {
		c.logger.Debug("anchoring planned segment",
			"node", e.Node.String(),
			"drift", align.GroundDistance(e.Poses[n-1].Root, last.Root),
		)
	}
	tr := align.Between(last, frames[0])
	if tr.IsIdentity() {
		return e.State
	}
	st, err := motionchart.NewMotionState(tr.Apply(frames), e.State.FrameTime())
	if err != nil {
		return e.State
	}
	return st
}

// synthesizeIdleLocked holds the most recent pose as an idle state.
func (c *Controller) synthesizeIdleLocked() {
	c.metrics.Starvation()
	if last, ok := c.poses.Last(); ok {
		st := motionchart.HoldState(last, c.cfg.IdleHoldFrames, c.cfg.FrameTime)
		st.Play()
		c.setStateLocked(c.idle, motionchart.NodeIdle, st, motionchart.SourceIdle, c.currentPlan)
		return
	}
	frames, err := c.graph.Sample(c.idle)
	if err != nil {
		c.logger.Error("sample idle node failed", "node", c.idle.String(), "error", err)
		frames = motionchart.Frames{{}}
	}
	if err := c.playLocked(c.idle, motionchart.NodeIdle, frames, motionchart.SourceIdle); err != nil {
		c.logger.Error("idle state rejected", "error", err)
	}
}
