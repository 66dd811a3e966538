package realtime

import (
	"errors"
	"fmt"
)

// processTick runs one complete tick.
func (rt *Runtime) processTick() {
	// Phase 1: collect triggers atomically
	triggers := rt.collectTriggers()

	// Phase 2: deterministic order
	sortTriggers(triggers)

	// Phase 3: apply
	for _, t := range triggers {
		if err := rt.apply(t.Trigger); err != nil {
			attrs := []any{"kind", t.Trigger.Kind.String(), "seq", t.SequenceNum, "error", err}
			if errors.Is(err, ErrActionNotPermitted) {
				rt.logger.Debug("trigger refused", attrs...)
				continue
			}
			rt.logger.Warn("trigger failed", attrs...)
		}
	}

	// Phase 4: advance playback
	pose := rt.Controller.Update(rt.tickRate.Seconds())
	if rt.onPose != nil {
		rt.onPose(rt.TickNumber(), pose)
	}
}

func (rt *Runtime) collectTriggers() []TriggerWithMeta {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()

	triggers := rt.batch
	rt.batch = make([]TriggerWithMeta, 0, cap(rt.batch))
	return triggers
}

func (rt *Runtime) apply(t Trigger) error {
	c := rt.Controller
	switch t.Kind {
	case TriggerAction:
		return c.PerformAction(t.Action, t.Constraint)
	case TriggerWalkTarget:
		c.SetWalkTarget(t.Target)
	case TriggerTravel:
		c.SetTravelDistance(t.Distance)
	case TriggerKey:
		return c.HandleKeyboardInput(t.Key)
	case TriggerCollision:
		c.HandleCollision()
	case TriggerPlan:
		_, err := c.EnqueueStates(t.Plan)
		return err
	case TriggerGraph:
		return c.SetGraph(t.Graph, t.Start)
	default:
		return fmt.Errorf("unknown trigger kind %v", t.Kind)
	}
	return nil
}
