package realtime

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/comalice/motionchart"
)

// TransitionToAction queues the node sequence of action and switches to its
// first node immediately. While a non interruptible action plays the request
// is refused with ErrActionNotPermitted and nothing changes. Requested from
// idle, the walk returns to the idle node afterwards.
func (c *Controller) TransitionToAction(action string, constraint motionchart.Constraint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transitionToActionLocked(action, constraint)
}

func (c *Controller) transitionToActionLocked(action string, constraint motionchart.Constraint) error {
	info, ok := c.graph.Action(action)
	if !ok || len(info.Sequence) == 0 {
		c.metrics.ActionRequest(false)
		return fmt.Errorf("transition to %q: %w", action, motionchart.ErrUnknownAction)
	}
	if cur, ok := c.graph.Action(c.current.Action); ok && !cur.Category.Interruptible() {
		c.metrics.ActionRequest(false)
		c.logger.Debug("action request refused", "action", action, "current", c.current.String())
		return fmt.Errorf("transition to %q during %q: %w", action, c.current.Action, ErrActionNotPermitted)
	}

	steps := append([]motionchart.QueuedNode(nil), info.Sequence...)
	steps[len(steps)-1].Constraint = constraint
	if c.currentType == motionchart.NodeIdle {
		steps = append(steps, motionchart.QueuedNode{Node: c.idle, Type: motionchart.NodeIdle})
	}
	c.explicit.Clear()
	c.explicit.Push(steps...)
	c.metrics.ActionRequest(true)
	c.logger.Info("action started", "action", action, "steps", len(steps))

	c.phase = PhaseTransitioning
	c.transitionToNextStateControlledLocked()
	c.phase = PhasePlaying
	return nil
}

// PerformAction is the navigation entry point for a named action.
func (c *Controller) PerformAction(action string, constraint motionchart.Constraint) error {
	return c.TransitionToAction(action, constraint)
}

// HandleCollision interrupts everything: the plan is stopped and its queue
// cleared, pending transitions and navigation goals are dropped and the
// active state ends on the next Update.
func (c *Controller) HandleCollision() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopWorkerLocked()
	c.queue.Reset()
	c.explicit.Clear()
	c.hasTarget = false
	c.travel = 0
	c.stopCurrent = true
	c.metrics.Collision()
	c.logger.Info("collision handled", "node", c.current.String())
}

// SetGraph swaps the transition graph. start must be an idle node of the new
// graph; otherwise ErrNoIdleNode is returned and the old graph stays. Any
// running plan is stopped and the controller restarts from start, aligned
// with the current pose.
func (c *Controller) SetGraph(graph motionchart.TransitionGraph, start motionchart.NodeID) error {
	if graph == nil {
		return errors.New("set graph: nil transition graph")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if typ, ok := graph.NodeType(start); !ok || typ != motionchart.NodeIdle {
		return fmt.Errorf("set graph: start node %s: %w", start, motionchart.ErrNoIdleNode)
	}
	frames, err := graph.Sample(start)
	if err != nil {
		return fmt.Errorf("set graph: sample %s: %w", start, err)
	}

	c.stopWorkerLocked()
	c.queue.Reset()
	c.graph = graph
	c.idle = start
	c.planner = c.plannerFor(graph)
	c.explicit.Clear()
	c.stopCurrent = false
	if err := c.playLocked(start, motionchart.NodeIdle, frames, motionchart.SourceGraph); err != nil {
		return fmt.Errorf("set graph: %w", err)
	}
	c.logger.Info("graph replaced", "start", start.String())
	return nil
}

// SetWalkTarget makes locomotion head for target until it is within the
// arrival radius.
func (c *Controller) SetWalkTarget(target r3.Vec) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = target
	c.hasTarget = true
}

// ClearWalkTarget drops the walk target.
func (c *Controller) ClearWalkTarget() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hasTarget = false
}

// WalkTarget returns the walk target if one is set.
func (c *Controller) WalkTarget() (r3.Vec, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target, c.hasTarget
}

// SetTravelDistance sets the free travel distance used without a target.
func (c *Controller) SetTravelDistance(d float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.travel = max(d, 0)
}

// TravelDistance returns the remaining free travel distance.
func (c *Controller) TravelDistance() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.travel
}

// KeyKind enumerates keyboard commands.
type KeyKind int

const (
	KeyForward KeyKind = iota
	KeyStop
	KeyTurnLeft
	KeyTurnRight
	KeyAction
)

func (k KeyKind) String() string {
	switch k {
	case KeyForward:
		return "forward"
	case KeyStop:
		return "stop"
	case KeyTurnLeft:
		return "turn_left"
	case KeyTurnRight:
		return "turn_right"
	case KeyAction:
		return "action"
	}
	return "unknown"
}

// Key is a keyboard command. Action names the action for KeyAction.
type Key struct {
	Kind   KeyKind
	Action string
}

// ActionKey returns the key that performs action.
func ActionKey(action string) Key { return Key{Kind: KeyAction, Action: action} }

// HandleKeyboardInput maps a key to navigation: forward adds travel, stop
// clears all goals, and the turn and action keys request actions.
func (c *Controller) HandleKeyboardInput(key Key) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch key.Kind {
	case KeyForward:
		c.travel += c.cfg.KeyStepDistance
		return nil
	case KeyStop:
		c.travel = 0
		c.hasTarget = false
		return nil
	case KeyTurnLeft:
		return c.transitionToActionLocked(c.cfg.TurnLeftAction, motionchart.Constraint{})
	case KeyTurnRight:
		return c.transitionToActionLocked(c.cfg.TurnRightAction, motionchart.Constraint{})
	case KeyAction:
		return c.transitionToActionLocked(key.Action, motionchart.Constraint{})
	}
	return fmt.Errorf("unknown key %d", key.Kind)
}
