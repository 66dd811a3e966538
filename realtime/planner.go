package realtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/comalice/motionchart"
)

// planWorker is the handle of the single background planner goroutine.
type planWorker struct {
	id      uuid.UUID
	cancel  context.CancelFunc
	done    chan struct{}
	started time.Time
	err     error // set before done is closed
}

func (w *planWorker) running() bool {
	select {
	case <-w.done:
		return false
	default:
		return true
	}
}

// stop raises the stop flag and joins the goroutine.
func (w *planWorker) stop() {
	w.cancel()
	<-w.done
}

// EnqueueStates replaces any running plan with a new one for actions. The
// old worker is stopped and joined before the queue is cleared and the new
// worker is spawned, so at most one worker ever writes to the queue.
func (c *Controller) EnqueueStates(actions motionchart.ActionSequence) (uuid.UUID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return uuid.Nil, ErrClosed
	}
	for _, a := range actions {
		if _, ok := c.graph.Action(a.Action); !ok {
			return uuid.Nil, fmt.Errorf("enqueue %q: %w", a.Action, motionchart.ErrUnknownAction)
		}
	}
	return c.enqueueStatesLocked(actions), nil
}

// Processing reports whether a planner worker is running.
func (c *Controller) Processing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processingLocked()
}

// Plan returns the id of the latest plan, or uuid.Nil if none was started.
func (c *Controller) Plan() uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.worker == nil {
		return uuid.Nil
	}
	return c.worker.id
}

// LastPlanError returns the error the latest plan finished with. It is nil
// while the plan is running, after it succeeded, or once it was replaced.
func (c *Controller) LastPlanError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.worker == nil || c.worker.running() {
		return nil
	}
	return c.worker.err
}

func (c *Controller) enqueueStatesLocked(actions motionchart.ActionSequence) uuid.UUID {
	c.stopWorkerLocked()
	c.queue.Reset()

	ctx, cancel := context.WithCancel(context.Background())
	w := &planWorker{
		id:      uuid.New(),
		cancel:  cancel,
		done:    make(chan struct{}),
		started: time.Now(),
	}
	req := motionchart.PlanRequest{
		ID:        w.id,
		Actions:   actions.Clone(),
		Start:     c.current,
		StartType: c.currentType,
		Poses:     c.poses.Snapshot(),
		DT:        c.cfg.FrameTime,
	}
	p, out := c.planner, c.queue.Writer(c.queue.Generation())
	logger, m := c.logger.With("plan", w.id.String()), c.metrics

	m.PlanStarted()
	go func() {
		defer close(w.done)
		defer func() { m.PlanFinished(time.Since(w.started)) }()
		defer func() {
			if r := recover(); r != nil {
				w.err = fmt.Errorf("planner panic: %v", r)
				logger.Error("planner panicked", "panic", r)
			}
		}()

		err := p.GenerateMotionStates(ctx, req, out)
		w.err = err
		switch {
		case err == nil:
			logger.Debug("plan complete", "elapsed", time.Since(w.started))
		case errors.Is(err, context.Canceled):
			logger.Debug("plan cancelled")
		default:
			logger.Warn("plan failed", "error", err)
		}
	}()

	c.worker = w
	c.logger.Info("plan started", "plan", w.id.String(), "actions", len(actions))
	return w.id
}

func (c *Controller) stopWorkerLocked() {
	if c.worker == nil {
		return
	}
	if c.worker.running() {
		c.worker.stop()
		c.logger.Debug("plan stopped", "plan", c.worker.id.String())
	}
	c.worker = nil
}

func (c *Controller) processingLocked() bool {
	return c.worker != nil && c.worker.running()
}
