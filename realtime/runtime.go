package realtime

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/comalice/motionchart"
)

var (
	ErrTriggerQueueFull = errors.New("trigger queue full")
	ErrRuntimeStarted   = errors.New("runtime already started")
)

// Runtime drives a Controller at a fixed tick rate. Triggers sent between
// ticks are batched and applied in deterministic order before the tick's
// Update.
type Runtime struct {
	*Controller

	tickRate time.Duration
	ticker   *time.Ticker
	tickNum  uint64
	logger   *slog.Logger

	batch       []TriggerWithMeta
	batchMu     sync.Mutex
	sequenceNum uint64

	onPose func(tick uint64, pose motionchart.Pose)

	tickCtx    context.Context
	tickCancel context.CancelFunc
	stopped    chan struct{}
}

// RuntimeConfig configures the tick loop.
type RuntimeConfig struct {
	TickRate           time.Duration // default 60 FPS
	MaxTriggersPerTick int           // default 1000
}

// NewRuntime wraps ctrl in a tick loop.
func NewRuntime(ctrl *Controller, cfg RuntimeConfig) *Runtime {
	if cfg.MaxTriggersPerTick == 0 {
		cfg.MaxTriggersPerTick = 1000
	}
	if cfg.TickRate == 0 {
		cfg.TickRate = 16667 * time.Microsecond
	}
	return &Runtime{
		Controller: ctrl,
		tickRate:   cfg.TickRate,
		logger:     ctrl.logger,
		batch:      make([]TriggerWithMeta, 0, cfg.MaxTriggersPerTick),
		stopped:    make(chan struct{}),
	}
}

// OnPose registers a callback invoked with every emitted pose. It must be
// set before Start.
func (rt *Runtime) OnPose(fn func(tick uint64, pose motionchart.Pose)) {
	rt.onPose = fn
}

// Start begins ticking until ctx is cancelled or Stop is called.
func (rt *Runtime) Start(ctx context.Context) error {
	if rt.tickCancel != nil {
		return ErrRuntimeStarted
	}
	rt.tickCtx, rt.tickCancel = context.WithCancel(ctx)
	rt.ticker = time.NewTicker(rt.tickRate)
	go rt.tickLoop()
	rt.logger.Info("runtime started", "tick_rate", rt.tickRate)
	return nil
}

// Stop ends the tick loop and closes the controller.
func (rt *Runtime) Stop() error {
	if rt.tickCancel == nil {
		return rt.Controller.Close()
	}
	rt.tickCancel()
	rt.ticker.Stop()
	<-rt.stopped
	rt.logger.Info("runtime stopped", "ticks", rt.TickNumber())
	return rt.Controller.Close()
}

func (rt *Runtime) tickLoop() {
	defer close(rt.stopped)
	for {
		select {
		case <-rt.tickCtx.Done():
			return
		case <-rt.ticker.C:
			rt.Step()
		}
	}
}

// Step runs one tick synchronously. A panic inside the tick is logged and
// the loop continues.
func (rt *Runtime) Step() {
	func() {
		defer func() {
			if r := recover(); r != nil {
				rt.logger.Error("tick panicked", "tick", rt.TickNumber(), "panic", r)
			}
		}()
		rt.processTick()
	}()

	rt.batchMu.Lock()
	rt.tickNum++
	rt.batchMu.Unlock()
}

// Send queues a trigger for the next tick.
func (rt *Runtime) Send(t Trigger) error {
	return rt.SendWithPriority(t, 0)
}

// SendWithPriority queues a trigger; higher priorities apply first.
func (rt *Runtime) SendWithPriority(t Trigger, priority int) error {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()

	if len(rt.batch) >= cap(rt.batch) {
		return ErrTriggerQueueFull
	}
	rt.batch = append(rt.batch, TriggerWithMeta{
		Trigger:     t,
		SequenceNum: rt.sequenceNum,
		Priority:    priority,
	})
	rt.sequenceNum++
	return nil
}

// TickNumber returns the number of completed ticks.
func (rt *Runtime) TickNumber() uint64 {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()
	return rt.tickNum
}

// TickRate returns the configured tick period.
func (rt *Runtime) TickRate() time.Duration { return rt.tickRate }
