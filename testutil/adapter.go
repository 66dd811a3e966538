package testutil

import (
	"time"

	"github.com/comalice/motionchart"
	"github.com/comalice/motionchart/realtime"
)

// Driver provides a common interface for stepping a controller directly
// or through a Runtime's tick loop, so the same scenario runs against both.
type Driver interface {
	Controller() *realtime.Controller
	Tick(n int)
	PerformAction(action string, c motionchart.Constraint) error
	Collide()
	Close() error
}

// DirectDriver calls Update itself.
type DirectDriver struct {
	ctrl *realtime.Controller
	dt   float64
}

// NewDirectDriver steps ctrl by dt seconds per tick.
func NewDirectDriver(ctrl *realtime.Controller, dt float64) *DirectDriver {
	return &DirectDriver{ctrl: ctrl, dt: dt}
}

func (d *DirectDriver) Controller() *realtime.Controller { return d.ctrl }

func (d *DirectDriver) Tick(n int) {
	for i := 0; i < n; i++ {
		d.ctrl.Update(d.dt)
	}
}

func (d *DirectDriver) PerformAction(action string, c motionchart.Constraint) error {
	return d.ctrl.PerformAction(action, c)
}

func (d *DirectDriver) Collide() { d.ctrl.HandleCollision() }

func (d *DirectDriver) Close() error { return d.ctrl.Close() }

// RuntimeDriver routes input through Runtime triggers and steps the runtime
// synchronously, without starting its ticker.
type RuntimeDriver struct {
	rt *realtime.Runtime
}

// NewRuntimeDriver wraps ctrl in a Runtime ticking at rate.
func NewRuntimeDriver(ctrl *realtime.Controller, rate time.Duration) *RuntimeDriver {
	return &RuntimeDriver{rt: realtime.NewRuntime(ctrl, realtime.RuntimeConfig{TickRate: rate})}
}

func (d *RuntimeDriver) Controller() *realtime.Controller { return d.rt.Controller }

func (d *RuntimeDriver) Runtime() *realtime.Runtime { return d.rt }

func (d *RuntimeDriver) Tick(n int) {
	for i := 0; i < n; i++ {
		d.rt.Step()
	}
}

// PerformAction sends the trigger and applies it with one tick. Refusals
// are logged by the runtime rather than returned, so this only reports a
// full trigger queue.
func (d *RuntimeDriver) PerformAction(action string, c motionchart.Constraint) error {
	if err := d.rt.Send(realtime.ActionTrigger(action, c)); err != nil {
		return err
	}
	d.rt.Step()
	return nil
}

func (d *RuntimeDriver) Collide() {
	_ = d.rt.SendWithPriority(realtime.CollisionTrigger(), 10)
}

func (d *RuntimeDriver) Close() error { return d.rt.Stop() }
