package extensibility

import (
	"context"
	"log/slog"
	"time"

	"github.com/comalice/motionchart/realtime"
)

// TriggerSource produces runtime triggers from outside the tick loop.
type TriggerSource interface {
	Triggers() <-chan realtime.Trigger
}

// Sender accepts triggers; *realtime.Runtime implements it.
type Sender interface {
	Send(t realtime.Trigger) error
}

// ChannelTriggerSource is a TriggerSource backed by a Go channel.
type ChannelTriggerSource struct {
	ch chan realtime.Trigger
}

// NewChannelTriggerSource wraps ch. The channel should be buffered if the
// producer must not block on a slow tick.
func NewChannelTriggerSource(ch chan realtime.Trigger) *ChannelTriggerSource {
	return &ChannelTriggerSource{ch: ch}
}

func (s *ChannelTriggerSource) Triggers() <-chan realtime.Trigger {
	return s.ch
}

// TimerTriggerSource emits the trigger returned by next every period.
// Useful for scripted demos and soak tests.
type TimerTriggerSource struct {
	ch     chan realtime.Trigger
	next   func() realtime.Trigger
	ticker *time.Ticker
	stop   chan struct{}
}

// NewTimerTriggerSource starts emitting immediately.
func NewTimerTriggerSource(next func() realtime.Trigger, d time.Duration) *TimerTriggerSource {
	s := &TimerTriggerSource{
		ch:     make(chan realtime.Trigger, 10),
		next:   next,
		ticker: time.NewTicker(d),
		stop:   make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *TimerTriggerSource) run() {
	for {
		select {
		case <-s.ticker.C:
			select {
			case s.ch <- s.next():
			default:
				// drop if full
			}
		case <-s.stop:
			s.ticker.Stop()
			close(s.ch)
			return
		}
	}
}

func (s *TimerTriggerSource) Triggers() <-chan realtime.Trigger {
	return s.ch
}

// Stop stops the ticker and closes the channel.
func (s *TimerTriggerSource) Stop() {
	close(s.stop)
}

// Pump forwards triggers from src to dst until ctx is done or src closes.
// Send failures are logged and the trigger is dropped.
func Pump(ctx context.Context, src TriggerSource, dst Sender, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	ch := src.Triggers()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t, ok := <-ch:
			if !ok {
				return nil
			}
			if err := dst.Send(t); err != nil {
				logger.Warn("trigger dropped", "kind", t.Kind.String(), "error", err)
			}
		}
	}
}
