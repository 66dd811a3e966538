package extensibility

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/comalice/motionchart/internal/logging"
	"github.com/comalice/motionchart/realtime"
)

func TestChannelTriggerSource(t *testing.T) {
	ch := make(chan realtime.Trigger, 1)
	s := NewChannelTriggerSource(ch)
	ch <- realtime.CollisionTrigger()
	if tr := <-s.Triggers(); tr.Kind != realtime.TriggerCollision {
		t.Errorf("wrong trigger kind %v", tr.Kind)
	}
}

func TestTimerTriggerSource(t *testing.T) {
	s := NewTimerTriggerSource(func() realtime.Trigger {
		return realtime.TravelTrigger(2)
	}, 20*time.Millisecond)
	defer s.Stop()

	for i := 0; i < 2; i++ {
		select {
		case tr := <-s.Triggers():
			if tr.Kind != realtime.TriggerTravel || tr.Distance != 2 {
				t.Errorf("wrong trigger %d: %v %v", i, tr.Kind, tr.Distance)
			}
		case <-time.After(200 * time.Millisecond):
			t.Fatalf("no trigger %d received", i)
		}
	}
}

func TestTimerTriggerSource_Stop(t *testing.T) {
	s := NewTimerTriggerSource(realtime.CollisionTrigger, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	s.Stop()
	for range s.Triggers() {
		// drain until closed
	}
}

type recordingSender struct {
	mu   sync.Mutex
	got  []realtime.Trigger
	fail bool
}

func (s *recordingSender) Send(t realtime.Trigger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("full")
	}
	s.got = append(s.got, t)
	return nil
}

func TestPumpForwardsUntilClosed(t *testing.T) {
	ch := make(chan realtime.Trigger, 3)
	ch <- realtime.TravelTrigger(1)
	ch <- realtime.CollisionTrigger()
	close(ch)

	dst := &recordingSender{}
	if err := Pump(context.Background(), NewChannelTriggerSource(ch), dst, logging.Discard()); err != nil {
		t.Fatalf("Pump failed: %v", err)
	}
	if len(dst.got) != 2 || dst.got[1].Kind != realtime.TriggerCollision {
		t.Errorf("unexpected triggers %v", dst.got)
	}
}

func TestPumpStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Pump(ctx, NewChannelTriggerSource(make(chan realtime.Trigger)), &recordingSender{fail: true}, nil)
	}()
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Pump did not return after cancel")
	}
}
