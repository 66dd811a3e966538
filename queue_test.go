package motionchart_test

import (
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/comalice/motionchart"
)

func entry(i int) motionchart.Entry {
	return motionchart.Entry{Node: motionchart.Node("step", string(rune('a'+i%26))), Plan: uuid.New()}
}

func TestStateQueueFIFO(t *testing.T) {
	q := motionchart.NewStateQueue()
	if _, ok := q.PopFirst(); ok {
		t.Fatal("empty queue returned an entry")
	}
	var want []motionchart.Entry
	for i := 0; i < 5; i++ {
		e := entry(i)
		want = append(want, e)
		q.Push(e)
	}
	if q.Len() != 5 {
		t.Fatalf("expected 5 entries, got %d", q.Len())
	}
	for i, w := range want {
		got, ok := q.PopFirst()
		if !ok || got.Plan != w.Plan {
			t.Fatalf("pop %d: got %v, want %v", i, got.Plan, w.Plan)
		}
	}
}

func TestStateQueueWaitFirstTimesOut(t *testing.T) {
	q := motionchart.NewStateQueue()
	start := time.Now()
	if _, ok := q.WaitFirst(20 * time.Millisecond); ok {
		t.Fatal("empty queue returned an entry")
	}
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond || elapsed > time.Second {
		t.Errorf("wait not bounded by timeout: %v", elapsed)
	}

	start = time.Now()
	if _, ok := q.WaitFirst(0); ok {
		t.Fatal("empty queue returned an entry")
	}
	if time.Since(start) > 10*time.Millisecond {
		t.Error("zero timeout should not block")
	}
}

func TestStateQueueWaitFirstWakesOnPush(t *testing.T) {
	q := motionchart.NewStateQueue()
	e := entry(1)
	go func() {
		time.Sleep(10 * time.Millisecond)
		q.Push(e)
	}()
	got, ok := q.WaitFirst(time.Second)
	if !ok || got.Plan != e.Plan {
		t.Fatalf("expected pushed entry, got %v (%v)", got.Plan, ok)
	}
}

func TestStateQueueResetRejectsStaleWriter(t *testing.T) {
	q := motionchart.NewStateQueue()
	old := q.Writer(q.Generation())
	if !old.Push(entry(0)) {
		t.Fatal("current writer rejected")
	}

	q.Reset()
	if q.Len() != 0 {
		t.Fatalf("reset left %d entries", q.Len())
	}
	if q.Generation() != 1 {
		t.Errorf("expected generation 1, got %d", q.Generation())
	}
	if old.Push(entry(1)) {
		t.Error("stale writer accepted an entry")
	}
	if q.Len() != 0 {
		t.Error("stale entry became visible")
	}

	fresh := q.Writer(q.Generation())
	if !fresh.Push(entry(2)) || q.Len() != 1 {
		t.Error("fresh writer rejected")
	}
}

// TestStateQueueResetBarrier interleaves stale producers with resets and a
// consumer: once a reset has returned, nothing from an older generation may
// ever be popped.
func TestStateQueueResetBarrier(t *testing.T) {
	q := motionchart.NewStateQueue()
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				gen := q.Generation()
				q.Writer(gen).Push(motionchart.Entry{Node: motionchart.Node("gen", strconv.FormatUint(gen, 10))})
			}
		}()
	}

	var violations, popped atomic.Int64
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			floor := q.Generation()
			e, ok := q.WaitFirst(time.Millisecond)
			if !ok {
				continue
			}
			popped.Add(1)
			gen, err := strconv.ParseUint(e.Node.Primitive, 10, 64)
			if err != nil || gen < floor {
				violations.Add(1)
			}
		}
	}()

	for i := 0; i < 200; i++ {
		q.Reset()
		time.Sleep(100 * time.Microsecond)
	}
	close(stop)
	wg.Wait()

	if n := violations.Load(); n > 0 {
		t.Errorf("%d of %d entries came from a superseded generation", n, popped.Load())
	}
}
