// Package benchmarks provides performance benchmarks for queue and planner throughput.
package benchmarks

import (
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/comalice/motionchart"
)

func BenchmarkQueuePushPop(b *testing.B) {
	q := motionchart.NewStateQueue()
	w := q.Writer(q.Generation())
	e := motionchart.Entry{Node: motionchart.Node("walk", "idle")}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Push(e)
		if _, ok := q.PopFirst(); !ok {
			b.Fatal("empty queue")
		}
	}
}

// BenchmarkQueueHandoff measures a producer goroutine feeding a consumer
// blocked in WaitFirst.
func BenchmarkQueueHandoff(b *testing.B) {
	q := motionchart.NewStateQueue()
	w := q.Writer(q.Generation())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < b.N; i++ {
			w.Push(motionchart.Entry{})
		}
	}()

	b.ResetTimer()
	for got := 0; got < b.N; {
		if _, ok := q.WaitFirst(time.Millisecond); ok {
			got++
		}
	}
	b.StopTimer()
	wg.Wait()
}

// BenchmarkQueueResetUnderLoad measures Reset while a stale producer keeps
// pushing and being rejected.
func BenchmarkQueueResetUnderLoad(b *testing.B) {
	q := motionchart.NewStateQueue()
	stale := q.Writer(q.Generation())
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				stale.Push(motionchart.Entry{})
				runtime.Gosched()
			}
		}
	}()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.Reset()
	}
	b.StopTimer()
	close(stop)
}

// BenchmarkPlanThroughput measures a full background plan: spawn, sample
// and queue every node of the sequence.
func BenchmarkPlanThroughput(b *testing.B) {
	ctrl := NewController(b, GenWalkConfig(8))
	seq := motionchart.ActionSequence{}
	for _, a := range []string{"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7"} {
		seq = append(seq, motionchart.ActionRequest{Action: a})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ctrl.EnqueueStates(seq); err != nil {
			b.Fatal(err)
		}
		for ctrl.Processing() {
			runtime.Gosched()
		}
	}
	b.StopTimer()
	b.ReportMetric(float64(len(seq)), "entries/plan")
}
