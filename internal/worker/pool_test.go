package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type fakeResult struct {
	index int
	err   error
}

func (r *fakeResult) GetError() error { return r.err }

type fakeJob struct {
	index    int
	delay    time.Duration
	inFlight *int32
	peak     *int32
}

func (j *fakeJob) Execute(ctx context.Context) Result {
	if j.inFlight != nil {
		now := atomic.AddInt32(j.inFlight, 1)
		for {
			peak := atomic.LoadInt32(j.peak)
			if now <= peak || atomic.CompareAndSwapInt32(j.peak, peak, now) {
				break
			}
		}
		defer atomic.AddInt32(j.inFlight, -1)
	}
	if j.delay > 0 {
		time.Sleep(j.delay)
	}
	return &fakeResult{index: j.index}
}

func TestPool_PreservesSubmissionOrder(t *testing.T) {
	jobs := make([]Job, 20)
	for i := range jobs {
		// Later jobs finish sooner; slot order must still hold.
		jobs[i] = &fakeJob{index: i, delay: time.Duration(20-i) * time.Millisecond}
	}

	results := NewPool(8).Run(context.Background(), jobs)
	if len(results) != 20 {
		t.Fatalf("got %d results, want 20", len(results))
	}
	for i, r := range results {
		if r.(*fakeResult).index != i {
			t.Errorf("slot %d holds result %d", i, r.(*fakeResult).index)
		}
	}
}

func TestPool_RespectsCeiling(t *testing.T) {
	var inFlight, peak int32
	jobs := make([]Job, 30)
	for i := range jobs {
		jobs[i] = &fakeJob{index: i, delay: 5 * time.Millisecond, inFlight: &inFlight, peak: &peak}
	}

	NewPool(4).Run(context.Background(), jobs)

	if got := atomic.LoadInt32(&peak); got > 4 {
		t.Errorf("peak in-flight = %d, ceiling is 4", got)
	}
}

func TestPool_ZeroWorkersClampedToOne(t *testing.T) {
	var inFlight, peak int32
	jobs := []Job{
		&fakeJob{index: 0, delay: time.Millisecond, inFlight: &inFlight, peak: &peak},
		&fakeJob{index: 1, delay: time.Millisecond, inFlight: &inFlight, peak: &peak},
	}

	results := NewPool(0).Run(context.Background(), jobs)
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	if atomic.LoadInt32(&peak) != 1 {
		t.Errorf("peak = %d, want serial execution", peak)
	}
}

func TestPool_CancelledContextLeavesNilSlots(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := make([]Job, 5)
	for i := range jobs {
		jobs[i] = &fakeJob{index: i}
	}

	results := NewPool(2).Run(ctx, jobs)
	for i, r := range results {
		if r != nil {
			t.Errorf("slot %d ran despite cancelled context", i)
		}
	}
}
