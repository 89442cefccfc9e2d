package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

// Pool runs jobs with a fixed in-flight ceiling. The ceiling is a
// constructor parameter so orchestration is testable without a network.
type Pool struct {
	workers int
}

// NewPool creates a pool with the given concurrency ceiling.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Run executes every job with at most p.workers in flight and returns
// results in submission order. Each goroutine writes only its own index
// slot, so workers never contend on shared state and output order is
// independent of completion timing.
//
// If ctx is cancelled before a job acquires a worker slot, its result
// stays nil; callers treat nil as a cancelled item.
func (p *Pool) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	sem := make(chan struct{}, p.workers)
	var wg sync.WaitGroup

	for i, job := range jobs {
		wg.Add(1)
		go func(idx int, j Job) {
			defer wg.Done()

			if ctx.Err() != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			case sem <- struct{}{}:
			}
			defer func() { <-sem }()

			results[idx] = j.Execute(ctx)
		}(i, job)
	}

	wg.Wait()
	return results
}
