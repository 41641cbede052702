package identify

import (
	"context"
	"fmt"
	"sync"

	"github.com/knight-ops/inkwell/internal/match"
)

// poolTask is one unit of CPU-bound work submitted to the Pool, paired
// with a channel to deliver its result back to the submitting goroutine.
// This is the same jobs-channel shape the teacher's bounded downloader
// worker pool uses, adapted here to a generic blocking-task submission
// rather than byte-range download jobs.
type poolTask struct {
	fn     func() (match.Result, error)
	result chan poolResult
}

type poolResult struct {
	res match.Result
	err error
}

// Pool is a fixed-size pool of goroutines dedicated to CPU-bound
// decode/extract/match work, so the request-accepting scheduler never
// blocks behind it (§4.9, §5).
type Pool struct {
	tasks chan poolTask
	wg    sync.WaitGroup
}

// NewPool starts size worker goroutines and returns the ready Pool. A
// non-positive size is treated as 1.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{tasks: make(chan poolTask)}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for t := range p.tasks {
		res, err := t.fn()
		t.result <- poolResult{res: res, err: err}
	}
}

// Submit hands fn to a free worker and blocks until it completes or ctx is
// canceled first, in which case Submit returns ctx.Err() without waiting
// for the (still-running) task.
func (p *Pool) Submit(ctx context.Context, fn func() (match.Result, error)) (match.Result, error) {
	t := poolTask{fn: fn, result: make(chan poolResult, 1)}
	select {
	case p.tasks <- t:
	case <-ctx.Done():
		return match.Result{}, fmt.Errorf("identify: pool submit: %w", ctx.Err())
	}

	select {
	case r := <-t.result:
		return r.res, r.err
	case <-ctx.Done():
		return match.Result{}, fmt.Errorf("identify: pool wait: %w", ctx.Err())
	}
}

// Close stops accepting new tasks and waits for in-flight workers to drain.
func (p *Pool) Close() {
	close(p.tasks)
	p.wg.Wait()
}
