package worker

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed indicates the executor is shutting down and rejects new work.
var ErrClosed = errors.New("worker: executor closed")

// defaultWorkers bounds concurrent blocking jobs when no limit is given.
const defaultWorkers = 4

// Executor runs blocking functions with bounded concurrency.
//
// Thread Safety: All methods are safe for concurrent use.
type Executor struct {
	sem    chan struct{}
	done   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

// NewExecutor creates an executor allowing at most workers concurrent
// jobs. A non-positive value selects the default.
func NewExecutor(workers int) *Executor {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Executor{
		sem:  make(chan struct{}, workers),
		done: make(chan struct{}),
	}
}

// Do runs fn on a worker slot and waits for it to finish.
//
// The call returns fn's error, ctx.Err() if the context expires while
// waiting for a slot or for fn, or ErrClosed if the executor has shut
// down. A job already started keeps running to completion even when
// the caller's context expires; its result is then discarded.
func (e *Executor) Do(ctx context.Context, fn func() error) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	e.wg.Add(1)
	e.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		e.wg.Done()
		return ctx.Err()
	case <-e.done:
		e.wg.Done()
		return ErrClosed
	}

	result := make(chan error, 1)
	go func() {
		defer e.wg.Done()
		defer func() { <-e.sem }()
		result <- fn()
	}()

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting work and waits for running jobs to finish.
func (e *Executor) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	close(e.done)
	e.mu.Unlock()

	e.wg.Wait()
}
