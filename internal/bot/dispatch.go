package bot

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/4poc/zgbot/internal/logging"
)

// Dispatcher runs units of work on a bounded pool so blocking remote calls
// stay off the transport's single-threaded ingestion path. Each job gets a
// child logger tagged with a correlation id.
type Dispatcher struct {
	log logging.Logger
	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

// NewDispatcher builds a dispatcher running at most workers jobs at once.
func NewDispatcher(log logging.Logger, workers int64) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{log: log, sem: semaphore.NewWeighted(workers)}
}

// Dispatch schedules fn. It blocks while the pool is saturated and returns
// the context's error if ctx is done before a slot frees up; once a slot is
// acquired fn runs on its own goroutine and Dispatch returns nil.
func (d *Dispatcher) Dispatch(ctx context.Context, op string, fn func(ctx context.Context, log logging.Logger)) error {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		return err
	}

	jobLog := d.log.With("job", uuid.NewString(), "op", op)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer d.sem.Release(1)
		fn(ctx, jobLog)
	}()
	return nil
}

// Wait blocks until all dispatched jobs have finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
