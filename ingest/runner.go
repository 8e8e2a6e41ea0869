package ingest

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/semaphore"
)

// Task is one unit of partition-level work, identified by partition index
type Task func(ctx context.Context, partition int) error

// TaskRunner fans a fixed number of Tasks out across workers and waits for
// all of them, aggregating any failures
type TaskRunner interface {
	// Run executes numTasks Tasks, returning nil iff all of them succeeded
	Run(ctx context.Context, numTasks int, task Task) error
}

// LocalTaskRunner runs Tasks on goroutines within this process, bounded by
// a concurrency limit
type LocalTaskRunner struct {
	maxConcurrency int64
}

// CreateLocalTaskRunner is a factory for LocalTaskRunners. maxConcurrency
// values below 1 are treated as 1.
func CreateLocalTaskRunner(maxConcurrency int) *LocalTaskRunner {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &LocalTaskRunner{maxConcurrency: int64(maxConcurrency)}
}

// Run executes every Task even when some fail, so each failed partition is
// represented in the aggregated error
func (r *LocalTaskRunner) Run(ctx context.Context, numTasks int, task Task) error {
	sem := semaphore.NewWeighted(r.maxConcurrency)
	var wg sync.WaitGroup
	var errLock sync.Mutex
	var errs *multierror.Error
	for i := 0; i < numTasks; i++ {
		if err := sem.Acquire(ctx, 1); err != nil {
			errLock.Lock()
			errs = multierror.Append(errs, err)
			errLock.Unlock()
			break
		}
		wg.Add(1)
		go func(partition int) {
			defer wg.Done()
			defer sem.Release(1)
			if err := task(ctx, partition); err != nil {
				errLock.Lock()
				errs = multierror.Append(errs, err)
				errLock.Unlock()
			}
		}(i)
	}
	wg.Wait()
	return errs.ErrorOrNil()
}
