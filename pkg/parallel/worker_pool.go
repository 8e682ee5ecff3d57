// Package parallel provides the worker pool used to fan coordination work
// out across horizontal-proximity buckets and supply zones. Partitions are
// disjoint, so workers share no mutable state beyond the read-only rule
// tables.
package parallel

import (
	"fmt"
	"sync"

	"github.com/red1oon/2DtoBlender-sub002/pkg/logging"
)

// WorkerPool runs submitted tasks on a fixed set of goroutines. A task that
// panics is recovered and logged so one bad partition cannot sink the batch.
type WorkerPool struct {
	taskQueue chan func()
	wg        sync.WaitGroup
	once      sync.Once
	logger    logging.Logger
}

// NewWorkerPool creates a pool of the given width. Widths below one are
// clamped to a single worker. A nil logger silences panic reports.
func NewWorkerPool(workers int, logger logging.Logger) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}

	pool := &WorkerPool{
		taskQueue: make(chan func(), workers*2),
		logger:    logging.OrNop(logger),
	}
	for i := 0; i < workers; i++ {
		pool.wg.Add(1)
		go pool.worker()
	}
	return pool
}

// worker drains the queue until Close
func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for task := range wp.taskQueue {
		wp.run(task)
	}
}

// run executes one task, recovering a panic so the worker survives
func (wp *WorkerPool) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			wp.logger.Error("worker panic recovered",
				logging.String("panic", fmt.Sprint(r)))
		}
	}()
	task()
}

// Submit queues a task. Submit must not be called after Close.
func (wp *WorkerPool) Submit(task func()) {
	wp.taskQueue <- task
}

// Close stops the workers once the queued tasks have drained
func (wp *WorkerPool) Close() {
	wp.once.Do(func() {
		close(wp.taskQueue)
	})
	wp.wg.Wait()
}
