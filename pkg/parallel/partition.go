package parallel

import (
	"sync"

	"github.com/red1oon/2DtoBlender-sub002/pkg/logging"
)

// MapPartitions runs fn over every partition on a fresh pool of the given
// width and returns the per-partition results in input order. Each partition
// must be disjoint from the others; fn must not touch shared mutable state.
// A width of 0 or 1 degrades to a serial loop, which keeps the serial and
// parallel paths byte-identical in output.
func MapPartitions[P any, R any](workers int, partitions []P, fn func(P) R, logger logging.Logger) []R {
	results := make([]R, len(partitions))

	if workers <= 1 || len(partitions) <= 1 {
		for i, p := range partitions {
			results[i] = fn(p)
		}
		return results
	}

	pool := NewWorkerPool(workers, logger)
	defer pool.Close()

	var wg sync.WaitGroup
	for i := range partitions {
		i := i
		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()
			results[i] = fn(partitions[i])
		})
	}
	wg.Wait()
	return results
}
