package document

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Prefetch resolves every object number in objNumbers concurrently,
// bounded by maxConcurrent simultaneous lazy loads, and warms the
// registry's cache before handing it back to single-threaded use. It
// is a convenience for batch workloads (e.g. priming a page's resources
// before extraction) and is never invoked implicitly by Resolve/Deref.
//
// Errors from individual loads are collected but do not abort sibling
// loads; the first one is returned to the caller.
func (reg *Registry) Prefetch(ctx context.Context, objNumbers []int, maxConcurrent int) error {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	sem := semaphore.NewWeighted(int64(maxConcurrent))

	errs := make(chan error, len(objNumbers))
	for _, on := range objNumbers {
		on := on
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		go func() {
			defer sem.Release(1)
			_, err := reg.resolveNumber(on)
			errs <- err
		}()
	}

	// Wait for every in-flight load to finish by acquiring the full
	// weight back.
	if err := sem.Acquire(ctx, int64(maxConcurrent)); err != nil {
		return err
	}
	sem.Release(int64(maxConcurrent))

	close(errs)
	var first error
	for err := range errs {
		if err != nil && first == nil {
			first = err
		}
	}
	return first
}
