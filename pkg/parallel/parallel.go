package parallel

import (
	"context"
	"sync"
)

// Op is one unit of work run by Parallelize.
type Op[T any] func(ctx context.Context) (T, error)

// Parallelize runs every op concurrently and waits for all of them to
// settle, even after a failure. On success the results are returned in
// input order. When one or more ops fail, the error of the failed op with
// the lowest index is returned, whatever order the failures happened in.
func Parallelize[T any](ctx context.Context, ops ...Op[T]) ([]T, error) {
	results := make([]T, len(ops))
	errs := make([]error, len(ops))

	var wg sync.WaitGroup
	wg.Add(len(ops))
	for i, op := range ops {
		go func(i int, op Op[T]) {
			defer wg.Done()
			results[i], errs[i] = op(ctx)
		}(i, op)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// Map applies fn to every item concurrently under the same rules as
// Parallelize.
func Map[E, T any](ctx context.Context, items []E, fn func(ctx context.Context, index int, item E) (T, error)) ([]T, error) {
	ops := make([]Op[T], len(items))
	for i, item := range items {
		ops[i] = func(ctx context.Context) (T, error) {
			return fn(ctx, i, item)
		}
	}
	return Parallelize(ctx, ops...)
}

// Each is Map for side-effect-only work.
func Each[E any](ctx context.Context, items []E, fn func(ctx context.Context, index int, item E) error) error {
	_, err := Map(ctx, items, func(ctx context.Context, i int, item E) (struct{}, error) {
		return struct{}{}, fn(ctx, i, item)
	})
	return err
}
