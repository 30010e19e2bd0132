package parallel_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/plugs/pkg/parallel"
)

func TestParallelizeResultsInInputOrder(t *testing.T) {
	delays := []time.Duration{30, 5, 20, 0}
	ops := make([]parallel.Op[int], len(delays))
	for i, d := range delays {
		ops[i] = func(ctx context.Context) (int, error) {
			time.Sleep(d * time.Millisecond)
			return i + 1, nil
		}
	}

	got, err := parallel.Parallelize(context.Background(), ops...)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, got)
}

func TestParallelizeEmpty(t *testing.T) {
	got, err := parallel.Parallelize[string](context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParallelizeLowestIndexFailureWins(t *testing.T) {
	// Item 4 fails immediately, item 2 fails later, item 3 completes last.
	err2 := errors.New("item 2 failed")
	err4 := errors.New("item 4 failed")

	failed2 := make(chan struct{})
	var mu sync.Mutex
	var completed []int

	ops := []parallel.Op[int]{
		func(ctx context.Context) (int, error) {
			mu.Lock()
			completed = append(completed, 1)
			mu.Unlock()
			return 1, nil
		},
		func(ctx context.Context) (int, error) {
			time.Sleep(20 * time.Millisecond)
			close(failed2)
			return 0, err2
		},
		func(ctx context.Context) (int, error) {
			<-failed2
			time.Sleep(10 * time.Millisecond)
			mu.Lock()
			completed = append(completed, 3)
			mu.Unlock()
			return 3, nil
		},
		func(ctx context.Context) (int, error) {
			return 0, err4
		},
	}

	got, err := parallel.Parallelize(context.Background(), ops...)
	assert.Nil(t, got)
	assert.Same(t, err2, err)

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []int{1, 3}, completed, "every non-failing op settles before the aggregate fails")
}

func TestParallelizeRunsConcurrently(t *testing.T) {
	const n = 8
	var running, peak int32
	release := make(chan struct{})

	ops := make([]parallel.Op[struct{}], n)
	for i := range ops {
		ops[i] = func(ctx context.Context) (struct{}, error) {
			cur := atomic.AddInt32(&running, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if cur <= old || atomic.CompareAndSwapInt32(&peak, old, cur) {
					break
				}
			}
			<-release
			atomic.AddInt32(&running, -1)
			return struct{}{}, nil
		}
	}

	go func() {
		for atomic.LoadInt32(&running) < n {
			time.Sleep(time.Millisecond)
		}
		close(release)
	}()

	_, err := parallel.Parallelize(context.Background(), ops...)
	require.NoError(t, err)
	assert.Equal(t, int32(n), atomic.LoadInt32(&peak))
}

func TestMap(t *testing.T) {
	items := []string{"a", "b", "c"}
	got, err := parallel.Map(context.Background(), items, func(ctx context.Context, i int, s string) (string, error) {
		return fmt.Sprintf("%d:%s", i, s), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"0:a", "1:b", "2:c"}, got)
}

func TestEach(t *testing.T) {
	var seen int32
	err := parallel.Each(context.Background(), []int{0, 1, 2, 3}, func(ctx context.Context, i int, v int) error {
		atomic.AddInt32(&seen, 1)
		if v%2 == 1 {
			return fmt.Errorf("odd %d", v)
		}
		return nil
	})
	require.EqualError(t, err, "odd 1")
	assert.Equal(t, int32(4), atomic.LoadInt32(&seen))
}
