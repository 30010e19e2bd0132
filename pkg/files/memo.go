package files

import (
	"context"
	"sync"
)

type memoState int

const (
	stateUnread memoState = iota
	stateReading
	stateCached
	stateFailed
)

func (s memoState) String() string {
	switch s {
	case stateUnread:
		return "unread"
	case stateReading:
		return "reading"
	case stateCached:
		return "cached"
	case stateFailed:
		return "failed"
	}
	return "unknown"
}

// flight is one in-progress load. Callers arriving while it runs wait for
// it and share its outcome.
type flight[T any] struct {
	done   chan struct{}
	value  T
	err    error
	joined int
}

func (f *flight[T]) wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// memo computes a value at most once successfully. Failures are not
// cached: the next caller after a failed flight starts a new one.
type memo[T any] struct {
	mu      sync.Mutex
	state   memoState
	value   T
	current *flight[T]
	load    func(ctx context.Context) (T, error)
}

func newMemo[T any](load func(ctx context.Context) (T, error)) *memo[T] {
	return &memo[T]{load: load}
}

func cachedMemo[T any](value T) *memo[T] {
	return &memo[T]{state: stateCached, value: value}
}

func (m *memo[T]) get(ctx context.Context) (T, error) {
	m.mu.Lock()
	switch m.state {
	case stateCached:
		v := m.value
		m.mu.Unlock()
		return v, nil
	case stateReading:
		f := m.current
		f.joined++
		m.mu.Unlock()
		return f.wait(ctx)
	}

	f := &flight[T]{done: make(chan struct{})}
	m.current = f
	m.state = stateReading
	m.mu.Unlock()

	v, err := m.load(ctx)

	m.mu.Lock()
	f.value, f.err = v, err
	if err != nil {
		m.state = stateFailed
	} else {
		m.state = stateCached
		m.value = v
	}
	m.current = nil
	m.mu.Unlock()
	close(f.done)

	return v, err
}

func (m *memo[T]) peek() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, m.state == stateCached
}

func (m *memo[T]) status() memoState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// waiters returns how many callers joined the read in progress.
func (m *memo[T]) waiters() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return 0
	}
	return m.current.joined
}
