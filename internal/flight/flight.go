// Package flight provides single-flight coalescing of logical operations.
// At most one execution of a given key runs at a time; callers that arrive
// while one is in flight do not start new work, they block and receive the
// first caller's eventual result. Each execution resolves its waiters exactly
// once.
package flight

import "sync"

type result[T any] struct {
	val T
	err error
}

type call[T any] struct {
	done chan struct{}
	res  result[T]
}

// Group coalesces concurrent executions keyed by an operation name.
// The zero value is ready to use. Group is safe for concurrent use.
type Group[T any] struct {
	mu    sync.Mutex
	calls map[string]*call[T]
}

// Do executes fn under key, or joins an in-flight execution of the same key.
// All coalesced callers receive the identical result. fn runs outside the
// group lock, so executions of distinct keys proceed independently.
func (g *Group[T]) Do(key string, fn func() (T, error)) (T, error) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[string]*call[T])
	}
	if c, ok := g.calls[key]; ok {
		g.mu.Unlock()
		<-c.done
		return c.res.val, c.res.err
	}
	c := &call[T]{done: make(chan struct{})}
	g.calls[key] = c
	g.mu.Unlock()

	c.res.val, c.res.err = fn()

	g.mu.Lock()
	delete(g.calls, key)
	g.mu.Unlock()
	close(c.done)

	return c.res.val, c.res.err
}

// InFlight reports whether an execution of key is currently outstanding.
func (g *Group[T]) InFlight(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.calls[key]
	return ok
}
