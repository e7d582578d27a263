// Package resource manages the lifetime of loaded, read-only resources.
//
// A Handle owns one value. Pipelines Acquire it for the duration of a
// request and call the returned release func when done; Close marks the
// handle closed, waits for every outstanding reference and then runs the
// release hook exactly once. A closed handle cannot be acquired again, so a
// resource is never torn down underneath an in-flight request.
package resource

import (
	"errors"
	"sync"
)

// ErrClosed is returned by Acquire once Close has been called.
var ErrClosed = errors.New("resource: handle closed")

// Handle is a reference-counted owner of a value of type T.
type Handle[T any] struct {
	mu      sync.Mutex
	cond    *sync.Cond
	val     T
	refs    int
	closed  bool
	done    bool
	release func(T) error
	err     error
}

// New wraps val. release may be nil.
func New[T any](val T, release func(T) error) *Handle[T] {
	h := &Handle[T]{val: val, release: release}
	h.cond = sync.NewCond(&h.mu)
	return h
}

// Acquire returns the value and a func that must be called exactly once when
// the caller no longer uses it.
func (h *Handle[T]) Acquire() (T, func(), error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		var zero T
		return zero, func() {}, ErrClosed
	}
	h.refs++
	var once sync.Once
	return h.val, func() {
		once.Do(func() {
			h.mu.Lock()
			h.refs--
			if h.refs == 0 {
				h.cond.Broadcast()
			}
			h.mu.Unlock()
		})
	}, nil
}

// Refs returns the number of outstanding references.
func (h *Handle[T]) Refs() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.refs
}

// Close blocks until all references are released, then releases the value.
// Calling Close more than once returns the first result.
func (h *Handle[T]) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for h.refs > 0 {
		h.cond.Wait()
	}
	if h.done {
		return h.err
	}
	h.done = true
	if h.release != nil {
		h.err = h.release(h.val)
	}
	var zero T
	h.val = zero
	return h.err
}
