package promise

import (
	"context"
	"sync"
)

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

// Void is the result type for operations that resolve with no value
// (delete, clear, batched put).
type Void struct{}

// --------------------------------------------------------------------------
// Promise Type
// --------------------------------------------------------------------------

// Promise represents the eventual result of an asynchronous operation.
// It is settled exactly once, either with a value (resolved) or with an
// error (rejected). Any settlement after the first is discarded, mirroring
// the first-event-wins contract of event based completion handlers.
//
// Thread-safety: all methods are safe for concurrent use; a promise may be
// awaited by any number of goroutines.
type Promise[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

// New creates an unsettled promise together with its resolve and reject
// functions. The returned functions may be called from any goroutine; only
// the first call has an effect.
func New[T any]() (p *Promise[T], resolve func(T), reject func(error)) {
	p = &Promise[T]{done: make(chan struct{})}

	resolve = func(value T) {
		p.once.Do(func() {
			p.value = value
			close(p.done)
		})
	}

	reject = func(err error) {
		p.once.Do(func() {
			p.err = err
			close(p.done)
		})
	}

	return p, resolve, reject
}

// Resolved returns a promise that is already resolved with the given value.
func Resolved[T any](value T) *Promise[T] {
	p, resolve, _ := New[T]()
	resolve(value)
	return p
}

// Rejected returns a promise that is already rejected with the given error.
func Rejected[T any](err error) *Promise[T] {
	p, _, reject := New[T]()
	reject(err)
	return p
}

// --------------------------------------------------------------------------
// Interface Methods
// --------------------------------------------------------------------------

// Await blocks until the promise is settled or the context is cancelled.
// On cancellation the context error is returned; the promise itself stays
// unsettled and may still be awaited again.
func (p *Promise[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done returns a channel that is closed once the promise is settled.
func (p *Promise[T]) Done() <-chan struct{} {
	return p.done
}

// Settled reports whether the promise has been resolved or rejected.
func (p *Promise[T]) Settled() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}
