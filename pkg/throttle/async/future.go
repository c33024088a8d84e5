package async

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
)

// Future is the pending result of an asynchronous operation.
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) resolve(value T, err error) {
	f.once.Do(func() {
		f.value = value
		f.err = err
		close(f.done)
	})
}

// Done returns a channel that is closed when the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the result is available or ctx is done. Cancelling ctx
// abandons the wait only; the operation keeps running.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Go runs fn on d and returns its future. A panic in fn resolves the future
// with an error. If d refuses the work the future resolves immediately with
// the submission error.
func Go[T any](ctx context.Context, d *Dispatcher, fn func(ctx context.Context) (T, error)) *Future[T] {
	f := newFuture[T]()

	err := d.Submit(ctx, func(ctx context.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				err = fmt.Errorf("async operation panicked: %v\n%s", r, debug.Stack())
				f.resolve(zero, err)
			}
		}()

		value, err := fn(ctx)
		f.resolve(value, err)
		return err
	})
	if err != nil {
		var zero T
		f.resolve(zero, err)
	}
	return f
}
