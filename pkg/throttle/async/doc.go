// Package async provides asynchronous forms of the repository and policy
// operations.
//
// A Dispatcher owns a fixed number of worker goroutines and a bounded queue.
// Operations submitted through Go, Repository or CheckAsync return a Future
// immediately and run on a worker:
//
//	d, err := async.NewDispatcher(async.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer func() { <-d.Shutdown() }()
//
//	f := async.CheckAsync(ctx, d, p, throttle.NewKey("user", id))
//	// ... other work ...
//	result, err := f.Wait(ctx)
//
// The asynchronous forms call the blocking ones, so the two are
// observationally identical. Shutdown stops accepting work and lets queued
// operations finish; later submissions resolve with an error wrapping
// errors.ErrClosed.
package async
