package async

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	bperrors "github.com/vnykmshr/brakepedal/pkg/common/errors"
	"github.com/vnykmshr/brakepedal/pkg/metrics"
)

// Task is a unit of work run by a Dispatcher worker.
type Task func(ctx context.Context) error

type queuedTask struct {
	ctx  context.Context
	task Task
}

// Dispatcher runs repository and policy operations on a fixed set of worker
// goroutines fed by a bounded queue.
type Dispatcher struct {
	config   Config
	logger   *slog.Logger
	registry *metrics.Registry

	queue      chan queuedTask
	shutdownCh chan struct{}
	done       chan struct{}

	mu           sync.RWMutex
	isShutdown   bool
	shutdownOnce sync.Once
	workerWg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher and starts its workers.
func NewDispatcher(config Config) (*Dispatcher, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	config = applyConfigDefaults(config)

	d := &Dispatcher{
		config:     config,
		logger:     config.Logger.With("dispatcher", config.Name),
		registry:   metrics.Resolve(config.Metrics),
		queue:      make(chan queuedTask, config.QueueSize),
		shutdownCh: make(chan struct{}),
		done:       make(chan struct{}),
	}

	for i := 0; i < config.Workers; i++ {
		d.workerWg.Add(1)
		go d.run(i)
	}

	return d, nil
}

// Submit queues task. It blocks while the queue is full, until ctx is done
// or the dispatcher shuts down. Submitting to a shut down dispatcher returns
// an error wrapping ErrClosed.
func (d *Dispatcher) Submit(ctx context.Context, task Task) error {
	if task == nil {
		return bperrors.NewValidationError("async", "task", nil, "cannot be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.isShutdown {
		return bperrors.NewOperationError("async", "Submit", bperrors.ErrClosed)
	}

	select {
	case <-ctx.Done():
		return bperrors.NewOperationError("async", "Submit", ctx.Err())
	default:
	}

	select {
	case d.queue <- queuedTask{ctx: ctx, task: task}:
		d.updateQueued()
		return nil
	case <-d.shutdownCh:
		return bperrors.NewOperationError("async", "Submit", bperrors.ErrClosed)
	case <-ctx.Done():
		return bperrors.NewOperationError("async", "Submit", ctx.Err())
	}
}

// Shutdown stops accepting work. Queued operations still run. The returned
// channel closes once every worker has exited.
func (d *Dispatcher) Shutdown() <-chan struct{} {
	d.shutdownOnce.Do(func() {
		// Release submitters blocked on a full queue before taking the
		// write lock they hold the read side of.
		close(d.shutdownCh)

		d.mu.Lock()
		d.isShutdown = true
		close(d.queue)
		d.mu.Unlock()

		go func() {
			d.workerWg.Wait()
			close(d.done)
		}()
	})
	return d.done
}

// Workers returns the number of workers.
func (d *Dispatcher) Workers() int {
	return d.config.Workers
}

// QueueSize returns the number of operations waiting for a worker.
func (d *Dispatcher) QueueSize() int {
	return len(d.queue)
}

func (d *Dispatcher) run(id int) {
	defer d.workerWg.Done()

	for qt := range d.queue {
		d.updateQueued()
		d.execute(id, qt)
	}
}

func (d *Dispatcher) execute(id int, qt queuedTask) {
	if d.registry != nil {
		d.registry.DispatcherActive.WithLabelValues(d.config.Name).Inc()
		defer d.registry.DispatcherActive.WithLabelValues(d.config.Name).Dec()
	}

	status := "ok"
	defer func() {
		if r := recover(); r != nil {
			status = "panic"
			d.logger.Error("task panicked",
				"worker", id,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()))
		}
		if d.registry != nil {
			d.registry.DispatcherTasks.WithLabelValues(d.config.Name, status).Inc()
		}
	}()

	ctx := qt.ctx
	if d.config.TaskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.TaskTimeout)
		defer cancel()
	}

	if err := qt.task(ctx); err != nil {
		status = "error"
	}
}

func (d *Dispatcher) updateQueued() {
	if d.registry != nil {
		d.registry.DispatcherQueued.WithLabelValues(d.config.Name).Set(float64(len(d.queue)))
	}
}
