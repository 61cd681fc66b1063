package notify

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/ventas/internal/logging"
)

const defaultQueueSize = 64

// Dispatcher hands events to a Notifier on a background worker so the
// request that triggered them never waits for delivery.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	logger   logging.Logger

	queue chan LockoutEvent
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher starts the worker. Each delivery is bounded by timeout.
func NewDispatcher(n Notifier, timeout time.Duration, logger logging.Logger) *Dispatcher {
	d := &Dispatcher{
		notifier: n,
		timeout:  timeout,
		logger:   logger.With("module", "notify_dispatcher"),
		queue:    make(chan LockoutEvent, defaultQueueSize),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for e := range d.queue {
		d.deliver(e)
	}
}

func (d *Dispatcher) deliver(e LockoutEvent) {
	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	if err := d.notifier.Notify(ctx, e); err != nil {
		d.logger.Error(ctx, "lockout notification failed", "vendedor", e.SalespersonID, "error", err)
		return
	}
	d.logger.Info(ctx, "lockout notification sent", "vendedor", e.SalespersonID)
}

// Dispatch enqueues e without blocking. It reports false when the event
// was dropped because the queue is full or the dispatcher is closed.
func (d *Dispatcher) Dispatch(e LockoutEvent) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return false
	}
	select {
	case d.queue <- e:
		return true
	default:
		d.logger.Warn(context.Background(), "notification queue full, event dropped", "vendedor", e.SalespersonID)
		return false
	}
}

// Close stops accepting events and waits for queued ones to be delivered
// or for ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
