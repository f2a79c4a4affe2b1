package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/icedfool/rpi-ds-game/pkg/models"
)

// ErrQueueFull is returned when an AsyncObserver drops an event
var ErrQueueFull = errors.New("observer queue full")

// ErrQueueClosed is returned for events offered after Close
var ErrQueueClosed = errors.New("observer queue closed")

// AsyncObserver hands events to a slow observer (database, stream) on its
// own goroutine so requests never wait on it. Events are delivered in the
// order they were queued; when the queue is full new events are dropped.
type AsyncObserver struct {
	name    string
	next    Observer
	timeout time.Duration

	queue  chan models.PlayerEvent
	done   chan struct{}
	closed bool
	mu     sync.RWMutex

	dropped   int64
	delivered int64
	metricsMu sync.Mutex
}

// NewAsyncObserver starts a delivery goroutine for next. Each delivery gets
// its own context bounded by timeout (no bound when timeout <= 0).
func NewAsyncObserver(name string, next Observer, size int, timeout time.Duration) *AsyncObserver {
	if size < 1 {
		size = 1
	}
	a := &AsyncObserver{
		name:    name,
		next:    next,
		timeout: timeout,
		queue:   make(chan models.PlayerEvent, size),
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

// PlayerUpdated queues the event without blocking
func (a *AsyncObserver) PlayerUpdated(ctx context.Context, event models.PlayerEvent) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return ErrQueueClosed
	}

	select {
	case a.queue <- event:
		return nil
	default:
		a.metricsMu.Lock()
		a.dropped++
		a.metricsMu.Unlock()
		return fmt.Errorf("%s: %w", a.name, ErrQueueFull)
	}
}

// Close stops accepting events and waits until the queue drains or ctx ends
func (a *AsyncObserver) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%s: %d events undelivered: %w", a.name, len(a.queue), ctx.Err())
	}
}

// Name identifies the wrapped observer in logs and metrics
func (a *AsyncObserver) Name() string {
	return a.name
}

// GetMetrics returns delivery counters
func (a *AsyncObserver) GetMetrics() map[string]interface{} {
	a.metricsMu.Lock()
	defer a.metricsMu.Unlock()

	return map[string]interface{}{
		"delivered":      a.delivered,
		"dropped":        a.dropped,
		"queue_capacity": cap(a.queue),
		"queue_usage":    len(a.queue),
	}
}

func (a *AsyncObserver) run() {
	defer close(a.done)

	for event := range a.queue {
		if err := a.deliver(event); err != nil {
			fmt.Printf("⚠️  %s failed for %s (%s): %v\n", a.name, event.Player, event.Action, err)
			continue
		}

		a.metricsMu.Lock()
		a.delivered++
		a.metricsMu.Unlock()
	}
}

func (a *AsyncObserver) deliver(event models.PlayerEvent) error {
	ctx := context.Background()
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	return a.next.PlayerUpdated(ctx, event)
}
