// Package queue holds pending snapshot load requests.
//
// The queue is bounded and small: a load replaces the whole snapshot, so a
// request queued behind another one adds nothing but latency.
package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/ladder/internal/domain/model"
	"github.com/okian/ladder/pkg/metrics"
)

const defaultQueueCapacity = 1

// Request is the payload type flowing through the queue.
type Request = model.LoadRequest

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a request. It returns ErrFull when the queue is at
	// capacity and ErrClosed after Close.
	Enqueue(ctx context.Context, r Request) error

	// Dequeue returns a channel that receives requests as they arrive.
	// The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Request

	// Len returns the current number of pending requests.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	requests chan Request
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.requests = make(chan Request, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)

	return q
}

// Enqueue adds a request to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, r Request) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueRejected("closed")
		return ErrClosed
	}

	select {
	case <-ctx.Done():
		metrics.RecordQueueRejected("context_cancelled")
		return fmt.Errorf("enqueue %s: %w", r.ID, ctx.Err())
	default:
	}

	select {
	case q.requests <- r:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.requests))
		return nil
	default:
		metrics.RecordQueueRejected("full")
		metrics.RecordErrorByComponent("queue", "queue_full")
		return fmt.Errorf("enqueue %s: %w", r.ID, ErrFull)
	}
}

// Dequeue returns a channel that will receive requests as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Request {
	out := make(chan Request)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case r, ok := <-q.requests:
				if !ok {
					return
				}
				metrics.UpdateQueueSize(len(q.requests))
				select {
				case out <- r:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Len returns the current number of pending requests.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	size := len(q.requests)
	metrics.UpdateQueueSize(size)
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.requests)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
