package queue

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// MemoryQueue is an in-process buffered channel queue. Events are lost on
// process exit; the Redis queue exists for deployments that need the
// backlog to survive restarts.
type MemoryQueue struct {
	events chan ClickEvent
	log    *zap.Logger
	mu     sync.RWMutex
	closed bool
}

func NewMemoryQueue(bufferSize int, log *zap.Logger) *MemoryQueue {
	return &MemoryQueue{
		events: make(chan ClickEvent, bufferSize),
		log:    log,
	}
}

// Publish enqueues the event. A full buffer drops the event rather than
// stalling the redirect path.
func (q *MemoryQueue) Publish(ctx context.Context, event ClickEvent) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.events <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		q.log.Error("click queue is full, dropping event",
			zap.String("short_code", event.ShortCode),
			zap.Int("queue_size", len(q.events)),
		)
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Events() <-chan ClickEvent {
	return q.events
}

// Close stops admission and closes the events channel. Workers keep
// receiving until the buffer drains.
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	q.closed = true
	close(q.events)
	return nil
}
