// Package queue decouples redirect handling from click persistence. A
// producer publishes click events and a separate worker loop consumes them;
// the redirect response never waits on the queue draining.
package queue

import (
	"context"
	"errors"
	"time"
)

var (
	ErrQueueFull   = errors.New("click queue is full")
	ErrQueueClosed = errors.New("click queue is closed")
)

// ClickEvent is a single redirect event waiting to be recorded.
type ClickEvent struct {
	ShortCode string    `json:"short_code"`
	ClickedAt time.Time `json:"clicked_at"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	Referrer  string    `json:"referrer,omitempty"`
}

// Queue hands click events from request handlers to the analytics workers.
type Queue interface {
	// Publish enqueues an event without blocking the caller beyond the
	// queue's own admission check.
	Publish(ctx context.Context, event ClickEvent) error

	// Events returns the channel the worker pool consumes from. The
	// channel is closed once the queue is closed and drained.
	Events() <-chan ClickEvent

	Close() error
}
