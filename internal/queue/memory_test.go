package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryQueue_PublishAndConsume(t *testing.T) {
	q := NewMemoryQueue(10, zap.NewNop())

	event := ClickEvent{
		ShortCode: "abc123",
		ClickedAt: time.Now(),
	}
	require.NoError(t, q.Publish(context.Background(), event))

	select {
	case got := <-q.Events():
		assert.Equal(t, "abc123", got.ShortCode)
	case <-time.After(time.Second):
		t.Fatal("event never arrived")
	}
}

func TestMemoryQueue_FullBufferDropsEvent(t *testing.T) {
	q := NewMemoryQueue(1, zap.NewNop())

	require.NoError(t, q.Publish(context.Background(), ClickEvent{ShortCode: "first1"}))

	err := q.Publish(context.Background(), ClickEvent{ShortCode: "second"})
	assert.ErrorIs(t, err, ErrQueueFull)

	// The first event is still there.
	got := <-q.Events()
	assert.Equal(t, "first1", got.ShortCode)
}

func TestMemoryQueue_CloseDrainsBuffer(t *testing.T) {
	q := NewMemoryQueue(5, zap.NewNop())

	for i := 0; i < 3; i++ {
		require.NoError(t, q.Publish(context.Background(), ClickEvent{ShortCode: "code"}))
	}
	require.NoError(t, q.Close())

	count := 0
	for range q.Events() {
		count++
	}
	assert.Equal(t, 3, count)
}

func TestMemoryQueue_PublishAfterClose(t *testing.T) {
	q := NewMemoryQueue(5, zap.NewNop())

	require.NoError(t, q.Close())
	assert.ErrorIs(t, q.Publish(context.Background(), ClickEvent{}), ErrQueueClosed)
	assert.ErrorIs(t, q.Close(), ErrQueueClosed)
}
