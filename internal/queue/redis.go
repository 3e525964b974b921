package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"

	"linkshrink-backend/internal/config"
)

// RedisQueue is a Redis-list-backed click queue: producers LPUSH encoded
// events, a consumer loop BRPOPs them onto the events channel. Unlike the
// in-process queue, the backlog survives process restarts.
type RedisQueue struct {
	pool   *redis.Pool
	key    string
	events chan ClickEvent
	log    *zap.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

func NewRedisQueue(cfg *config.Redis, log *zap.Logger) (*RedisQueue, error) {
	pool := &redis.Pool{
		MaxIdle:     10,
		IdleTimeout: 240 * time.Second,
		Dial: func() (redis.Conn, error) {
			opts := []redis.DialOption{}
			if cfg.Password != "" {
				opts = append(opts, redis.DialPassword(cfg.Password))
			}
			return redis.Dial("tcp", cfg.Address, opts...)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}

	// Fail fast on an unreachable Redis instead of at the first click.
	conn := pool.Get()
	_, err := conn.Do("PING")
	if closeErr := conn.Close(); closeErr != nil {
		log.Warn("failed to close redis connection", zap.Error(closeErr))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Address, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &RedisQueue{
		pool:   pool,
		key:    cfg.QueueKey,
		events: make(chan ClickEvent),
		log:    log,
		cancel: cancel,
	}

	q.wg.Add(1)
	go q.consumeLoop(ctx)

	log.Info("redis click queue started", zap.String("address", cfg.Address), zap.String("key", cfg.QueueKey))
	return q, nil
}

// Publish pushes the event onto the Redis list.
func (q *RedisQueue) Publish(ctx context.Context, event ClickEvent) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode click event: %w", err)
	}

	conn, err := q.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to get redis connection: %w", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			q.log.Warn("failed to close redis connection", zap.Error(err))
		}
	}()

	if _, err := conn.Do("LPUSH", q.key, data); err != nil {
		return fmt.Errorf("failed to publish click event: %w", err)
	}

	return nil
}

func (q *RedisQueue) Events() <-chan ClickEvent {
	return q.events
}

// consumeLoop blocks on BRPOP with a short timeout so shutdown is prompt,
// and feeds decoded events to the workers.
func (q *RedisQueue) consumeLoop(ctx context.Context) {
	defer q.wg.Done()
	defer close(q.events)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		data, err := q.pop()
		if err != nil {
			if !errors.Is(err, redis.ErrNil) {
				q.log.Error("failed to pop click event from redis", zap.Error(err))
				select {
				case <-time.After(time.Second):
				case <-ctx.Done():
					return
				}
			}
			continue
		}

		var event ClickEvent
		if err := json.Unmarshal(data, &event); err != nil {
			// A malformed payload is dropped; there is nothing to retry.
			q.log.Error("failed to decode click event, dropping", zap.Error(err))
			continue
		}

		select {
		case q.events <- event:
		case <-ctx.Done():
			return
		}
	}
}

func (q *RedisQueue) pop() ([]byte, error) {
	conn := q.pool.Get()
	defer func() {
		if err := conn.Close(); err != nil {
			q.log.Warn("failed to close redis connection", zap.Error(err))
		}
	}()

	values, err := redis.Values(conn.Do("BRPOP", q.key, 1))
	if err != nil {
		return nil, err
	}
	if len(values) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP reply of %d values", len(values))
	}

	return redis.Bytes(values[1], nil)
}

// Close stops admission, stops the consumer loop and releases the pool.
// Events still queued in Redis are picked up on the next start.
func (q *RedisQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.closed = true
	q.mu.Unlock()

	q.cancel()
	q.wg.Wait()
	return q.pool.Close()
}
