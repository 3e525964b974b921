// Package analytics persists click events asynchronously so the redirect
// path never waits on storage.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"linkshrink-backend/internal/config"
	"linkshrink-backend/internal/domain"
	"linkshrink-backend/internal/queue"
	"linkshrink-backend/internal/repository"
	"linkshrink-backend/pkg/useragent"
)

const attemptTimeout = 30 * time.Second

// Recorder consumes click events from a queue and records them: one click
// row insert, then one counter increment. The two writes are individually
// durable; a failure between them can undercount but never corrupts
// either table.
type Recorder struct {
	config  *config.Analytics
	storage repository.Storage
	queue   queue.Queue
	ua      *useragent.Parser
	log     *zap.Logger
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewRecorder creates a click recorder. The User-Agent parser may be nil;
// device classification then falls back to keyword heuristics.
func NewRecorder(storage repository.Storage, q queue.Queue, ua *useragent.Parser, log *zap.Logger, cfg *config.Analytics) *Recorder {
	return &Recorder{
		config:  cfg,
		storage: storage,
		queue:   q,
		ua:      ua,
		log:     log,
	}
}

// Start launches the worker pool.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return fmt.Errorf("recorder already started")
	}

	r.log.Info("starting click recorder",
		zap.Int("workers", r.config.WorkerCount),
		zap.Int("retry_attempts", r.config.RetryAttempts),
	)

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.started = true
	return nil
}

// Stop closes the queue and waits for the workers to drain it. Events
// still buffered when the shutdown timeout fires are lost.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return fmt.Errorf("recorder not started")
	}

	r.log.Info("stopping click recorder")

	if err := r.queue.Close(); err != nil && !errors.Is(err, queue.ErrQueueClosed) {
		r.log.Warn("failed to close click queue", zap.Error(err))
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.log.Info("click recorder stopped gracefully")
	case <-time.After(r.config.ShutdownTimeout):
		r.log.Warn("click recorder shutdown timeout reached")
		return fmt.Errorf("shutdown timeout reached")
	}

	r.started = false
	return nil
}

func (r *Recorder) worker(workerID int) {
	defer r.wg.Done()

	log := r.log.With(zap.Int("worker_id", workerID))
	log.Info("click recorder worker started")

	for event := range r.queue.Events() {
		r.recordWithRetry(log, event)
	}

	log.Info("click recorder worker stopped")
}

// recordWithRetry processes one event with bounded retries and exponential
// backoff. The click insert happens at most once across attempts, so a
// retry after a failed counter increment never duplicates the click row.
func (r *Recorder) recordWithRetry(log *zap.Logger, event queue.ClickEvent) {
	var lastErr error
	inserted := false

	for attempt := 1; attempt <= r.config.RetryAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), attemptTimeout)
		err := r.record(ctx, event, &inserted)
		cancel()

		if err == nil {
			if attempt > 1 {
				log.Info("click recording succeeded after retry",
					zap.String("short_code", event.ShortCode),
					zap.Int("attempt", attempt),
				)
			}
			return
		}

		if errors.Is(err, repository.ErrCodeNotFound) {
			// The link is gone; the click row (if written) stays as
			// orphaned history and there is no counter to bump.
			log.Debug("click for missing link", zap.String("short_code", event.ShortCode))
			return
		}

		lastErr = err
		log.Warn("click recording failed",
			zap.String("short_code", event.ShortCode),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", r.config.RetryAttempts),
			zap.Error(err),
		)

		if attempt < r.config.RetryAttempts {
			time.Sleep(r.config.RetryDelay * time.Duration(1<<(attempt-1)))
		}
	}

	// All retries failed; the event is dropped. There is no redelivery,
	// which undercounts total_clicks but never corrupts either store.
	log.Error("click recording failed after all retries, dropping event",
		zap.String("short_code", event.ShortCode),
		zap.Int("attempts", r.config.RetryAttempts),
		zap.Error(lastErr),
	)
}

func (r *Recorder) record(ctx context.Context, event queue.ClickEvent, inserted *bool) error {
	if !*inserted {
		click := r.buildClick(event)
		if err := r.storage.InsertClick(ctx, click); err != nil {
			return fmt.Errorf("failed to insert click: %w", err)
		}
		*inserted = true
	}

	if err := r.storage.IncrementClicks(ctx, event.ShortCode); err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			return err
		}
		return fmt.Errorf("failed to increment clicks: %w", err)
	}

	return nil
}

func (r *Recorder) buildClick(event queue.ClickEvent) *domain.Click {
	click := &domain.Click{
		ShortCode: event.ShortCode,
		ClickedAt: event.ClickedAt,
	}
	if click.ClickedAt.IsZero() {
		click.ClickedAt = time.Now()
	}

	if event.IPAddress != "" {
		click.IPAddress = &event.IPAddress
	}
	if event.Referrer != "" {
		click.Referrer = &event.Referrer
	}
	if event.UserAgent != "" {
		click.UserAgent = &event.UserAgent
		deviceType := r.ua.Parse(event.UserAgent).DeviceType
		click.DeviceType = &deviceType
	}

	return click
}
