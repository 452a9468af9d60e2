package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskboxhq/taskbox/pkg/logger"
	"github.com/taskboxhq/taskbox/pkg/metrics"
)

const defaultTaskTimeout = 30 * time.Second

// Dispatcher runs deferred side effects after the HTTP response has been
// written. Task failures are logged and counted but never reach the client.
type Dispatcher struct {
	wg      sync.WaitGroup
	timeout time.Duration
	log     *zap.Logger
}

// NewDispatcher builds a Dispatcher. A non-positive timeout falls back to 30s.
func NewDispatcher(timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultTaskTimeout
	}
	return &Dispatcher{
		timeout: timeout,
		log:     logger.WithModule("tasks"),
	}
}

// Go schedules fn on its own goroutine with a fresh context. Panics are
// recovered so a misbehaving task cannot take the process down.
func (d *Dispatcher) Go(name string, fn func(ctx context.Context) error) {
	runID := uuid.NewString()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				metrics.DeferredTaskFailures.WithLabelValues(name).Inc()
				d.log.Error("deferred task panicked",
					zap.String("task", name),
					zap.String("run_id", runID),
					zap.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		start := time.Now()
		if err := fn(ctx); err != nil {
			metrics.DeferredTaskFailures.WithLabelValues(name).Inc()
			d.log.Warn("deferred task failed",
				zap.String("task", name),
				zap.String("run_id", runID),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err))
			return
		}

		d.log.Debug("deferred task finished",
			zap.String("task", name),
			zap.String("run_id", runID),
			zap.Duration("elapsed", time.Since(start)))
	}()
}

// Drain blocks until all in-flight tasks complete or the context ends.
func (d *Dispatcher) Drain(ctx context.Context) error {
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
