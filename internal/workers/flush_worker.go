// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Matricare Health

package workers

import (
	"context"
	"sync"
	"time"

	"github.com/matricare/go-carelink/internal/logger"
	"github.com/matricare/go-carelink/internal/service"
)

// FlushWorker drains the offline queue once at startup and then on a fixed
// interval, as a safety net behind the connectivity-triggered flushes.
// Concurrent triggers are harmless: the queue service coalesces overlapping
// flushes itself.
type FlushWorker struct {
	queue    service.QueueService
	interval time.Duration
	logger   *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewFlushWorker creates a FlushWorker. The worker is idle until Start is
// called. An interval of zero or less defaults to 5 minutes.
func NewFlushWorker(queue service.QueueService, interval time.Duration, log *logger.Logger) *FlushWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &FlushWorker{queue: queue, interval: interval, logger: log}
}

// Start implements Worker. It stops any previously running loop, then
// launches a goroutine that flushes immediately (operations persisted by a
// previous run must not wait a full interval after restart) and again every
// interval until ctx is cancelled or Stop is called.
func (w *FlushWorker) Start(ctx context.Context) {
	w.Stop()

	w.mu.Lock()
	loopCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()

		if _, err := w.queue.Flush(loopCtx); err != nil {
			w.logger.Warn().Err(err).Msg("startup flush failed")
		}

		t := time.NewTicker(w.interval)
		defer t.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-t.C:
				if _, err := w.queue.Flush(loopCtx); err != nil {
					w.logger.Warn().Err(err).Msg("periodic flush failed")
				}
			}
		}
	}()
}

// Stop implements Worker. It cancels the loop's context and blocks until
// the goroutine has fully exited. Safe to call when the worker is not
// running.
func (w *FlushWorker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}
