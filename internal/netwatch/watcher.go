// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Matricare Health

// Package netwatch detects transitions from offline to online and notifies
// exactly once per settled transition.
//
// Detection is probe-based: a lightweight endpoint is polled on a ticker.
// A recovered connection must stay up for the configured settle period
// before the transition is reported, so connectivity flapping inside the
// window produces at most one notification.
package netwatch

import (
	"context"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sethvargo/go-retry"

	"github.com/matricare/go-carelink/internal/config"
	"github.com/matricare/go-carelink/internal/logger"
)

// Prober answers "is the backend reachable right now". A nil error means
// reachable; the response status is irrelevant as long as something
// answered.
type Prober interface {
	Probe(ctx context.Context) error
}

type httpProber struct {
	client *resty.Client
	url    string
}

// NewHTTPProber builds a Prober that issues a single GET to probeURL with
// a short timeout and no retries. Retrying inside the probe would blur the
// line between "offline" and "slow"; the watcher's own cadence provides
// the repetition.
func NewHTTPProber(probeURL string) Prober {
	cli := resty.New().SetTimeout(3 * time.Second)
	return &httpProber{client: cli, url: probeURL}
}

func (p *httpProber) Probe(ctx context.Context) error {
	_, err := p.client.R().SetContext(ctx).Get(p.url)
	return err
}

// OnlineFunc is invoked once per settled offline-to-online transition.
type OnlineFunc func(ctx context.Context)

// Watcher polls connectivity and fires the callback on settled recoveries.
// The zero state assumes offline, so a client starting with connectivity
// gets one initial notification — which conveniently drains any queue left
// over from the previous run.
type Watcher struct {
	prober   Prober
	interval time.Duration
	settle   time.Duration
	onOnline OnlineFunc
	logger   *logger.Logger

	now func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup

	online      bool
	recoveredAt time.Time
}

// NewWatcher builds a connectivity watcher. Zero or negative durations fall
// back to 30s probing and a 3s settle period.
func NewWatcher(cfg config.ClientNetwork, prober Prober, onOnline OnlineFunc, log *logger.Logger) *Watcher {
	if cfg.ProbeInterval <= 0 {
		cfg.ProbeInterval = 30 * time.Second
	}
	if cfg.DebounceSettle <= 0 {
		cfg.DebounceSettle = 3 * time.Second
	}
	if prober == nil {
		prober = NewHTTPProber(cfg.ProbeURL)
	}

	return &Watcher{
		prober:   prober,
		interval: cfg.ProbeInterval,
		settle:   cfg.DebounceSettle,
		onOnline: onOnline,
		logger:   log,
		now:      time.Now,
	}
}

// Start launches the probe loop in a background goroutine, stopping any
// previously running loop first. The goroutine exits when ctx is cancelled
// or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	w.Stop()

	w.mu.Lock()
	loopCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		t := time.NewTicker(w.interval)
		defer t.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-t.C:
				w.Tick(loopCtx)
			}
		}
	}()
}

// Stop cancels the probe loop and blocks until it has fully exited. Safe
// to call when the watcher is not running.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

// Tick performs one connectivity check and drives the transition state
// machine. Exported so a manual "sync now" path can force a check without
// waiting for the next ticker beat.
func (w *Watcher) Tick(ctx context.Context) {
	reachable := w.prober.Probe(ctx) == nil

	w.mu.Lock()
	switch {
	case !reachable:
		if w.online {
			w.logger.Info().Msg("connectivity lost")
		}
		w.online = false
		w.recoveredAt = time.Time{}
		w.mu.Unlock()
		return

	case w.online:
		// Still online, nothing to report.
		w.mu.Unlock()
		return

	case w.recoveredAt.IsZero():
		// First successful probe after an offline stretch: start the
		// settle clock, do not fire yet.
		w.recoveredAt = w.now()
		w.mu.Unlock()
		return

	case w.now().Sub(w.recoveredAt) < w.settle:
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	// The connection held for the settle period; confirm it is still
	// there before declaring the transition.
	if err := w.confirm(ctx); err != nil {
		w.mu.Lock()
		w.recoveredAt = time.Time{}
		w.mu.Unlock()
		return
	}

	w.mu.Lock()
	w.online = true
	w.recoveredAt = time.Time{}
	w.mu.Unlock()

	w.logger.Info().Msg("connectivity restored")
	if w.onOnline != nil {
		w.onOnline(ctx)
	}
}

// confirm re-probes with a short exponential backoff so a single lucky
// packet does not count as a restored connection.
func (w *Watcher) confirm(ctx context.Context) error {
	backoff := retry.WithMaxRetries(2, retry.NewExponential(200*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := w.prober.Probe(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}
