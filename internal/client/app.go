package client

import (
	"context"
	"fmt"

	"github.com/matricare/go-carelink/internal/adapter"
	"github.com/matricare/go-carelink/internal/config"
	"github.com/matricare/go-carelink/internal/logger"
	"github.com/matricare/go-carelink/internal/netwatch"
	"github.com/matricare/go-carelink/internal/service"
	"github.com/matricare/go-carelink/internal/session"
	"github.com/matricare/go-carelink/internal/store"
	"github.com/matricare/go-carelink/internal/workers"
)

// App wires the full client: local storages, backend adapter, session
// manager, services, and the background workers that keep the offline
// queue draining.
type App struct {
	services *service.ClientServices
	sessions *session.Manager
	workers  *workers.Workers
	logger   *logger.Logger
}

func NewApp(cfg *config.ClientConfig, log *logger.Logger) (*App, error) {
	storages, err := store.NewClientStorages(cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	backend := adapter.NewHTTPBackendAdapter(cfg.Adapter, log)

	sessions := session.NewManager(backend, storages.Session, cfg.Session.RefreshTimeout, log)
	backend.SetTokenSource(sessions)

	services := service.NewClientServices(storages, backend, cfg.Sync, log)

	watcher := netwatch.NewWatcher(cfg.Network, nil, func(ctx context.Context) {
		if _, err := services.Queue.Flush(ctx); err != nil {
			log.Warn().Err(err).Msg("connectivity-triggered flush failed")
		}
	}, log)

	flushWorker := workers.NewFlushWorker(services.Queue, cfg.Sync.FlushInterval, log)

	return &App{
		services: services,
		sessions: sessions,
		workers:  workers.New(watcher, flushWorker),
		logger:   log,
	}, nil
}

// Services exposes the application services for embedding callers
// (dashboards, tooling) built on this client.
func (a *App) Services() *service.ClientServices {
	return a.services
}

// Sessions exposes the session manager for sign-in/sign-out flows.
func (a *App) Sessions() *session.Manager {
	return a.sessions
}

// Run starts the background workers and blocks until ctx is cancelled,
// then stops them cleanly.
func (a *App) Run(ctx context.Context) error {
	a.workers.Start(ctx)
	defer a.workers.Stop()

	a.logger.Info().Msg("carelink client started")
	<-ctx.Done()
	a.logger.Info().Msg("carelink client stopping")

	return nil
}
