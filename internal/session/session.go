// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Matricare Health

// Package session owns the bearer credential of the signed-in user.
//
// Token resolution is fastest-first: an in-memory copy, then the durable
// local cache, then a refresh call bounded by a short timeout. If all three
// fail the manager reports an empty token and the request goes out
// unauthenticated — the backend, not the client, is the authority on
// rejecting stale credentials.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/matricare/go-carelink/internal/logger"
	"github.com/matricare/go-carelink/internal/store"
	"github.com/matricare/go-carelink/models"
)

// ErrNotSignedIn is returned by Current when no session exists at all.
var ErrNotSignedIn = errors.New("not signed in")

//go:generate mockgen -source=session.go -destination=../mock/auth_client_mock.go -package=mock

// AuthClient is the subset of the backend adapter the manager needs.
// The adapter satisfies it; declaring the subset here avoids coupling the
// manager to transport details.
type AuthClient interface {
	Login(ctx context.Context, login, password string) (models.Session, error)
	RefreshSession(ctx context.Context, token string) (models.Session, error)
}

// Manager caches and refreshes the session token. It implements the
// adapter's TokenSource. The cached token is written only here; every
// other call site is a reader.
type Manager struct {
	auth           AuthClient
	repo           store.SessionRepository
	refreshTimeout time.Duration
	logger         *logger.Logger

	now func() time.Time

	mu      sync.RWMutex
	session models.Session
	loaded  bool
}

// NewManager builds a session manager. refreshTimeout bounds the refresh
// fallback; zero or negative falls back to 2 seconds.
func NewManager(auth AuthClient, repo store.SessionRepository, refreshTimeout time.Duration, log *logger.Logger) *Manager {
	if refreshTimeout <= 0 {
		refreshTimeout = 2 * time.Second
	}
	return &Manager{
		auth:           auth,
		repo:           repo,
		refreshTimeout: refreshTimeout,
		logger:         log,
		now:            time.Now,
	}
}

// SignIn authenticates with the backend and caches the resulting session
// in memory and in the durable store.
func (m *Manager) SignIn(ctx context.Context, login, password string) (models.Session, error) {
	session, err := m.auth.Login(ctx, login, password)
	if err != nil {
		return models.Session{}, err
	}

	m.cache(ctx, session)
	return session, nil
}

// SignOut drops the cached session from memory and the durable store.
func (m *Manager) SignOut(ctx context.Context) error {
	m.mu.Lock()
	m.session = models.Session{}
	m.loaded = true
	m.mu.Unlock()

	return m.repo.ClearSession(ctx)
}

// Current returns the cached session without dialing the backend. An
// expired session is still returned; it identifies the user even when a
// refresh is due.
func (m *Manager) Current(ctx context.Context) (models.Session, error) {
	s, _ := m.cached(ctx)
	if s.Token == "" {
		return models.Session{}, ErrNotSignedIn
	}
	return s, nil
}

// Token implements the adapter's TokenSource contract.
//
// Resolution order:
//  1. in-memory session, if not expired;
//  2. session loaded from the durable store, if not expired;
//  3. a refresh call bounded by the configured timeout.
//
// Any failure downgrades to an empty token; the request proceeds
// unauthenticated and the backend rejects it if it must.
func (m *Manager) Token(ctx context.Context) string {
	if s, ok := m.cached(ctx); ok {
		return s.Token
	}

	return m.refresh(ctx)
}

// cached returns the freshest locally known session. The boolean reports
// whether the session is usable (present and unexpired).
func (m *Manager) cached(ctx context.Context) (models.Session, bool) {
	m.mu.RLock()
	session, loaded := m.session, m.loaded
	m.mu.RUnlock()

	if !loaded {
		stored, err := m.repo.GetSession(ctx)
		if err != nil && !errors.Is(err, store.ErrSessionNotFound) {
			m.logger.Warn().Err(err).Msg("failed to load cached session")
		}

		m.mu.Lock()
		// Another goroutine may have raced us here; keep its result.
		if !m.loaded {
			m.session = stored
			m.loaded = true
		}
		session = m.session
		m.mu.Unlock()
	}

	return session, !session.Expired(m.now())
}

// refresh exchanges the stale token for a fresh one. Returns the new token
// or "" when the refresh fails or times out.
func (m *Manager) refresh(ctx context.Context) string {
	m.mu.RLock()
	stale := m.session.Token
	m.mu.RUnlock()

	if stale == "" {
		return ""
	}

	refreshCtx, cancel := context.WithTimeout(ctx, m.refreshTimeout)
	defer cancel()

	session, err := m.auth.RefreshSession(refreshCtx, stale)
	if err != nil {
		m.logger.Warn().Err(err).Msg("session refresh failed, proceeding unauthenticated")
		return ""
	}

	m.cache(ctx, session)
	return session.Token
}

func (m *Manager) cache(ctx context.Context, session models.Session) {
	m.mu.Lock()
	m.session = session
	m.loaded = true
	m.mu.Unlock()

	if err := m.repo.SaveSession(ctx, session); err != nil {
		m.logger.Warn().Err(err).Msg("failed to persist session")
	}
}
