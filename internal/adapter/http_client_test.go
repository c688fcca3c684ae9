// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Matricare Health

package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matricare/go-carelink/internal/config"
	"github.com/matricare/go-carelink/internal/logger"
	"github.com/matricare/go-carelink/models"
)

type staticTokenSource string

func (s staticTokenSource) Token(context.Context) string { return string(s) }

func newTestAdapter(t *testing.T, baseURL string, maxRetries int) BackendAdapter {
	t.Helper()
	return NewHTTPBackendAdapter(config.ClientAdapter{
		BaseURL:        baseURL,
		RequestTimeout: 5 * time.Second,
		MaxRetries:     maxRetries,
		RetryDelay:     time.Millisecond,
	}, logger.Nop())
}

func signTestToken(t *testing.T, userID string, role models.Role, expiresAt time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"exp":  expiresAt.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestHTTPBackendAdapter_RetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	backend := newTestAdapter(t, srv.URL, 3)

	err := backend.SubmitForm(context.Background(), models.PendingOperation{ID: "op-1", Kind: models.KindFormSubmission})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServerUnavailable)
	// The server answered, so the device is not offline.
	assert.NotErrorIs(t, err, ErrBackendUnreachable)
	// 1 initial attempt + 3 retries.
	assert.EqualValues(t, 4, attempts.Load())
}

func TestHTTPBackendAdapter_RecoversWithinRetryBudget(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	backend := newTestAdapter(t, srv.URL, 3)

	err := backend.SubmitForm(context.Background(), models.PendingOperation{ID: "op-1", Kind: models.KindFormSubmission})

	require.NoError(t, err)
	assert.EqualValues(t, 3, attempts.Load())
}

func TestHTTPBackendAdapter_DoesNotRetryClientErrors(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		http.Error(w, "missing patient_id", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	backend := newTestAdapter(t, srv.URL, 3)

	err := backend.SubmitForm(context.Background(), models.PendingOperation{ID: "op-1", Kind: models.KindFormSubmission})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrServerUnavailable)
	assert.EqualValues(t, 1, attempts.Load())
	assert.Contains(t, err.Error(), "missing patient_id")
}

func TestHTTPBackendAdapter_MapsUnauthorized(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	backend := newTestAdapter(t, srv.URL, 3)

	_, err := backend.ListPatients(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.EqualValues(t, 1, attempts.Load())
}

func TestHTTPBackendAdapter_NetworkFailureIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // nothing listens anymore

	backend := newTestAdapter(t, srv.URL, 0)

	err := backend.SubmitForm(context.Background(), models.PendingOperation{ID: "op-1", Kind: models.KindFormSubmission})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBackendUnreachable)
	assert.NotErrorIs(t, err, ErrServerUnavailable)
}

func TestBackoffDelay(t *testing.T) {
	base := time.Second

	assert.Equal(t, 1*time.Second, backoffDelay(base, 1))
	assert.Equal(t, 2*time.Second, backoffDelay(base, 2))
	assert.Equal(t, 4*time.Second, backoffDelay(base, 3))

	// Attempt numbers below 1 clamp to the base delay.
	assert.Equal(t, base, backoffDelay(base, 0))
}

func TestHTTPBackendAdapter_AttachesBearerToken(t *testing.T) {
	var gotAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	backend := newTestAdapter(t, srv.URL, 0)
	backend.SetTokenSource(staticTokenSource("token-123"))

	require.NoError(t, backend.SubmitForm(context.Background(), models.PendingOperation{ID: "op-1", Kind: models.KindFormSubmission}))

	assert.Equal(t, "Bearer token-123", gotAuth.Load())
}

func TestHTTPBackendAdapter_RefreshUsesExplicitToken(t *testing.T) {
	fresh := signTestToken(t, "user-1", models.RoleASHA, time.Now().Add(time.Hour))

	var gotAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		w.Header().Set("Authorization", "Bearer "+fresh)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	backend := newTestAdapter(t, srv.URL, 0)
	// The cached token must not shadow the stale one being exchanged.
	backend.SetTokenSource(staticTokenSource("cached-token"))

	session, err := backend.RefreshSession(context.Background(), "stale-token")

	require.NoError(t, err)
	assert.Equal(t, "Bearer stale-token", gotAuth.Load())
	assert.Equal(t, fresh, session.Token)
	assert.Equal(t, "user-1", session.UserID)
	assert.Equal(t, models.RoleASHA, session.Role)
}

func TestHTTPBackendAdapter_LoginParsesSession(t *testing.T) {
	expiresAt := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signTestToken(t, "user-7", models.RoleDoctor, expiresAt)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)

		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds["login"] != "asha" || creds["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Authorization", "Bearer "+token)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	backend := newTestAdapter(t, srv.URL, 0)

	session, err := backend.Login(context.Background(), "asha", "secret")

	require.NoError(t, err)
	assert.Equal(t, token, session.Token)
	assert.Equal(t, "user-7", session.UserID)
	assert.Equal(t, models.RoleDoctor, session.Role)
	assert.WithinDuration(t, expiresAt, session.ExpiresAt, time.Second)

	_, err = backend.Login(context.Background(), "asha", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestHTTPBackendAdapter_SyncBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sync/batch", r.URL.Path)

		var req models.SyncBatchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		resp := models.SyncBatchResponse{}
		for _, op := range req.Forms {
			resp.Results = append(resp.Results, models.SyncItemResult{ID: op.ID, Accepted: true})
		}
		for _, op := range req.Chats {
			resp.Results = append(resp.Results, models.SyncItemResult{ID: op.ID, Accepted: false, Error: "conversation closed"})
		}

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	backend := newTestAdapter(t, srv.URL, 0)

	out, err := backend.SyncBatch(context.Background(), models.SyncBatchRequest{
		Forms: []models.PendingOperation{{ID: "f-1", Kind: models.KindFormSubmission}},
		Chats: []models.PendingOperation{{ID: "c-1", Kind: models.KindChatMessage}},
	})

	require.NoError(t, err)
	require.Len(t, out.Results, 2)
	assert.Equal(t, models.SyncItemResult{ID: "f-1", Accepted: true}, out.Results[0])
	assert.Equal(t, models.SyncItemResult{ID: "c-1", Accepted: false, Error: "conversation closed"}, out.Results[1])
}

func TestParseBearerToken(t *testing.T) {
	token, err := parseBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	_, err = parseBearerToken("")
	assert.Error(t, err)

	_, err = parseBearerToken("Bearer")
	assert.Error(t, err)
}
