// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Matricare Health

package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/matricare/go-carelink/internal/config"
	"github.com/matricare/go-carelink/internal/logger"
	"github.com/matricare/go-carelink/models"
)

type httpBackendAdapter struct {
	client     *resty.Client
	maxRetries int
	retryDelay time.Duration
	logger     *logger.Logger

	mu     sync.RWMutex
	source TokenSource
}

// NewHTTPBackendAdapter builds the resty-based [BackendAdapter].
//
// Retries and backoff are configured on the client once: retry only on
// network failure or 5xx, cfg.MaxRetries retries (so MaxRetries+1 attempts
// total), waiting backoffDelay(cfg.RetryDelay, n) before retry n.
func NewHTTPBackendAdapter(cfg config.ClientAdapter, log *logger.Logger) BackendAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}

	a := &httpBackendAdapter{
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     log,
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.RequestTimeout).
		SetRetryCount(cfg.MaxRetries).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// 4xx is a caller fault; repeating it cannot succeed.
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		}).
		SetRetryAfter(func(_ *resty.Client, r *resty.Response) (time.Duration, error) {
			return backoffDelay(cfg.RetryDelay, r.Request.Attempt), nil
		})

	cli.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if req.Header.Get("Authorization") != "" {
			return nil
		}
		if token := a.token(req.Context()); token != "" {
			req.SetHeader("Authorization", "Bearer "+token)
		}
		return nil
	})
	cli.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		log.Debug().
			Str("method", resp.Request.Method).
			Str("url", resp.Request.URL).
			Int("status", resp.StatusCode()).
			Int("attempt", resp.Request.Attempt).
			Dur("elapsed", resp.Time()).
			Msg("backend request completed")
		return nil
	})
	cli.OnError(func(req *resty.Request, err error) {
		log.Warn().
			Err(err).
			Str("method", req.Method).
			Str("url", req.URL).
			Int("attempt", req.Attempt).
			Msg("backend request failed")
	})

	a.client = cli
	return a
}

// backoffDelay returns the wait before retry attempt n (1-based):
// base, 2*base, 4*base, ...
func backoffDelay(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base << (attempt - 1)
}

func (a *httpBackendAdapter) SetTokenSource(source TokenSource) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.source = source
}

func (a *httpBackendAdapter) token(ctx context.Context) string {
	a.mu.RLock()
	source := a.source
	a.mu.RUnlock()

	if source == nil {
		return ""
	}
	return source.Token(ctx)
}

func (a *httpBackendAdapter) Login(ctx context.Context, login, password string) (models.Session, error) {
	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"login": login, "password": password}).
		Post("/auth/login")
	if err != nil {
		return models.Session{}, transportError("login request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Session{}, err
	}

	return sessionFromResponse(resp)
}

func (a *httpBackendAdapter) RefreshSession(ctx context.Context, token string) (models.Session, error) {
	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+token).
		Post("/auth/refresh")
	if err != nil {
		return models.Session{}, transportError("refresh session request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Session{}, err
	}

	return sessionFromResponse(resp)
}

func (a *httpBackendAdapter) SubmitForm(ctx context.Context, op models.PendingOperation) error {
	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(op).
		Post("/forms")
	if err != nil {
		return transportError("submit form request", err)
	}

	return mapHTTPError(resp)
}

func (a *httpBackendAdapter) SendChatMessage(ctx context.Context, op models.PendingOperation) (models.ChatReply, error) {
	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(op).
		Post("/chat/messages")
	if err != nil {
		return models.ChatReply{}, transportError("send chat message request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.ChatReply{}, err
	}

	var reply models.ChatReply
	if err = json.Unmarshal(resp.Body(), &reply); err != nil {
		return models.ChatReply{}, fmt.Errorf("decode chat reply: %w", err)
	}
	return reply, nil
}

func (a *httpBackendAdapter) UploadDocument(ctx context.Context, op models.PendingOperation) (models.DocumentRecord, error) {
	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(op).
		Post("/documents")
	if err != nil {
		return models.DocumentRecord{}, transportError("upload document request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.DocumentRecord{}, err
	}

	var record models.DocumentRecord
	if err = json.Unmarshal(resp.Body(), &record); err != nil {
		return models.DocumentRecord{}, fmt.Errorf("decode document record: %w", err)
	}
	return record, nil
}

func (a *httpBackendAdapter) SyncBatch(ctx context.Context, req models.SyncBatchRequest) (models.SyncBatchResponse, error) {
	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/sync/batch")
	if err != nil {
		return models.SyncBatchResponse{}, transportError("sync batch request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.SyncBatchResponse{}, err
	}

	var out models.SyncBatchResponse
	if err = json.Unmarshal(resp.Body(), &out); err != nil {
		return models.SyncBatchResponse{}, fmt.Errorf("decode sync batch response: %w", err)
	}
	return out, nil
}

func (a *httpBackendAdapter) ListPatients(ctx context.Context) ([]models.Patient, error) {
	resp, err := a.client.R().SetContext(ctx).Get("/patients")
	if err != nil {
		return nil, transportError("list patients request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var items []models.Patient
	if err = json.Unmarshal(resp.Body(), &items); err != nil {
		return nil, fmt.Errorf("decode patients response: %w", err)
	}
	return items, nil
}

func (a *httpBackendAdapter) ListDocuments(ctx context.Context, patientID string) ([]models.DocumentRecord, error) {
	req := a.client.R().SetContext(ctx)
	if patientID != "" {
		req.SetQueryParam("patient_id", patientID)
	}
	resp, err := req.Get("/documents")
	if err != nil {
		return nil, transportError("list documents request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var items []models.DocumentRecord
	if err = json.Unmarshal(resp.Body(), &items); err != nil {
		return nil, fmt.Errorf("decode documents response: %w", err)
	}
	return items, nil
}

func (a *httpBackendAdapter) ListApprovals(ctx context.Context) ([]models.ApprovalRequest, error) {
	resp, err := a.client.R().SetContext(ctx).Get("/approvals")
	if err != nil {
		return nil, transportError("list approvals request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var items []models.ApprovalRequest
	if err = json.Unmarshal(resp.Body(), &items); err != nil {
		return nil, fmt.Errorf("decode approvals response: %w", err)
	}
	return items, nil
}

func (a *httpBackendAdapter) ResolveApproval(ctx context.Context, requestID string, approve bool) error {
	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]bool{"approve": approve}).
		Put("/approvals/" + requestID)
	if err != nil {
		return transportError("resolve approval request", err)
	}

	return mapHTTPError(resp)
}

// mapHTTPError converts a non-2xx response into a sentinel-tagged error.
// The status line and body survive in the message so the root cause is
// never hidden from the caller.
func mapHTTPError(resp *resty.Response) error {
	code := resp.StatusCode()
	if code >= http.StatusOK && code < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(code)
	}

	switch {
	case code == http.StatusUnauthorized:
		return fmt.Errorf("%w: http %d: %s", ErrUnauthorized, code, body)
	case code >= http.StatusInternalServerError:
		return fmt.Errorf("%w: http %d: %s", ErrServerUnavailable, code, body)
	default:
		return fmt.Errorf("%w: http %d: %s", ErrValidation, code, body)
	}
}

// transportError tags a network-level failure (no response at all) as
// ErrBackendUnreachable while keeping the original error reachable via
// errors.Is/As.
func transportError(action string, err error) error {
	return fmt.Errorf("%s: %w", action, errors.Join(ErrBackendUnreachable, err))
}

func sessionFromResponse(resp *resty.Response) (models.Session, error) {
	token, err := parseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		return models.Session{}, fmt.Errorf("parse bearer token: %w", err)
	}

	session, err := models.ParseSession(token)
	if err != nil {
		return models.Session{}, err
	}
	return session, nil
}

func parseBearerToken(value string) (string, error) {
	parts := strings.Split(strings.TrimSpace(value), " ")
	if len(parts) != 2 || parts[1] == "" {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}
