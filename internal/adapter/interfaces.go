// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Matricare Health

// Package adapter provides the transport layer for communicating with the
// CareLink backend.
//
// The primary abstraction is [BackendAdapter], which decouples the service
// layer from HTTP mechanics: bearer-token attachment, bounded retry with
// exponential backoff, and mapping of transport failures to the sentinel
// errors in errors.go so callers can branch with [errors.Is].
//
// Retry policy: a request is retried only on a network failure or a 5xx
// response, at most MaxRetries times, waiting RetryDelay*2^(n-1) before
// retry n. 4xx responses are returned immediately because repeating a
// rejected request cannot change the outcome.
package adapter

import (
	"context"

	"github.com/matricare/go-carelink/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/backend_adapter_mock.go -package=mock

// TokenSource supplies the bearer token attached to outbound requests.
// An empty string means "no usable credential": the request is sent
// unauthenticated and the backend decides its fate.
//
// Implementations must be fast on the common path; the session manager
// satisfies this with a cached-token fast path and a time-bounded refresh
// fallback.
type TokenSource interface {
	Token(ctx context.Context) string
}

// BackendAdapter defines the client's view of the CareLink backend REST
// API. Implementations own serialisation, authentication headers, retry,
// and error mapping.
type BackendAdapter interface {
	// SetTokenSource installs the credential supplier used for all
	// subsequent authenticated requests. Requests issued before a source
	// is installed go out unauthenticated.
	SetTokenSource(source TokenSource)

	// Login exchanges user credentials for a session token.
	Login(ctx context.Context, login, password string) (models.Session, error)

	// RefreshSession exchanges a previously issued (possibly expired)
	// token for a fresh one. The supplied token is sent explicitly; the
	// installed TokenSource is bypassed to avoid recursion.
	RefreshSession(ctx context.Context, token string) (models.Session, error)

	// SubmitForm delivers a form-submission operation directly. The
	// operation's client-generated ID travels with the request so the
	// backend can deduplicate a later queued replay of the same action.
	SubmitForm(ctx context.Context, op models.PendingOperation) error

	// SendChatMessage delivers a chat-message operation directly and
	// returns the assistant's reply.
	SendChatMessage(ctx context.Context, op models.PendingOperation) (models.ChatReply, error)

	// UploadDocument delivers a document-upload operation directly and
	// returns the created document record.
	UploadDocument(ctx context.Context, op models.PendingOperation) (models.DocumentRecord, error)

	// SyncBatch replays queued operations grouped by kind in one request
	// and returns the backend's per-item verdicts.
	SyncBatch(ctx context.Context, req models.SyncBatchRequest) (models.SyncBatchResponse, error)

	// ListPatients fetches the patients visible to the signed-in role.
	ListPatients(ctx context.Context) ([]models.Patient, error)

	// ListDocuments fetches document records, optionally scoped to one
	// patient (empty patientID means all visible documents).
	ListDocuments(ctx context.Context, patientID string) ([]models.DocumentRecord, error)

	// ListApprovals fetches pending user-approval requests (admin only).
	ListApprovals(ctx context.Context) ([]models.ApprovalRequest, error)

	// ResolveApproval records an admin decision on an approval request.
	ResolveApproval(ctx context.Context, requestID string, approve bool) error
}
