// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Matricare Health

// Package service holds the client's application logic: the offline
// operation queue with batched replay, and the role-facing domain services
// that try a direct backend call first and fall back to the queue when the
// device is offline.
//
// The error taxonomy drives the fallback: validation failures surface
// immediately and are never queued (retrying a rejected request cannot
// change the verdict), and server errors that exhausted the adapter's
// retry budget surface too, since a 5xx proves the device is online. Only
// transport failures where no response arrived at all convert the action
// into a queued pending operation.
package service

import (
	"context"

	"github.com/matricare/go-carelink/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/services_mock.go -package=mock

// QueueService is the offline-first pending-operation queue.
type QueueService interface {
	// Enqueue serializes payload for kind and durably persists the
	// resulting operation before returning it.
	Enqueue(ctx context.Context, kind models.OperationKind, payload any) (models.PendingOperation, error)

	// EnqueueOperation persists an operation that was already built for
	// a direct delivery attempt, preserving its ID so the backend can
	// deduplicate if the direct attempt actually landed.
	EnqueueOperation(ctx context.Context, op models.PendingOperation) error

	// Flush replays all eligible queued operations as one batch request
	// and applies the backend's per-item verdicts: accepted operations
	// are removed, rejected ones stay with an incremented retry count.
	// A flush already in progress coalesces concurrent calls: the later
	// caller returns an empty result without submitting anything.
	Flush(ctx context.Context) (models.SyncResult, error)

	// Pending reports the number of queued operations.
	Pending(ctx context.Context) (int, error)

	// Stuck returns operations whose retry count exceeded the configured
	// bound; they are excluded from flushes and await user attention.
	Stuck(ctx context.Context) ([]models.PendingOperation, error)
}

// SubmitResult reports how a mutating user action was delivered.
type SubmitResult struct {
	// Operation is the client-identified action; its ID is stable across
	// a direct attempt and any later queued replay.
	Operation models.PendingOperation

	// Queued is true when the action was accepted into the offline
	// queue instead of being delivered directly.
	Queued bool

	// Reply holds the assistant's answer for directly delivered chat
	// messages, nil when queued.
	Reply *models.ChatReply

	// Document holds the created record for directly delivered uploads,
	// nil when queued.
	Document *models.DocumentRecord
}

// PatientFilter narrows and orders the patient view locally.
type PatientFilter struct {
	// Risk keeps only patients of the given level when non-empty.
	Risk models.RiskLevel

	// AssignedWorker keeps only patients of one ASHA worker when
	// non-empty.
	AssignedWorker string

	// SortBy orders the result: "name", "risk" (high first), or
	// "registered_at" (newest first). Empty means backend order.
	SortBy string
}

// DocumentFilter narrows the document view locally.
type DocumentFilter struct {
	PatientID string
	Status    models.DocumentStatus
}

// ApprovalFilter narrows the approval view locally.
type ApprovalFilter struct {
	Status models.ApprovalStatus
	Role   models.Role
}

// PatientService covers patient registration, assessments, and the
// patient list view.
type PatientService interface {
	RegisterPatient(ctx context.Context, form models.FormSubmission) (SubmitResult, error)
	RecordAssessment(ctx context.Context, form models.FormSubmission) (SubmitResult, error)
	Patients(ctx context.Context, filter PatientFilter) ([]models.Patient, error)
}

// ChatService covers the assistant conversation.
type ChatService interface {
	Send(ctx context.Context, msg models.ChatMessage) (SubmitResult, error)
}

// DocumentService covers document uploads and the document view.
type DocumentService interface {
	Upload(ctx context.Context, doc models.DocumentUpload) (SubmitResult, error)
	Documents(ctx context.Context, filter DocumentFilter) ([]models.DocumentRecord, error)
}

// ApprovalService covers the admin approval workflow. Decisions are
// interactive and deliberately never queued offline.
type ApprovalService interface {
	Approvals(ctx context.Context, filter ApprovalFilter) ([]models.ApprovalRequest, error)
	Resolve(ctx context.Context, requestID string, approve bool) error
}
