// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Matricare Health

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OperationKind identifies the category of a queued mutation.
// The value determines which backend endpoint replays the operation and
// how its payload must be interpreted.
type OperationKind string

const (
	// KindFormSubmission represents a structured clinical form:
	// patient registration or a recorded assessment.
	KindFormSubmission OperationKind = "form_submission"

	// KindChatMessage represents one user message addressed to the
	// backend care assistant.
	KindChatMessage OperationKind = "chat_message"

	// KindDocumentUpload represents a medical document (scan, report,
	// certificate) submitted for backend analysis. The document content
	// travels base64-encoded inside the payload.
	KindDocumentUpload OperationKind = "document_upload"
)

// Valid reports whether k is one of the known operation kinds.
func (k OperationKind) Valid() bool {
	switch k {
	case KindFormSubmission, KindChatMessage, KindDocumentUpload:
		return true
	}
	return false
}

// PendingOperation is a mutating user action that has not yet been
// acknowledged by the backend. It is created when a direct submission fails
// for connectivity reasons, persisted immediately, and removed only after
// the backend accepts it during replay.
//
// A PendingOperation is immutable once created: the only permitted changes
// are retry-count increments and eventual removal. In particular ID and
// Payload never change, so the backend can deduplicate redelivered
// operations by ID.
type PendingOperation struct {
	// ID is the client-generated identifier of the operation.
	// It accompanies every replay attempt unchanged.
	ID string `json:"id"`

	// Kind categorizes the operation and selects its payload shape.
	Kind OperationKind `json:"kind"`

	// Payload is the JSON-encoded, kind-specific body of the operation.
	Payload json.RawMessage `json:"payload"`

	// CreatedAt records when the user performed the action,
	// not when it was eventually delivered.
	CreatedAt time.Time `json:"created_at"`

	// RetryCount is the number of replay attempts that were rejected
	// by the backend for this operation.
	RetryCount int `json:"retry_count"`
}

// NewPendingOperation builds a PendingOperation from a kind-specific payload
// value. The payload is serialized once, at creation time, so later replays
// deliver byte-identical bodies.
func NewPendingOperation(kind OperationKind, payload any) (PendingOperation, error) {
	if !kind.Valid() {
		return PendingOperation{}, fmt.Errorf("unknown operation kind %q", kind)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return PendingOperation{}, fmt.Errorf("encode %s payload: %w", kind, err)
	}

	return PendingOperation{
		ID:        uuid.NewString(),
		Kind:      kind,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// FormSubmission is the payload of a KindFormSubmission operation.
// It covers both patient registration forms and clinical assessments;
// FormType distinguishes the two.
type FormSubmission struct {
	// FormType is "registration" or "assessment".
	FormType string `json:"form_type"`

	// PatientID references an existing patient for assessments.
	// Empty for registration forms, where the backend assigns the ID.
	PatientID string `json:"patient_id,omitempty"`

	// Fields holds the validated form fields as submitted by the user.
	Fields map[string]string `json:"fields"`

	// RecordedBy is the identifier of the submitting user
	// (mother, ASHA worker, or doctor).
	RecordedBy string `json:"recorded_by"`
}

// ChatMessage is the payload of a KindChatMessage operation.
type ChatMessage struct {
	// ConversationID groups messages of one assistant conversation.
	ConversationID string `json:"conversation_id"`

	// Text is the user's message body.
	Text string `json:"text"`

	// SenderID identifies the authoring user.
	SenderID string `json:"sender_id"`
}

// DocumentUpload is the payload of a KindDocumentUpload operation.
type DocumentUpload struct {
	// PatientID is the patient the document belongs to.
	PatientID string `json:"patient_id"`

	// FileName is the original name of the uploaded file.
	FileName string `json:"file_name"`

	// ContentType is the MIME type of the document.
	ContentType string `json:"content_type"`

	// Content is the base64-encoded document body.
	Content string `json:"content"`

	// UploadedBy identifies the uploading user.
	UploadedBy string `json:"uploaded_by"`
}

// DecodePayload decodes raw into the payload type dictated by kind.
// Unknown kinds and payloads that do not match the expected shape are
// rejected, so a corrupted queue row surfaces at decode time rather than
// at the backend.
func DecodePayload(kind OperationKind, raw json.RawMessage) (any, error) {
	switch kind {
	case KindFormSubmission:
		var p FormSubmission
		if err := strictUnmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode form submission: %w", err)
		}
		return p, nil
	case KindChatMessage:
		var p ChatMessage
		if err := strictUnmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode chat message: %w", err)
		}
		return p, nil
	case KindDocumentUpload:
		var p DocumentUpload
		if err := strictUnmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode document upload: %w", err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown operation kind %q", kind)
	}
}

func strictUnmarshal(raw json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
