// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Matricare Health

package models

// SyncBatchRequest is the body of POST /sync/batch. Pending operations are
// grouped by kind; the order inside each slice is the order in which the
// operations were enqueued, and the backend is expected to apply them in
// that order. No ordering is promised across the three slices.
type SyncBatchRequest struct {
	// Forms holds queued form submissions, oldest first.
	Forms []PendingOperation `json:"forms"`

	// Chats holds queued chat messages, oldest first.
	Chats []PendingOperation `json:"chats"`

	// Documents holds queued document uploads, oldest first.
	Documents []PendingOperation `json:"documents"`
}

// Size returns the total number of operations in the batch.
func (r SyncBatchRequest) Size() int {
	return len(r.Forms) + len(r.Chats) + len(r.Documents)
}

// SyncItemResult is the backend's verdict on one replayed operation.
type SyncItemResult struct {
	// ID is the client-generated operation identifier being acknowledged.
	ID string `json:"id"`

	// Accepted reports whether the backend applied the operation.
	// Redelivery of an already-applied ID is reported as accepted.
	Accepted bool `json:"accepted"`

	// Error carries the backend's reason when Accepted is false.
	Error string `json:"error,omitempty"`
}

// SyncBatchResponse is the per-item response to a SyncBatchRequest.
type SyncBatchResponse struct {
	// Results holds one entry per submitted operation.
	Results []SyncItemResult `json:"results"`
}

// SyncResult summarizes one flush cycle over the offline queue.
type SyncResult struct {
	// Submitted is the number of operations sent to the backend.
	Submitted int `json:"submitted"`

	// Accepted is the number of operations acknowledged and removed
	// from the queue.
	Accepted int `json:"accepted"`

	// Rejected is the number of operations the backend refused; they
	// remain queued with an incremented retry count.
	Rejected int `json:"rejected"`

	// Skipped is the number of operations held back because their retry
	// count exceeded the configured bound.
	Skipped int `json:"skipped"`
}
