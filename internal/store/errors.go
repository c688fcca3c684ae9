package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known
// failure conditions. Callers should use [errors.Is] to match against them.
var (
	// ErrOperationNotSaved is returned when an INSERT of a pending
	// operation completes without error but affects zero rows.
	ErrOperationNotSaved = errors.New("pending operation was not saved")

	// ErrOperationNotFound is returned when a removal or retry bump
	// targets an operation ID that is not in the queue.
	ErrOperationNotFound = errors.New("pending operation was not found")

	// ErrSessionNotFound is returned when no cached session exists in
	// the local database.
	ErrSessionNotFound = errors.New("local session not found")
)
