// Package store is the client's durable local persistence layer: a SQLite
// database holding the offline operation queue and the cached session.
//
// The queue table carries a monotonically increasing sequence column, so
// FIFO replay order is a property of the storage, not of timestamps.
// Removing one row never renumbers the remainder, which is what lets a
// partially accepted batch shrink without reordering.
package store

import (
	"context"

	"github.com/matricare/go-carelink/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// QueueRepository is the low-level pending-operation store.
type QueueRepository interface {
	// Add persists a new pending operation. The write is durable when
	// Add returns.
	Add(ctx context.Context, op models.PendingOperation) error

	// ListPending returns all queued operations of one kind in
	// insertion order (oldest first).
	ListPending(ctx context.Context, kind models.OperationKind) ([]models.PendingOperation, error)

	// ListAll returns every queued operation in insertion order.
	ListAll(ctx context.Context) ([]models.PendingOperation, error)

	// Remove deletes a single operation by its client-generated ID
	// without touching any other row.
	Remove(ctx context.Context, id string) error

	// BumpRetry increments the retry counter of one operation.
	BumpRetry(ctx context.Context, id string) error

	// CountPending returns the number of queued operations.
	CountPending(ctx context.Context) (int, error)
}

// SessionRepository caches the signed-in user's bearer token across
// process restarts. A single row is kept; saving replaces it.
type SessionRepository interface {
	SaveSession(ctx context.Context, session models.Session) error
	GetSession(ctx context.Context) (models.Session, error)
	ClearSession(ctx context.Context) error
}
