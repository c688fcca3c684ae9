// Package workers provides abstractions for managing and running the
// client's background workers (periodic queue flushing, connectivity
// watching) in a unified way.
package workers

import "context"

// Worker is implemented by any background worker. Start launches the
// worker's goroutine and returns; Stop blocks until it has fully exited.
type Worker interface {
	Start(ctx context.Context)
	Stop()
}
