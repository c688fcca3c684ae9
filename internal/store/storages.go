package store

import (
	"context"
	"fmt"

	"github.com/matricare/go-carelink/internal/config"
	"github.com/matricare/go-carelink/internal/logger"
)

// ClientStorages groups all local repositories into a single value that is
// passed to the service layer.
type ClientStorages struct {
	// Queue is the SQLite-backed offline operation queue.
	Queue QueueRepository

	// Session caches the bearer token across restarts.
	Session SessionRepository
}

// NewClientStorages initialises the local storage layer:
//  1. opens the SQLite database at cfg.DB.DSN, creating the file if needed;
//  2. applies pending schema migrations;
//  3. wires the queue and session repositories over the shared connection.
func NewClientStorages(cfg config.ClientStorage, log *logger.Logger) (*ClientStorages, error) {
	log.Info().Msg("creating local storages...")

	db, err := NewConnectSQLite(context.Background(), cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &ClientStorages{
		Queue:   NewQueueRepository(db, log),
		Session: NewSessionRepository(db, log),
	}, nil
}
