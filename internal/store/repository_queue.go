// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Matricare Health

package store

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/matricare/go-carelink/internal/logger"
	"github.com/matricare/go-carelink/models"
)

// queueColumns is the projection shared by all queue reads; seq drives the
// ORDER BY but is never exposed outside the repository.
var queueColumns = []string{"id", "kind", "payload", "created_at", "retry_count"}

type queueRepository struct {
	*DB
	logger *logger.Logger
}

func NewQueueRepository(db *DB, logger *logger.Logger) QueueRepository {
	return &queueRepository{
		DB:     db,
		logger: logger,
	}
}

func (q *queueRepository) Add(ctx context.Context, op models.PendingOperation) error {
	log := logger.FromContext(ctx)

	query, args, err := sq.Insert("queue").
		Columns("id", "kind", "payload", "created_at", "retry_count").
		Values(op.ID, string(op.Kind), string(op.Payload), op.CreatedAt, op.RetryCount).
		ToSql()
	if err != nil {
		return fmt.Errorf("build queue insert: %w", err)
	}

	result, err := q.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.Add").
			Str("operation_id", op.ID).
			Str("kind", string(op.Kind)).
			Msg("failed to insert pending operation")
		return fmt.Errorf("failed to save pending operation (id=%s): %w", op.ID, err)
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrOperationNotSaved
	}

	return nil
}

func (q *queueRepository) ListPending(ctx context.Context, kind models.OperationKind) ([]models.PendingOperation, error) {
	return q.list(ctx, sq.Eq{"kind": string(kind)})
}

func (q *queueRepository) ListAll(ctx context.Context) ([]models.PendingOperation, error) {
	return q.list(ctx, nil)
}

func (q *queueRepository) list(ctx context.Context, where any) ([]models.PendingOperation, error) {
	log := logger.FromContext(ctx)

	builder := sq.Select(queueColumns...).From("queue").OrderBy("seq ASC")
	if where != nil {
		builder = builder.Where(where)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build queue select: %w", err)
	}

	rows, err := q.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.list").
			Msg("failed to query pending operations")
		return nil, fmt.Errorf("failed to query pending operations: %w", err)
	}
	defer rows.Close()

	var ops []models.PendingOperation
	for rows.Next() {
		var op models.PendingOperation
		var kind, payload string

		if err = rows.Scan(&op.ID, &kind, &payload, &op.CreatedAt, &op.RetryCount); err != nil {
			log.Err(err).
				Str("func", "queueRepository.list").
				Msg("failed to scan pending operation row")
			return nil, fmt.Errorf("failed to scan pending operation row: %w", err)
		}

		op.Kind = models.OperationKind(kind)
		op.Payload = json.RawMessage(payload)
		ops = append(ops, op)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending operations: %w", err)
	}

	return ops, nil
}

func (q *queueRepository) Remove(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	query, args, err := sq.Delete("queue").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build queue delete: %w", err)
	}

	result, err := q.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.Remove").
			Str("operation_id", id).
			Msg("failed to delete pending operation")
		return fmt.Errorf("failed to delete pending operation (id=%s): %w", id, err)
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrOperationNotFound
	}

	return nil
}

func (q *queueRepository) BumpRetry(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	query, args, err := sq.Update("queue").
		Set("retry_count", sq.Expr("retry_count + 1")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build retry update: %w", err)
	}

	result, err := q.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.BumpRetry").
			Str("operation_id", id).
			Msg("failed to increment retry count")
		return fmt.Errorf("failed to increment retry count (id=%s): %w", id, err)
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrOperationNotFound
	}

	return nil
}

func (q *queueRepository) CountPending(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)

	query, args, err := sq.Select("COUNT(*)").From("queue").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build queue count: %w", err)
	}

	var count int
	if err = q.DB.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		log.Err(err).
			Str("func", "queueRepository.CountPending").
			Msg("failed to count pending operations")
		return 0, fmt.Errorf("failed to count pending operations: %w", err)
	}

	return count, nil
}
