// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Matricare Health

package store

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matricare/go-carelink/internal/logger"
	"github.com/matricare/go-carelink/models"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		conn.Close()
	})

	return &DB{DB: conn, logger: logger.Nop()}, mock
}

func TestQueueRepository_Add(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewQueueRepository(db, logger.Nop())

	op := models.PendingOperation{
		ID:        "op-1",
		Kind:      models.KindFormSubmission,
		Payload:   json.RawMessage(`{"form_type":"registration"}`),
		CreatedAt: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO queue (id,kind,payload,created_at,retry_count) VALUES (?,?,?,?,?)")).
		WithArgs(op.ID, string(op.Kind), string(op.Payload), op.CreatedAt, op.RetryCount).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Add(context.Background(), op))
}

func TestQueueRepository_AddNotSaved(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewQueueRepository(db, logger.Nop())

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO queue")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Add(context.Background(), models.PendingOperation{ID: "op-1", Kind: models.KindChatMessage})

	assert.ErrorIs(t, err, ErrOperationNotSaved)
}

func TestQueueRepository_ListPendingKeepsInsertionOrder(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewQueueRepository(db, logger.Nop())

	created := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "kind", "payload", "created_at", "retry_count"}).
		AddRow("op-1", "form_submission", `{"form_type":"registration"}`, created, 0).
		AddRow("op-2", "form_submission", `{"form_type":"assessment"}`, created.Add(time.Minute), 2)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, kind, payload, created_at, retry_count FROM queue WHERE kind = ? ORDER BY seq ASC")).
		WithArgs("form_submission").
		WillReturnRows(rows)

	ops, err := repo.ListPending(context.Background(), models.KindFormSubmission)

	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, "op-1", ops[0].ID)
	assert.Equal(t, "op-2", ops[1].ID)
	assert.Equal(t, models.KindFormSubmission, ops[0].Kind)
	assert.JSONEq(t, `{"form_type":"assessment"}`, string(ops[1].Payload))
	assert.Equal(t, 2, ops[1].RetryCount)
}

func TestQueueRepository_ListAll(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewQueueRepository(db, logger.Nop())

	created := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "kind", "payload", "created_at", "retry_count"}).
		AddRow("op-1", "chat_message", `{"text":"hello"}`, created, 0)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, kind, payload, created_at, retry_count FROM queue ORDER BY seq ASC")).
		WillReturnRows(rows)

	ops, err := repo.ListAll(context.Background())

	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, models.KindChatMessage, ops[0].Kind)
}

func TestQueueRepository_Remove(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewQueueRepository(db, logger.Nop())

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM queue WHERE id = ?")).
		WithArgs("op-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Remove(context.Background(), "op-1"))
}

func TestQueueRepository_RemoveMissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewQueueRepository(db, logger.Nop())

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM queue WHERE id = ?")).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Remove(context.Background(), "ghost")

	assert.ErrorIs(t, err, ErrOperationNotFound)
}

func TestQueueRepository_BumpRetry(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewQueueRepository(db, logger.Nop())

	mock.ExpectExec(regexp.QuoteMeta("UPDATE queue SET retry_count = retry_count + 1 WHERE id = ?")).
		WithArgs("op-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.BumpRetry(context.Background(), "op-1"))
}

func TestQueueRepository_CountPending(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewQueueRepository(db, logger.Nop())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM queue")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountPending(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestQueueRepository_QueryFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewQueueRepository(db, logger.Nop())

	queryErr := errors.New("database is locked")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, kind, payload, created_at, retry_count FROM queue")).
		WillReturnError(queryErr)

	_, err := repo.ListAll(context.Background())

	assert.ErrorIs(t, err, queryErr)
}
