package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matricare/go-carelink/internal/logger"
	"github.com/matricare/go-carelink/models"
)

func TestSessionRepository_SaveSessionUpserts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db, logger.Nop())

	session := models.Session{
		Token:     "token-1",
		UserID:    "user-1",
		Role:      models.RoleASHA,
		ExpiresAt: time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO session (id,token,user_id,role,expires_at) VALUES (?,?,?,?,?) ON CONFLICT(id) DO UPDATE SET")).
		WithArgs(1, session.Token, session.UserID, string(session.Role), session.ExpiresAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.SaveSession(context.Background(), session))
}

func TestSessionRepository_GetSession(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db, logger.Nop())

	expiresAt := time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT token, user_id, role, expires_at FROM session WHERE id = ?")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"token", "user_id", "role", "expires_at"}).
			AddRow("token-1", "user-1", "doctor", expiresAt))

	session, err := repo.GetSession(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "token-1", session.Token)
	assert.Equal(t, "user-1", session.UserID)
	assert.Equal(t, models.RoleDoctor, session.Role)
	assert.Equal(t, expiresAt, session.ExpiresAt)
}

func TestSessionRepository_GetSessionNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db, logger.Nop())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT token, user_id, role, expires_at FROM session WHERE id = ?")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"token", "user_id", "role", "expires_at"}))

	_, err := repo.GetSession(context.Background())

	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionRepository_ClearSession(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db, logger.Nop())

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM session WHERE id = ?")).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ClearSession(context.Background()))
}
