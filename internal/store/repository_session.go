package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/matricare/go-carelink/internal/logger"
	"github.com/matricare/go-carelink/models"
)

type sessionRepository struct {
	*DB
	logger *logger.Logger
}

func NewSessionRepository(db *DB, logger *logger.Logger) SessionRepository {
	return &sessionRepository{
		DB:     db,
		logger: logger,
	}
}

// SaveSession upserts the single cached session row.
func (s *sessionRepository) SaveSession(ctx context.Context, session models.Session) error {
	log := logger.FromContext(ctx)

	query, args, err := sq.Insert("session").
		Columns("id", "token", "user_id", "role", "expires_at").
		Values(1, session.Token, session.UserID, string(session.Role), session.ExpiresAt).
		Suffix("ON CONFLICT(id) DO UPDATE SET token=excluded.token, user_id=excluded.user_id, role=excluded.role, expires_at=excluded.expires_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build session upsert: %w", err)
	}

	if _, err = s.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "sessionRepository.SaveSession").
			Str("user_id", session.UserID).
			Msg("failed to persist session")
		return fmt.Errorf("failed to persist session: %w", err)
	}

	return nil
}

func (s *sessionRepository) GetSession(ctx context.Context) (models.Session, error) {
	log := logger.FromContext(ctx)

	query, args, err := sq.Select("token", "user_id", "role", "expires_at").
		From("session").
		Where(sq.Eq{"id": 1}).
		ToSql()
	if err != nil {
		return models.Session{}, fmt.Errorf("build session select: %w", err)
	}

	var session models.Session
	var role string
	row := s.DB.QueryRowContext(ctx, query, args...)
	if err = row.Scan(&session.Token, &session.UserID, &role, &session.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Session{}, ErrSessionNotFound
		}
		log.Err(err).
			Str("func", "sessionRepository.GetSession").
			Msg("failed to scan session row")
		return models.Session{}, fmt.Errorf("failed to scan session row: %w", err)
	}

	session.Role = models.Role(role)
	return session, nil
}

func (s *sessionRepository) ClearSession(ctx context.Context) error {
	log := logger.FromContext(ctx)

	query, args, err := sq.Delete("session").Where(sq.Eq{"id": 1}).ToSql()
	if err != nil {
		return fmt.Errorf("build session delete: %w", err)
	}

	if _, err = s.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "sessionRepository.ClearSession").
			Msg("failed to clear session")
		return fmt.Errorf("failed to clear session: %w", err)
	}

	return nil
}
