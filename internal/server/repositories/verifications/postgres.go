package verifications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, s *models.VerificationSession) error {
	query := `
		INSERT INTO verification_sessions (session_id, email, code, purpose, hashed_password, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.db.ExecContext(ctx, query, s.SessionID, s.Email, s.Code, s.Purpose, s.HashedPassword, s.ExpiresAt); err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	return nil
}

func (r *PostgresRepository) FindValid(ctx context.Context, sessionID string) (*models.VerificationSession, error) {
	query := `
		SELECT session_id, email, code, purpose, hashed_password, expires_at, consumed_at, created_at
		FROM verification_sessions
		WHERE session_id = $1 AND expires_at > now() AND consumed_at IS NULL
	`
	s := &models.VerificationSession{}
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&s.SessionID, &s.Email, &s.Code, &s.Purpose, &s.HashedPassword, &s.ExpiresAt, &s.ConsumedAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) Consume(ctx context.Context, sessionID string) (bool, error) {
	query := `
		UPDATE verification_sessions
		SET consumed_at = now()
		WHERE session_id = $1 AND expires_at > now() AND consumed_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, sessionID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}
