// Package refreshtokens provides a PostgreSQL-backed repository for managing
// refresh tokens used in the server's authentication flow.
package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// PostgresRepository implements refresh token storage over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new refresh token row.
func (r *PostgresRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (jti, user_id, hashed_secret, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query, token.JTI, token.UserID, token.HashedSecret, token.Expires); err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	return nil
}

// Find returns the refresh token row for the given jti.
// If not found, it returns common.ErrorNotFound.
func (r *PostgresRepository) Find(ctx context.Context, jti string) (*models.RefreshToken, error) {
	query := `
		SELECT jti, user_id, hashed_secret, expires_at, revoked, created_at
		FROM refresh_tokens
		WHERE jti = $1
	`
	t := &models.RefreshToken{}
	if err := r.db.QueryRowContext(ctx, query, jti).Scan(&t.JTI, &t.UserID, &t.HashedSecret, &t.Expires, &t.Revoked, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

// Revoke is a single check-and-set statement, so two redemptions racing on
// the same jti cannot both observe a live token.
func (r *PostgresRepository) Revoke(ctx context.Context, jti string) (bool, error) {
	query := `
		UPDATE refresh_tokens
		SET revoked = true
		WHERE jti = $1 AND revoked = false AND expires_at > now()
	`
	res, err := r.db.ExecContext(ctx, query, jti)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}

// RevokeAllForUser marks every token of userID as revoked.
func (r *PostgresRepository) RevokeAllForUser(ctx context.Context, userID string) error {
	query := `
		UPDATE refresh_tokens
		SET revoked = true
		WHERE user_id = $1 AND revoked = false
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
