package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// ErrAlreadyLinked is returned when (provider, provider_account_id) is taken.
var ErrAlreadyLinked = errors.New("provider account already linked")

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	query := `
		INSERT INTO accounts (id, type, user_id, provider, provider_account_id, access_token, refresh_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		a.ID, a.Type, a.UserID, a.Provider, a.ProviderAccountID, a.AccessToken, a.RefreshToken,
	).Scan(&a.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err, "") {
			return nil, ErrAlreadyLinked
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return a, nil
}

func (r *PostgresRepository) GetByProviderKey(ctx context.Context, provider, providerAccountID string) (*models.Account, error) {
	query := `
		SELECT id, type, user_id, provider, provider_account_id, access_token, refresh_token, created_at
		FROM accounts
		WHERE provider = $1 AND provider_account_id = $2
	`

	a := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, provider, providerAccountID).Scan(
		&a.ID, &a.Type, &a.UserID, &a.Provider, &a.ProviderAccountID, &a.AccessToken, &a.RefreshToken, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}
