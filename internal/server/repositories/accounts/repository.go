// Package accounts persists the links between local users and identity
// providers.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Repository defines account persistence.
type Repository interface {
	// Create inserts a new account. Accounts are immutable once created.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	// GetByProviderKey returns the account bound to (provider, providerAccountID)
	// or common.ErrorNotFound.
	GetByProviderKey(ctx context.Context, provider, providerAccountID string) (*models.Account, error)
}
