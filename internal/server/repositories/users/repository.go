// Package users declares and implements persistence of local user records.
package users

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Repository defines user persistence. Lookups return common.ErrorNotFound
// when no row matches.
type Repository interface {
	// Create inserts user. A duplicate email yields common.ErrEmailAlreadyRegistered.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// ExistsByName reports whether a user already holds name.
	ExistsByName(ctx context.Context, name string) (bool, error)
	// UpdatePassword replaces the password hash of the user with email.
	UpdatePassword(ctx context.Context, email string, passwordHash string) error
}
