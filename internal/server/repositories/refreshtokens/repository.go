// Package refreshtokens declares the server-side repository contract for
// managing refresh tokens in persistent storage.
package refreshtokens

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking refresh tokens.
type Repository interface {
	// Create stores a new refresh token row.
	Create(ctx context.Context, token *models.RefreshToken) error

	// Find looks up a refresh token by jti. Implementations return
	// common.ErrorNotFound when the token is absent.
	Find(ctx context.Context, jti string) (*models.RefreshToken, error)

	// Revoke flips a live (not revoked, not expired) token to revoked and
	// reports whether this call did it. Concurrent callers on the same jti
	// see true at most once.
	Revoke(ctx context.Context, jti string) (bool, error)

	// RevokeAllForUser revokes every token of userID. Idempotent.
	RevokeAllForUser(ctx context.Context, userID string) error
}
