// Package verifications persists time-boxed signup and password reset
// sessions.
package verifications

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Repository defines verification session persistence.
type Repository interface {
	Create(ctx context.Context, session *models.VerificationSession) error

	// FindValid returns the session only when it is unexpired and not yet
	// consumed. Missing, expired and consumed sessions all yield
	// common.ErrorNotFound.
	FindValid(ctx context.Context, sessionID string) (*models.VerificationSession, error)

	// Consume marks a valid session as used and reports whether this call
	// did it.
	Consume(ctx context.Context, sessionID string) (bool, error)
}
