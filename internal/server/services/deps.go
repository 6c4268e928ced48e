// Package services contains the authentication core: token issuing and
// rotation, verification code sessions, OAuth identity resolution and the
// SessionService facade used by the transport layer.
package services

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/mailer"
	"github.com/google/uuid"
)

// MailQueue accepts verification emails for asynchronous delivery.
type MailQueue interface {
	Enqueue(ctx context.Context, msg mailer.Message) error
}

// AvatarCopier copies a remote image into object storage and returns the
// public URL of the copy.
type AvatarCopier interface {
	CopyFromURL(ctx context.Context, uid, url string) (string, error)
}

// Recorder counts operation outcomes.
type Recorder interface {
	AuthEvent(operation string, err error)
}

type nopRecorder struct{}

func (nopRecorder) AuthEvent(string, error) {}

func newUserID() string { return "u-" + uuid.NewString() }

func newSessionID() string { return "vs-" + uuid.NewString() }

func newAccountID() string { return uuid.NewString() }
