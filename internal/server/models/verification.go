package models

import "time"

// VerificationSession is an in-flight signup or password reset. ConsumedAt
// is set once the code has been accepted.
type VerificationSession struct {
	SessionID      string
	Email          string
	Code           string
	Purpose        string
	HashedPassword *string
	ExpiresAt      time.Time
	ConsumedAt     *time.Time
	CreatedAt      time.Time
}
