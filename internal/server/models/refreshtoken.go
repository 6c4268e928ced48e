package models

import "time"

// RefreshToken is a single-use rotation unit. Only the argon2id hash of the
// secret half is stored.
type RefreshToken struct {
	JTI          string
	UserID       string
	HashedSecret string
	Expires      time.Time
	Revoked      bool
	CreatedAt    time.Time
}

// TokenPair bundles a short-lived access token and a long-lived refresh
// token in the "{jti}.{secret}" form.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
