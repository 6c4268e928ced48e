// Package models holds the persistent records of the authentication core.
package models

import "time"

// User is a local account holder. PasswordHash is nil for users that only
// ever signed in through an OAuth provider.
type User struct {
	ID            string
	Email         string
	Name          string
	Nickname      string
	PasswordHash  *string
	Avatar        *string
	EmailVerified *time.Time
	CreatedAt     time.Time
}

// Account links a User to an identity provider. The pair
// (Provider, ProviderAccountID) is unique.
type Account struct {
	ID                string
	Type              string
	UserID            string
	Provider          string
	ProviderAccountID string
	AccessToken       *string
	RefreshToken      *string
	CreatedAt         time.Time
}
