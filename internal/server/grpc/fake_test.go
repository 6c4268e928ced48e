package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
)

var testSecret = []byte("secret")

// fakeSessions returns err for every call when set, canned values otherwise.
type fakeSessions struct {
	err        error
	loggedOut  string
	lastEmail  string
	lastToken  string
	lastOAuth  services.OAuthProfile
	sessionExp time.Time
}

func (f *fakeSessions) AuthConfig() []services.AuthConfigItem {
	return []services.AuthConfigItem{{Provider: "email"}, {Provider: "google"}}
}

func (f *fakeSessions) session(purpose string) (*models.VerificationSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.VerificationSession{SessionID: "vs-1", Code: "123456", Purpose: purpose, ExpiresAt: f.sessionExp}, nil
}

func (f *fakeSessions) pair() (*models.TokenPair, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.TokenPair{AccessToken: "at", RefreshToken: "jti.secret"}, nil
}

func (f *fakeSessions) EmailSignup(ctx context.Context, email, password string) (*models.VerificationSession, error) {
	f.lastEmail = email
	return f.session("signup")
}

func (f *fakeSessions) EmailLogin(ctx context.Context, email, password string) (*models.TokenPair, error) {
	f.lastEmail = email
	return f.pair()
}

func (f *fakeSessions) CreateVerification(ctx context.Context, email, purpose, password string) (*models.VerificationSession, error) {
	f.lastEmail = email
	return f.session(purpose)
}

func (f *fakeSessions) ResendVerification(ctx context.Context, sessionID string) error {
	return f.err
}

func (f *fakeSessions) CheckVerification(ctx context.Context, sessionID, code string) (*services.CheckResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	avatar := "http://cdn/a.png"
	return &services.CheckResult{
		User:    &models.User{ID: "u-1", Email: "a@b.c", Name: "a", Avatar: &avatar},
		Session: &models.VerificationSession{SessionID: sessionID, Purpose: "signup"},
		Tokens:  &models.TokenPair{AccessToken: "at", RefreshToken: "jti.secret"},
	}, nil
}

func (f *fakeSessions) OAuthLogin(ctx context.Context, p services.OAuthProfile) (*models.User, *models.TokenPair, error) {
	f.lastOAuth = p
	if f.err != nil {
		return nil, nil, f.err
	}
	return &models.User{ID: "u-2", Email: p.Emails[0]}, &models.TokenPair{AccessToken: "at", RefreshToken: "r.s"}, nil
}

func (f *fakeSessions) Refresh(ctx context.Context, token string) (*models.TokenPair, error) {
	f.lastToken = token
	return f.pair()
}

func (f *fakeSessions) Logout(ctx context.Context, uid string) error {
	f.loggedOut = uid
	return f.err
}

func (f *fakeSessions) ParseAccessToken(token string) (*auth.Claims, error) {
	return auth.ParseToken(token, testSecret)
}
