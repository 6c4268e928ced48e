package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/cryptox"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	passwordvalidator "github.com/wagslane/go-password-validator"
)

// AuthConfigItem names a login provider enabled on this server.
type AuthConfigItem struct {
	Provider string `json:"provider"`
}

// SessionService is the entry point used by the transport layer.
type SessionService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	tokens        *TokenIssuer
	verifications *VerificationManager
	oauth         *OAuthResolver
	providers     []AuthConfigItem
	minEntropy    float64
	metrics       Recorder
	logger        logging.Logger
}

func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, tokens *TokenIssuer, verifications *VerificationManager,
	oauth *OAuthResolver, cfg *config.Config, rec Recorder, l logging.Logger) *SessionService {

	if rec == nil {
		rec = nopRecorder{}
	}

	var providers []AuthConfigItem
	if cfg.EmailEnabled {
		providers = append(providers, AuthConfigItem{Provider: common.ProviderEmail})
	}
	if cfg.GoogleEnabled {
		providers = append(providers, AuthConfigItem{Provider: common.ProviderGoogle})
	}
	if cfg.GithubEnabled {
		providers = append(providers, AuthConfigItem{Provider: common.ProviderGithub})
	}

	return &SessionService{
		db:            db,
		repomanager:   m,
		tokens:        tokens,
		verifications: verifications,
		oauth:         oauth,
		providers:     providers,
		minEntropy:    cfg.MinPasswordEntropy,
		metrics:       rec,
		logger:        l.With("module", "session"),
	}
}

// AuthConfig lists the enabled login providers.
func (s *SessionService) AuthConfig() []AuthConfigItem {
	out := make([]AuthConfigItem, len(s.providers))
	copy(out, s.providers)
	return out
}

// Login issues a token pair for an already authenticated user.
func (s *SessionService) Login(ctx context.Context, user *models.User) (pair *models.TokenPair, err error) {
	defer func() { s.metrics.AuthEvent("login", err) }()
	return s.tokens.Issue(ctx, user)
}

// Logout revokes every refresh token of uid. Clearing client side
// credentials is up to the caller.
func (s *SessionService) Logout(ctx context.Context, uid string) (err error) {
	defer func() { s.metrics.AuthEvent("logout", err) }()
	if uid == "" {
		return common.ErrUnauthorized
	}
	return s.tokens.RevokeAll(ctx, uid)
}

// Refresh rotates a refresh token.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (pair *models.TokenPair, err error) {
	defer func() { s.metrics.AuthEvent("refresh", err) }()
	return s.tokens.Redeem(ctx, refreshToken)
}

// ParseAccessToken validates an access token issued by this service.
func (s *SessionService) ParseAccessToken(token string) (*auth.Claims, error) {
	return s.tokens.ParseAccessToken(token)
}

// EmailSignup starts a signup verification for an unregistered email.
func (s *SessionService) EmailSignup(ctx context.Context, email, password string) (session *models.VerificationSession, err error) {
	defer func() { s.metrics.AuthEvent("email_signup", err) }()

	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrParams)
	}

	_, err = s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err == nil {
		return nil, common.ErrEmailAlreadyRegistered
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if s.minEntropy > 0 {
		if err := passwordvalidator.Validate(password, s.minEntropy); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrParams, err)
		}
	}

	return s.verifications.Create(ctx, email, common.PurposeSignup, password)
}

// EmailLogin checks email and password and issues a token pair.
func (s *SessionService) EmailLogin(ctx context.Context, email, password string) (pair *models.TokenPair, err error) {
	defer func() { s.metrics.AuthEvent("email_login", err) }()

	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrParams)
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrAccountNotFound
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if user.PasswordHash == nil {
		return nil, common.ErrPasswordIncorrect
	}
	ok, err := cryptox.Verify(*user.PasswordHash, password)
	if err != nil {
		s.logger.Error(ctx, "password verification failed", "uid", user.ID, "error", err)
		return nil, common.ErrPasswordIncorrect
	}
	if !ok {
		return nil, common.ErrPasswordIncorrect
	}

	return s.tokens.Issue(ctx, user)
}

// CreateVerification starts a verification session for purpose.
func (s *SessionService) CreateVerification(ctx context.Context, email, purpose, password string) (session *models.VerificationSession, err error) {
	defer func() { s.metrics.AuthEvent("create_verification", err) }()
	return s.verifications.Create(ctx, email, purpose, password)
}

// ResendVerification queues the code email of sessionID again.
func (s *SessionService) ResendVerification(ctx context.Context, sessionID string) (err error) {
	defer func() { s.metrics.AuthEvent("resend_verification", err) }()
	return s.verifications.Resend(ctx, sessionID)
}

// CheckVerification completes a verification session.
func (s *SessionService) CheckVerification(ctx context.Context, sessionID, code string) (res *CheckResult, err error) {
	defer func() { s.metrics.AuthEvent("check_verification", err) }()
	return s.verifications.Check(ctx, sessionID, code)
}

// OAuthLogin resolves the provider profile and issues a token pair.
func (s *SessionService) OAuthLogin(ctx context.Context, p OAuthProfile) (user *models.User, pair *models.TokenPair, err error) {
	defer func() { s.metrics.AuthEvent("oauth_login", err) }()

	user, err = s.oauth.Resolve(ctx, p)
	if err != nil {
		return nil, nil, err
	}
	pair, err = s.tokens.Issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}
