package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/cryptox"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
)

const (
	refreshJTIBytes    = 32
	refreshSecretBytes = 64
)

// TokenIssuer mints access tokens and single-use refresh tokens. A refresh
// token is "{jti}.{secret}"; only an argon2id hash of the secret is stored.
type TokenIssuer struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	hashParams                   cryptox.Params
	logger                       logging.Logger
	now                          func() time.Time
}

func NewTokenIssuer(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, l logging.Logger) *TokenIssuer {
	return &TokenIssuer{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		hashParams:                   cfg.HashParams(),
		logger:                       l.With("module", "token_issuer"),
		now:                          time.Now,
	}
}

// Issue mints a new TokenPair for user.
func (s *TokenIssuer) Issue(ctx context.Context, user *models.User) (*models.TokenPair, error) {
	return s.issue(ctx, s.db, user)
}

// Redeem exchanges a refresh token for a new pair. The presented token is
// revoked in the same transaction that stores its successor, so of several
// concurrent redemptions at most one succeeds.
func (s *TokenIssuer) Redeem(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	jti, secret, ok := strings.Cut(refreshToken, ".")
	if !ok || jti == "" || secret == "" {
		return nil, common.ErrMalformedToken
	}

	stored, err := s.repomanager.RefreshTokens(s.db).Find(ctx, jti)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}

	if stored.Revoked || !stored.Expires.After(s.now()) {
		return nil, common.ErrUnauthorized
	}

	match, err := cryptox.Verify(stored.HashedSecret, secret)
	if err != nil {
		s.logger.Error(ctx, "stored refresh token hash is unreadable", "jti", jti, "error", err)
		return nil, common.ErrUnauthorized
	}
	if !match {
		return nil, common.ErrUnauthorized
	}

	return dbx.WithTxResult(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.TokenPair, error) {
		revoked, err := s.repomanager.RefreshTokens(tx).Revoke(ctx, jti)
		if err != nil {
			return nil, fmt.Errorf("error revoking refresh token: %w", err)
		}
		if !revoked {
			return nil, common.ErrUnauthorized
		}

		user, err := s.repomanager.Users(tx).GetByID(ctx, stored.UserID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, common.ErrAccountNotFound
			}
			return nil, fmt.Errorf("error loading user: %w", err)
		}

		return s.issue(ctx, tx, user)
	})
}

// RevokeAll revokes every refresh token of uid.
func (s *TokenIssuer) RevokeAll(ctx context.Context, uid string) error {
	if err := s.repomanager.RefreshTokens(s.db).RevokeAllForUser(ctx, uid); err != nil {
		return fmt.Errorf("error revoking refresh tokens: %w", err)
	}
	return nil
}

// ParseAccessToken validates an access token and returns its claims.
func (s *TokenIssuer) ParseAccessToken(token string) (*auth.Claims, error) {
	return auth.ParseToken(token, s.jwtSecret)
}

func (s *TokenIssuer) issue(ctx context.Context, db dbx.DBTX, user *models.User) (*models.TokenPair, error) {
	access, err := auth.GenerateToken(user.ID, user.Email, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("%w: sign access token: %v", common.ErrorInternal, err)
	}

	jti, err := common.MakeRandHexString(refreshJTIBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	secret, err := common.MakeRandHexString(refreshSecretBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	token := &models.RefreshToken{
		JTI:          jti,
		UserID:       user.ID,
		HashedSecret: cryptox.Hash(secret, s.hashParams),
		Expires:      s.now().Add(s.refreshTokenValidityDuration),
	}
	if err := s.repomanager.RefreshTokens(db).Create(ctx, token); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}

	return &models.TokenPair{AccessToken: access, RefreshToken: jti + "." + secret}, nil
}
