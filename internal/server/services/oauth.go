package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
)

// OAuthProfile is what an identity provider tells us about the caller.
type OAuthProfile struct {
	Provider          string
	ProviderAccountID string
	Emails            []string
	DisplayName       string
	PhotoURL          string
	AccessToken       string
	RefreshToken      string
}

// OAuthResolver maps a provider profile to a local user, creating or
// linking records as needed.
type OAuthResolver struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	avatars     AvatarCopier
	logger      logging.Logger
	now         func() time.Time
}

func NewOAuthResolver(db *sql.DB, m repomanager.RepositoryManager, avatars AvatarCopier, l logging.Logger) *OAuthResolver {
	return &OAuthResolver{
		db:          db,
		repomanager: m,
		avatars:     avatars,
		logger:      l.With("module", "oauth"),
		now:         time.Now,
	}
}

// oauthProviders are the identity providers Resolve accepts. The password
// provider is never resolvable here.
var oauthProviders = map[string]bool{
	common.ProviderGoogle: true,
	common.ProviderGithub: true,
}

// Resolve returns the user for p:
//  1. an account already linked to (provider, id) yields its user;
//  2. a profile without email is rejected with common.ErrOAuth;
//  3. a user holding the email gets a new account linked to it;
//  4. otherwise a user and its account are created together.
func (r *OAuthResolver) Resolve(ctx context.Context, p OAuthProfile) (*models.User, error) {
	if p.Provider == "" || p.ProviderAccountID == "" {
		return nil, fmt.Errorf("%w: provider identity missing", common.ErrOAuth)
	}
	if !oauthProviders[p.Provider] {
		r.logger.Warn(ctx, "unsupported oauth provider", "provider", p.Provider)
		return nil, fmt.Errorf("%w: unsupported provider %q", common.ErrOAuth, p.Provider)
	}

	usersRepo := r.repomanager.Users(r.db)

	account, err := r.repomanager.Accounts(r.db).GetByProviderKey(ctx, p.Provider, p.ProviderAccountID)
	switch {
	case err == nil:
		user, err := usersRepo.GetByID(ctx, account.UserID)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("error loading user: %w", err)
		}
		r.logger.Warn(ctx, "linked user not found", "provider", p.Provider, "uid", account.UserID)
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("error searching account: %w", err)
	}

	email := firstEmail(p.Emails)
	if email == "" {
		r.logger.Warn(ctx, "oauth profile has no email", "provider", p.Provider)
		return nil, fmt.Errorf("%w: profile has no email", common.ErrOAuth)
	}

	existing, err := usersRepo.GetByEmail(ctx, email)
	if err == nil {
		return r.link(ctx, existing, p)
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	return r.register(ctx, email, p)
}

func (r *OAuthResolver) link(ctx context.Context, user *models.User, p OAuthProfile) (*models.User, error) {
	_, err := r.repomanager.Accounts(r.db).Create(ctx, oauthAccount(user.ID, p))
	if err != nil && !errors.Is(err, accounts.ErrAlreadyLinked) {
		return nil, fmt.Errorf("error creating account: %w", err)
	}
	r.logger.Info(ctx, "provider linked to existing user", "provider", p.Provider, "uid", user.ID)
	return user, nil
}

func (r *OAuthResolver) register(ctx context.Context, email string, p OAuthProfile) (*models.User, error) {
	uid := newUserID()

	name, err := uniqueUsername(ctx, r.repomanager.Users(r.db), usernameCandidate(email))
	if err != nil {
		return nil, err
	}

	nickname := strings.TrimSpace(p.DisplayName)
	if nickname == "" {
		nickname = name
	}

	verified := r.now()
	user := &models.User{
		ID:            uid,
		Email:         email,
		Name:          name,
		Nickname:      nickname,
		Avatar:        r.copyAvatar(ctx, uid, p.PhotoURL),
		EmailVerified: &verified,
	}

	err = dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := r.repomanager.Users(tx).Create(ctx, user); err != nil {
			return fmt.Errorf("error creating user: %w", err)
		}
		if _, err := r.repomanager.Accounts(tx).Create(ctx, oauthAccount(uid, p)); err != nil {
			return fmt.Errorf("error creating account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info(ctx, "user created from oauth profile", "provider", p.Provider, "uid", uid)
	return user, nil
}

// copyAvatar is best effort: any failure leaves the user without avatar.
func (r *OAuthResolver) copyAvatar(ctx context.Context, uid, photoURL string) *string {
	if photoURL == "" || r.avatars == nil {
		return nil
	}
	url, err := r.avatars.CopyFromURL(ctx, uid, photoURL)
	if err != nil {
		r.logger.Warn(ctx, "failed to copy avatar", "uid", uid, "error", err)
		return nil
	}
	return &url
}

func oauthAccount(uid string, p OAuthProfile) *models.Account {
	return &models.Account{
		ID:                newAccountID(),
		Type:              common.AccountTypeOAuth,
		UserID:            uid,
		Provider:          p.Provider,
		ProviderAccountID: p.ProviderAccountID,
		AccessToken:       optional(p.AccessToken),
		RefreshToken:      optional(p.RefreshToken),
	}
}

func firstEmail(emails []string) string {
	for _, e := range emails {
		if e = strings.TrimSpace(e); e != "" {
			return e
		}
	}
	return ""
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
