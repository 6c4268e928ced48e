package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/cryptox"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/mailer"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
)

const verificationCodeDigits = 6

// CheckResult is returned by a successful verification check.
type CheckResult struct {
	User    *models.User
	Session *models.VerificationSession
	Tokens  *models.TokenPair
}

// VerificationManager runs signup and password reset flows confirmed by a
// code sent to the user's email. A session's code is accepted at most once.
type VerificationManager struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *TokenIssuer
	mail        MailQueue
	ttl         time.Duration
	hashParams  cryptox.Params
	logger      logging.Logger
	now         func() time.Time
}

func NewVerificationManager(db *sql.DB, m repomanager.RepositoryManager, tokens *TokenIssuer, mq MailQueue, cfg *config.Config, l logging.Logger) *VerificationManager {
	return &VerificationManager{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		mail:        mq,
		ttl:         cfg.VerificationSessionTTL,
		hashParams:  cfg.HashParams(),
		logger:      l.With("module", "verification"),
		now:         time.Now,
	}
}

// Create persists a new session and queues the code email. The returned
// session carries the code; callers must not hand it to the client.
func (m *VerificationManager) Create(ctx context.Context, email, purpose, password string) (*models.VerificationSession, error) {
	if purpose != common.PurposeSignup && purpose != common.PurposeResetPassword {
		return nil, fmt.Errorf("%w: unknown verification purpose %q", common.ErrParams, purpose)
	}

	email = strings.TrimSpace(email)
	if !validEmail(email) {
		return nil, fmt.Errorf("%w: invalid email", common.ErrParams)
	}

	if purpose == common.PurposeResetPassword && password == "" {
		return nil, fmt.Errorf("%w: password is required to reset password", common.ErrParams)
	}

	code, err := common.RandomDigits(verificationCodeDigits)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	session := &models.VerificationSession{
		SessionID: newSessionID(),
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: m.now().Add(m.ttl),
	}
	if password != "" {
		hashed := cryptox.Hash(password, m.hashParams)
		session.HashedPassword = &hashed
	}

	if err := m.repomanager.Verifications(m.db).Create(ctx, session); err != nil {
		return nil, fmt.Errorf("error creating verification session: %w", err)
	}

	m.logger.Info(ctx, "verification session created", "session_id", session.SessionID, "purpose", purpose)
	m.dispatch(ctx, session)

	return session, nil
}

// Resend queues the email of a live session again. The code and expiry are
// unchanged.
func (m *VerificationManager) Resend(ctx context.Context, sessionID string) error {
	session, err := m.findValid(ctx, sessionID)
	if err != nil {
		return err
	}
	m.dispatch(ctx, session)
	return nil
}

// Check validates code against the session and, on match, consumes the
// session and applies its purpose in one transaction. A wrong code leaves
// the session usable.
func (m *VerificationManager) Check(ctx context.Context, sessionID, code string) (*CheckResult, error) {
	session, err := m.findValid(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(session.Code), []byte(code)) != 1 {
		return nil, common.ErrIncorrectVerificationCode
	}

	user, err := dbx.WithTxResult(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.User, error) {
		consumed, err := m.repomanager.Verifications(tx).Consume(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("error consuming verification session: %w", err)
		}
		if !consumed {
			return nil, common.ErrInvalidVerificationSession
		}

		switch session.Purpose {
		case common.PurposeSignup:
			return m.signup(ctx, tx, session)
		case common.PurposeResetPassword:
			return m.resetPassword(ctx, tx, session)
		default:
			return nil, fmt.Errorf("%w: invalid verification purpose %q", common.ErrParams, session.Purpose)
		}
	})
	if err != nil {
		return nil, err
	}

	tokens, err := m.tokens.Issue(ctx, user)
	if err != nil {
		return nil, err
	}

	now := m.now()
	session.ConsumedAt = &now

	return &CheckResult{User: user, Session: session, Tokens: tokens}, nil
}

func (m *VerificationManager) signup(ctx context.Context, tx dbx.DBTX, session *models.VerificationSession) (*models.User, error) {
	usersRepo := m.repomanager.Users(tx)

	_, err := usersRepo.GetByEmail(ctx, session.Email)
	if err == nil {
		return nil, common.ErrEmailAlreadyRegistered
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	name, err := uniqueUsername(ctx, usersRepo, usernameCandidate(session.Email))
	if err != nil {
		return nil, err
	}

	verified := m.now()
	user, err := usersRepo.Create(ctx, &models.User{
		ID:            newUserID(),
		Email:         session.Email,
		Name:          name,
		Nickname:      name,
		PasswordHash:  session.HashedPassword,
		EmailVerified: &verified,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	_, err = m.repomanager.Accounts(tx).Create(ctx, &models.Account{
		ID:                newAccountID(),
		Type:              common.AccountTypeEmail,
		UserID:            user.ID,
		Provider:          common.ProviderEmail,
		ProviderAccountID: session.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	m.logger.Info(ctx, "user signed up", "uid", user.ID)
	return user, nil
}

func (m *VerificationManager) resetPassword(ctx context.Context, tx dbx.DBTX, session *models.VerificationSession) (*models.User, error) {
	if session.HashedPassword == nil {
		return nil, fmt.Errorf("%w: password is required to reset password", common.ErrParams)
	}

	usersRepo := m.repomanager.Users(tx)

	user, err := usersRepo.GetByEmail(ctx, session.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrAccountNotFound
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if err := usersRepo.UpdatePassword(ctx, session.Email, *session.HashedPassword); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrAccountNotFound
		}
		return nil, fmt.Errorf("error updating password: %w", err)
	}
	user.PasswordHash = session.HashedPassword

	m.logger.Info(ctx, "password reset", "uid", user.ID)
	return user, nil
}

func (m *VerificationManager) findValid(ctx context.Context, sessionID string) (*models.VerificationSession, error) {
	if sessionID == "" {
		return nil, common.ErrInvalidVerificationSession
	}
	session, err := m.repomanager.Verifications(m.db).FindValid(ctx, sessionID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidVerificationSession
		}
		return nil, fmt.Errorf("error searching verification session: %w", err)
	}
	return session, nil
}

// dispatch queues the code email. Delivery problems are logged only; the
// user can ask for a resend.
func (m *VerificationManager) dispatch(ctx context.Context, session *models.VerificationSession) {
	if m.mail == nil {
		return
	}

	subject, body, err := mailer.VerificationEmail{
		To:      session.Email,
		Purpose: session.Purpose,
		Code:    session.Code,
		TTL:     m.ttl.String(),
	}.Render()
	if err != nil {
		m.logger.Error(ctx, "render verification email", "session_id", session.SessionID, "error", err)
		return
	}

	if err := m.mail.Enqueue(ctx, mailer.Message{To: session.Email, Subject: subject, BodyHTML: body}); err != nil {
		m.logger.Warn(ctx, "verification email not queued", "session_id", session.SessionID, "error", err)
	}
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
