package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/mailer"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/verifications"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// memStore is an in-memory stand-in for the four repositories. Conditional
// updates behave like their SQL counterparts.
type memStore struct {
	mu sync.Mutex

	users    map[string]*models.User
	accounts []*models.Account
	tokens   map[string]*models.RefreshToken
	sessions map[string]*models.VerificationSession

	// takenNames answers ExistsByName with true for this many calls
	// before consulting users.
	takenNames int
	nameProbes []string

	findTokenCalls int

	usersErr    error
	accountsErr error
	tokensErr   error
	sessionsErr error
	// revokeLoses makes Revoke report a lost race.
	revokeLoses bool
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]*models.User{},
		tokens:   map[string]*models.RefreshToken{},
		sessions: map[string]*models.VerificationSession{},
	}
}

func (s *memStore) addUser(u *models.User) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.users[u.ID] = &cp
	return u
}

func (s *memStore) accountCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.accounts)
}

func (s *memStore) userCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// --- users ---

type memUsers struct{ s *memStore }

func (r memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.usersErr != nil {
		return nil, r.s.usersErr
	}
	for _, x := range r.s.users {
		if x.Email == u.Email {
			return nil, common.ErrEmailAlreadyRegistered
		}
		if x.Name == u.Name {
			return nil, errBoom{}
		}
	}
	u.CreatedAt = time.Now()
	cp := *u
	r.s.users[u.ID] = &cp
	return u, nil
}

func (r memUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.usersErr != nil {
		return nil, r.s.usersErr
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.usersErr != nil {
		return nil, r.s.usersErr
	}
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memUsers) ExistsByName(ctx context.Context, name string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.usersErr != nil {
		return false, r.s.usersErr
	}
	r.s.nameProbes = append(r.s.nameProbes, name)
	if r.s.takenNames > 0 {
		r.s.takenNames--
		return true, nil
	}
	for _, u := range r.s.users {
		if u.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r memUsers) UpdatePassword(ctx context.Context, email, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.usersErr != nil {
		return r.s.usersErr
	}
	for _, u := range r.s.users {
		if u.Email == email {
			h := hash
			u.PasswordHash = &h
			return nil
		}
	}
	return common.ErrorNotFound
}

// --- accounts ---

type memAccounts struct{ s *memStore }

func (r memAccounts) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.accountsErr != nil {
		return nil, r.s.accountsErr
	}
	for _, x := range r.s.accounts {
		if x.Provider == a.Provider && x.ProviderAccountID == a.ProviderAccountID {
			return nil, accounts.ErrAlreadyLinked
		}
	}
	cp := *a
	r.s.accounts = append(r.s.accounts, &cp)
	return a, nil
}

func (r memAccounts) GetByProviderKey(ctx context.Context, provider, id string) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.accountsErr != nil {
		return nil, r.s.accountsErr
	}
	for _, a := range r.s.accounts {
		if a.Provider == provider && a.ProviderAccountID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

// --- refresh tokens ---

type memTokens struct{ s *memStore }

func (r memTokens) Create(ctx context.Context, t *models.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.tokensErr != nil {
		return r.s.tokensErr
	}
	cp := *t
	r.s.tokens[t.JTI] = &cp
	return nil
}

func (r memTokens) Find(ctx context.Context, jti string) (*models.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.findTokenCalls++
	if r.s.tokensErr != nil {
		return nil, r.s.tokensErr
	}
	t, ok := r.s.tokens[jti]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *t
	return &cp, nil
}

func (r memTokens) Revoke(ctx context.Context, jti string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.revokeLoses {
		return false, nil
	}
	t, ok := r.s.tokens[jti]
	if !ok || t.Revoked || !t.Expires.After(time.Now()) {
		return false, nil
	}
	t.Revoked = true
	return true, nil
}

func (r memTokens) RevokeAllForUser(ctx context.Context, uid string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.tokensErr != nil {
		return r.s.tokensErr
	}
	for _, t := range r.s.tokens {
		if t.UserID == uid {
			t.Revoked = true
		}
	}
	return nil
}

// --- verification sessions ---

type memSessions struct{ s *memStore }

func (r memSessions) Create(ctx context.Context, v *models.VerificationSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.sessionsErr != nil {
		return r.s.sessionsErr
	}
	cp := *v
	r.s.sessions[v.SessionID] = &cp
	return nil
}

func (r memSessions) FindValid(ctx context.Context, id string) (*models.VerificationSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.sessionsErr != nil {
		return nil, r.s.sessionsErr
	}
	v, ok := r.s.sessions[id]
	if !ok || v.ConsumedAt != nil || !v.ExpiresAt.After(time.Now()) {
		return nil, common.ErrorNotFound
	}
	cp := *v
	return &cp, nil
}

func (r memSessions) Consume(ctx context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.sessions[id]
	if !ok || v.ConsumedAt != nil || !v.ExpiresAt.After(time.Now()) {
		return false, nil
	}
	now := time.Now()
	v.ConsumedAt = &now
	return true, nil
}

// --- repository manager ---

type fakeRepoManager struct{ s *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return memUsers{m.s} }
func (m *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository           { return memAccounts{m.s} }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return memTokens{m.s} }
func (m *fakeRepoManager) Verifications(dbx.DBTX) verifications.Repository { return memSessions{m.s} }

// --- collaborators ---

type fakeMailQueue struct {
	mu   sync.Mutex
	msgs []mailer.Message
	err  error
}

func (q *fakeMailQueue) Enqueue(ctx context.Context, m mailer.Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.msgs = append(q.msgs, m)
	return nil
}

func (q *fakeMailQueue) sent() []mailer.Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]mailer.Message(nil), q.msgs...)
}

type fakeAvatars struct {
	calls int
	url   string
	err   error
}

func (a *fakeAvatars) CopyFromURL(ctx context.Context, uid, url string) (string, error) {
	a.calls++
	if a.err != nil {
		return "", a.err
	}
	return a.url, nil
}

type fakeRecorder struct {
	mu     sync.Mutex
	events map[string][]error
}

func (r *fakeRecorder) AuthEvent(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.events == nil {
		r.events = map[string][]error{}
	}
	r.events[op] = append(r.events[op], err)
}

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
		VerificationSessionTTL:       10 * time.Minute,
		EmailEnabled:                 true,
		Argon2Time:                   1,
		Argon2MemoryKiB:              8,
		Argon2Threads:                1,
	}
}

type harness struct {
	db       *sql.DB
	mock     sqlmock.Sqlmock
	store    *memStore
	mail     *fakeMailQueue
	avatars  *fakeAvatars
	recorder *fakeRecorder
	tokens   *TokenIssuer
	verify   *VerificationManager
	oauth    *OAuthResolver
	session  *SessionService
}

func newHarness(t *testing.T, mutate ...func(*config.Config)) *harness {
	t.Helper()
	cfg := testConfig()
	for _, fn := range mutate {
		fn(cfg)
	}

	db, mock := newSQLMockDB(t)
	store := newMemStore()
	rm := &fakeRepoManager{s: store}
	l := logging.Nop{}

	h := &harness{
		db:       db,
		mock:     mock,
		store:    store,
		mail:     &fakeMailQueue{},
		avatars:  &fakeAvatars{url: "http://cdn/avatars/a.png"},
		recorder: &fakeRecorder{},
	}
	h.tokens = NewTokenIssuer(db, rm, cfg, l)
	h.verify = NewVerificationManager(db, rm, h.tokens, h.mail, cfg, l)
	h.oauth = NewOAuthResolver(db, rm, h.avatars, l)
	h.session = NewSessionService(db, rm, h.tokens, h.verify, h.oauth, cfg, h.recorder, l)
	return h
}

// expectTx registers n committed transactions.
func (h *harness) expectTx(n int) {
	for i := 0; i < n; i++ {
		h.mock.ExpectBegin()
		h.mock.ExpectCommit()
	}
}

func (h *harness) expectRolledBackTx() {
	h.mock.ExpectBegin()
	h.mock.ExpectRollback()
}

func (h *harness) assertSQL(t *testing.T) {
	t.Helper()
	if err := h.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}
