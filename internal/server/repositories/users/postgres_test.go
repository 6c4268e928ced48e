package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var userCols = []string{"id", "email", "name", "nickname", "password_hash", "avatar", "email_verified", "created_at"}

const insertQ = `(?s)^\s*INSERT\s+INTO\s+users\s*\(id,\s*email,\s*name,\s*nickname,\s*password_hash,\s*avatar,\s*email_verified\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7\)\s*RETURNING\s+created_at\s*$`

func strPtr(s string) *string { return &s }

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(insertQ).
		WithArgs("u1", "a@x.com", "a", "a", "hash", nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	u := &models.User{ID: "u1", Email: "a@x.com", Name: "a", Nickname: "a", PasswordHash: strPtr("hash"), EmailVerified: &now}
	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("created_at not scanned: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := repo.Create(context.Background(), &models.User{ID: "u1", Email: "a@x.com"})
	if !errors.Is(err, common.ErrEmailAlreadyRegistered) {
		t.Fatalf("want ErrEmailAlreadyRegistered, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{ID: "u1"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1$`
	created := time.Now().Add(-time.Hour)
	mock.ExpectQuery(q).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u1", "a@x.com", "a", "A", "hash", nil, nil, created))

	u, err := repo.GetByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != "u1" || u.Nickname != "A" || u.PasswordHash == nil || *u.PasswordHash != "hash" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.Avatar != nil || u.EmailVerified != nil {
		t.Fatalf("nullable columns should stay nil: %+v", u)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,.*FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`
	mock.ExpectQuery(q).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetByID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+users\s+WHERE\s+id`).WillReturnError(errors.New("db err"))

	_, err := repo.GetByID(context.Background(), "u1")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestExistsByName(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+users\s+WHERE\s+name\s*=\s*\$1\)$`
	mock.ExpectQuery(q).WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(q).WithArgs("bob").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := repo.ExistsByName(context.Background(), "alice")
	if err != nil || !ok {
		t.Fatalf("alice: got (%v, %v)", ok, err)
	}
	ok, err = repo.ExistsByName(context.Background(), "bob")
	if err != nil || ok {
		t.Fatalf("bob: got (%v, %v)", ok, err)
	}
}

func TestUpdatePassword(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+users\s+SET\s+password_hash\s*=\s*\$2\s+WHERE\s+email\s*=\s*\$1$`
	mock.ExpectExec(q).WithArgs("a@x.com", "new").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("ghost@x.com", "new").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q).WithArgs("a@x.com", "new").WillReturnError(errors.New("db err"))

	if err := repo.UpdatePassword(context.Background(), "a@x.com", "new"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.UpdatePassword(context.Background(), "ghost@x.com", "new"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
	if err := repo.UpdatePassword(context.Background(), "a@x.com", "new"); err == nil {
		t.Fatal("expected db error")
	}
}
