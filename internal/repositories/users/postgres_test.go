package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/bankcore/internal/common"
	"github.com/dmitrijs2005/bankcore/internal/models"
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

const createQuery = `(?s)^\s*INSERT\s+INTO\s+users\s*\(name,\s*email,\s*isverified,\s*created,\s*updated\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+userid\s*$`

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"userid"}).AddRow(int64(42))
	mock.ExpectQuery(createQuery).
		WithArgs("Alice", "alice@example.com", false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(rows)

	got, err := repo.Create(context.Background(), &models.User{Name: "Alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 42 || got.Created.IsZero() {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(createQuery).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), &models.User{Name: "Alice", Email: "alice@example.com"})
	if !errors.Is(err, common.ErrConflict) {
		t.Fatalf("want common.ErrConflict, got %v", err)
	}
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+userid,\s*name,\s*email,\s*isverified,\s*islocked,\s*lockoutend,\s*created,\s*updated\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`

	until := time.Now().UTC().Add(time.Minute)
	rows := sqlmock.NewRows([]string{"userid", "name", "email", "isverified", "islocked", "lockoutend", "created", "updated"}).
		AddRow(int64(42), "Alice", "alice@example.com", true, true, until, time.Now(), time.Now())
	mock.ExpectQuery(q).
		WithArgs("alice@example.com").
		WillReturnRows(rows)

	got, err := repo.GetByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if got.ID != 42 || !got.Locked || got.LockoutUntil == nil {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`

	mock.ExpectQuery(q).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestSetLockState_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*UPDATE\s+users\s+SET\s+islocked\s*=\s*\$1,\s*lockoutend\s*=\s*\$2,\s*updated\s*=\s*\$3\s+WHERE\s+userid\s*=\s*\$4\s*$`

	until := time.Now().UTC().Add(time.Minute)
	mock.ExpectExec(q).
		WithArgs(true, until, sqlmock.AnyArg(), int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetLockState(context.Background(), 42, true, &until); err != nil {
		t.Fatalf("SetLockState error: %v", err)
	}
}

func TestSetLockState_MissingRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*UPDATE\s+users\s+SET\s+islocked\s*=.*WHERE\s+userid\s*=\s*\$4\s*$`

	mock.ExpectExec(q).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetLockState(context.Background(), 99, false, nil)
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestUpdateProfile_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*UPDATE\s+users\s+SET\s+name\s*=\s*\$1,\s*email\s*=\s*\$2,\s*updated\s*=\s*\$3\s+WHERE\s+userid\s*=\s*\$4\s*$`

	mock.ExpectExec(q).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.UpdateProfile(context.Background(), 42, "Alice", "taken@example.com")
	if !errors.Is(err, common.ErrConflict) {
		t.Fatalf("want common.ErrConflict, got %v", err)
	}
}
