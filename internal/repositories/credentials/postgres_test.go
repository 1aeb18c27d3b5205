package credentials

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/bankcore/internal/common"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestInsert_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+passwords\s*\(userid,\s*hash,\s*iscurrent,\s*created\)\s*VALUES\s*\(\$1,\s*\$2,\s*TRUE,\s*\$3\)\s*RETURNING\s+passwordid\s*$`

	rows := sqlmock.NewRows([]string{"passwordid"}).AddRow(int64(3))
	mock.ExpectQuery(q).
		WithArgs(int64(42), "hash-value", sqlmock.AnyArg()).
		WillReturnRows(rows)

	got, err := repo.Insert(context.Background(), 42, "hash-value")
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if got.ID != 3 || !got.IsCurrent {
		t.Fatalf("unexpected credential: %+v", got)
	}
}

func TestSupersedeCurrent(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*UPDATE\s+passwords\s+SET\s+iscurrent\s*=\s*FALSE\s+WHERE\s+userid\s*=\s*\$1\s+AND\s+iscurrent\s*$`

	mock.ExpectExec(q).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SupersedeCurrent(context.Background(), 42); err != nil {
		t.Fatalf("SupersedeCurrent error: %v", err)
	}
}

func TestGetCurrent_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+passwordid,\s*userid,\s*hash,\s*iscurrent,\s*created\s+FROM\s+passwords\s+WHERE\s+userid\s*=\s*\$1\s+AND\s+iscurrent\s*$`

	rows := sqlmock.NewRows([]string{"passwordid", "userid", "hash", "iscurrent", "created"}).
		AddRow(int64(3), int64(42), "hash-value", true, time.Now())
	mock.ExpectQuery(q).
		WithArgs(int64(42)).
		WillReturnRows(rows)

	got, err := repo.GetCurrent(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetCurrent error: %v", err)
	}
	if got.Hash != "hash-value" {
		t.Fatalf("unexpected credential: %+v", got)
	}
}

func TestGetCurrent_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+.*FROM\s+passwords\s+WHERE\s+userid\s*=\s*\$1\s+AND\s+iscurrent\s*$`

	mock.ExpectQuery(q).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetCurrent(context.Background(), 99)
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}
