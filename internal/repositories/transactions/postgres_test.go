package transactions

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/bankcore/internal/common"
	"github.com/dmitrijs2005/bankcore/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const insertQuery = `(?s)^\s*INSERT\s+INTO\s+transactions\s*\(srcid,\s*desid,\s*amount,\s*type,\s*idempotency_key,\s*created\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)\s*RETURNING\s+transactionid\s*$`

func TestInsert_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"transactionid"}).AddRow(int64(11))
	mock.ExpectQuery(insertQuery).
		WithArgs(int64(1), int64(2), sqlmock.AnyArg(), "transfer", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(rows)

	record := &models.Transaction{
		SrcID:  1,
		DesID:  2,
		Amount: decimal.RequireFromString("40.00"),
		Type:   models.TransactionTypeTransfer,
	}
	got, err := repo.Insert(context.Background(), record)
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if got.ID != 11 {
		t.Fatalf("unexpected id: %d", got.ID)
	}
	if got.Created.IsZero() {
		t.Fatalf("expected Created to be set")
	}
}

func TestInsert_DuplicateKey(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	record := &models.Transaction{
		SrcID:          0,
		DesID:          2,
		Amount:         decimal.RequireFromString("10.00"),
		Type:           models.TransactionTypeDeposit,
		IdempotencyKey: uuid.NullUUID{UUID: uuid.New(), Valid: true},
	}
	_, err := repo.Insert(context.Background(), record)
	if !errors.Is(err, common.ErrDuplicateRequest) {
		t.Fatalf("want common.ErrDuplicateRequest, got %v", err)
	}
}

func TestFindByIdempotencyKey_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+.*FROM\s+transactions\s+WHERE\s+idempotency_key\s*=\s*\$1\s*$`

	key := uuid.New()
	mock.ExpectQuery(q).
		WithArgs(key).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByIdempotencyKey(context.Background(), key)
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestListByAccount(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	// one parameter referenced twice: srcid or desid
	q := `(?s)^\s*SELECT\s+.*FROM\s+transactions\s+WHERE\s+srcid\s*=\s*\$1\s+OR\s+desid\s*=\s*\$1\s+ORDER\s+BY\s+transactionid\s+DESC\s*$`

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"transactionid", "srcid", "desid", "amount", "type", "idempotency_key", "created"}).
		AddRow(int64(12), int64(7), int64(0), "4.00", "withdraw", nil, now).
		AddRow(int64(11), int64(0), int64(7), "10.00", "deposit", nil, now.Add(-time.Hour))
	mock.ExpectQuery(q).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	got, err := repo.ListByAccount(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListByAccount error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("unexpected count: %d", len(got))
	}
	if got[0].ID != 12 || got[0].Type != models.TransactionTypeWithdraw {
		t.Fatalf("unexpected first record: %+v", got[0])
	}
	if !got[1].Amount.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("unexpected amount: %s", got[1].Amount)
	}
}
