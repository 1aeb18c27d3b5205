// Package transactions provides the PostgreSQL-backed, append-only ledger
// entry repository.
package transactions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bankcore/internal/common"
	"github.com/dmitrijs2005/bankcore/internal/dbx"
	"github.com/dmitrijs2005/bankcore/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, record *models.Transaction) (*models.Transaction, error) {
	query := `
		INSERT INTO transactions (srcid, desid, amount, type, idempotency_key, created)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING transactionid
	`
	record.Created = time.Now().UTC()
	err := r.db.QueryRowContext(ctx, query,
		record.SrcID, record.DesID, record.Amount, string(record.Type),
		record.IdempotencyKey, record.Created).Scan(&record.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrDuplicateRequest
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return record, nil
}

func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID int64) ([]*models.Transaction, error) {
	query := `
		SELECT transactionid, srcid, desid, amount, type, idempotency_key, created
		FROM transactions
		WHERE srcid = $1 OR desid = $1
		ORDER BY transactionid DESC
	`
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Transaction
	for rows.Next() {
		record := &models.Transaction{}
		if err := rows.Scan(&record.ID, &record.SrcID, &record.DesID,
			&record.Amount, &record.Type, &record.IdempotencyKey, &record.Created); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) FindByIdempotencyKey(ctx context.Context, key uuid.UUID) (*models.Transaction, error) {
	query := `
		SELECT transactionid, srcid, desid, amount, type, idempotency_key, created
		FROM transactions
		WHERE idempotency_key = $1
	`
	record := &models.Transaction{}
	err := r.db.QueryRowContext(ctx, query, key).Scan(&record.ID, &record.SrcID, &record.DesID,
		&record.Amount, &record.Type, &record.IdempotencyKey, &record.Created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return record, nil
}

// isUniqueViolation recognizes the Postgres unique_violation error raised
// when two requests race past the idempotency pre-check with the same key.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
