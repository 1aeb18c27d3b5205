// Package accounts provides the PostgreSQL-backed account repository of the
// ledger store, including the row-locking read used by the balance mutator.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/bankcore/internal/common"
	"github.com/dmitrijs2005/bankcore/internal/dbx"
	"github.com/dmitrijs2005/bankcore/internal/models"
	"github.com/shopspring/decimal"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, userID int64, name string, accountType models.AccountType, balance decimal.Decimal) (*models.Account, error) {
	query := `
		INSERT INTO accounts (userid, name, type, balance)
		VALUES ($1, $2, $3, $4)
		RETURNING accountid
	`
	account := &models.Account{UserID: userID, Name: name, Type: accountType, Balance: balance}
	if err := r.db.QueryRowContext(ctx, query, userID, name, string(accountType), balance).Scan(&account.ID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return account, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, accountID int64) (*models.Account, error) {
	query := `
		SELECT accountid, userid, name, type, balance
		FROM accounts
		WHERE accountid = $1
	`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, accountID))
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, accountID int64) (*models.Account, error) {
	query := `
		SELECT accountid, userid, name, type, balance
		FROM accounts
		WHERE accountid = $1
		FOR UPDATE
	`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, accountID))
}

func (r *PostgresRepository) UpdateBalance(ctx context.Context, accountID int64, balance decimal.Decimal) error {
	query := `
		UPDATE accounts
		SET balance = $1
		WHERE accountid = $2
	`
	res, err := r.db.ExecContext(ctx, query, balance, accountID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) HasTransactions(ctx context.Context, accountID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM transactions WHERE srcid = $1 OR desid = $1
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, accountID).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) FirstForUser(ctx context.Context, userID int64) (*models.Account, error) {
	query := `
		SELECT accountid, userid, name, type, balance
		FROM accounts
		WHERE userid = $1
		ORDER BY accountid ASC
		LIMIT 1
	`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, userID))
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Account, error) {
	query := `
		SELECT accountid, userid, name, type, balance
		FROM accounts
		WHERE userid = $1
		ORDER BY accountid ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Account
	for rows.Next() {
		account := &models.Account{}
		if err := rows.Scan(&account.ID, &account.UserID, &account.Name, &account.Type, &account.Balance); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, accountID int64) error {
	query := `
		DELETE FROM accounts
		WHERE accountid = $1
	`
	res, err := r.db.ExecContext(ctx, query, accountID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) scanAccount(row *sql.Row) (*models.Account, error) {
	account := &models.Account{}
	err := row.Scan(&account.ID, &account.UserID, &account.Name, &account.Type, &account.Balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return account, nil
}
