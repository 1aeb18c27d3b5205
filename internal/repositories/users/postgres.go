// Package users provides the PostgreSQL-backed user repository.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bankcore/internal/common"
	"github.com/dmitrijs2005/bankcore/internal/dbx"
	"github.com/dmitrijs2005/bankcore/internal/models"
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

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (name, email, isverified, created, updated)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING userid
	`
	now := time.Now().UTC()
	user.Created = now
	user.Updated = now
	err := r.db.QueryRowContext(ctx, query, user.Name, user.Email, user.Verified, now, now).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT userid, name, email, isverified, islocked, lockoutend, created, updated
		FROM users
		WHERE email = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	query := `
		SELECT userid, name, email, isverified, islocked, lockoutend, created, updated
		FROM users
		WHERE userid = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, userID))
}

func (r *PostgresRepository) SetLockState(ctx context.Context, userID int64, locked bool, until *time.Time) error {
	query := `
		UPDATE users
		SET islocked = $1, lockoutend = $2, updated = $3
		WHERE userid = $4
	`
	res, err := r.db.ExecContext(ctx, query, locked, until, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireAffected(res)
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, userID int64, name, email string) error {
	query := `
		UPDATE users
		SET name = $1, email = $2, updated = $3
		WHERE userid = $4
	`
	res, err := r.db.ExecContext(ctx, query, name, email, time.Now().UTC(), userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return common.ErrConflict
		}
		return fmt.Errorf("db error: %w", err)
	}
	return requireAffected(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, userID int64) error {
	query := `
		DELETE FROM users
		WHERE userid = $1
	`
	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireAffected(res)
}

func (r *PostgresRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Verified,
		&user.Locked, &user.LockoutUntil, &user.Created, &user.Updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
