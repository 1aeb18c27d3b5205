// Package credentials provides the PostgreSQL-backed password-history
// repository.
package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bankcore/internal/common"
	"github.com/dmitrijs2005/bankcore/internal/dbx"
	"github.com/dmitrijs2005/bankcore/internal/models"
)

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, userID int64, hash string) (*models.Credential, error) {
	query := `
		INSERT INTO passwords (userid, hash, iscurrent, created)
		VALUES ($1, $2, TRUE, $3)
		RETURNING passwordid
	`
	credential := &models.Credential{UserID: userID, Hash: hash, IsCurrent: true, Created: time.Now().UTC()}
	if err := r.db.QueryRowContext(ctx, query, userID, hash, credential.Created).Scan(&credential.ID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return credential, nil
}

func (r *PostgresRepository) SupersedeCurrent(ctx context.Context, userID int64) error {
	query := `
		UPDATE passwords
		SET iscurrent = FALSE
		WHERE userid = $1 AND iscurrent
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetCurrent(ctx context.Context, userID int64) (*models.Credential, error) {
	query := `
		SELECT passwordid, userid, hash, iscurrent, created
		FROM passwords
		WHERE userid = $1 AND iscurrent
	`
	credential := &models.Credential{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&credential.ID, &credential.UserID,
		&credential.Hash, &credential.IsCurrent, &credential.Created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return credential, nil
}
