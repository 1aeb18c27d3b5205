// Package authevents provides the PostgreSQL-backed, append-only
// authentication event log.
package authevents

import (
	"context"
	"fmt"
	"time"

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

func (r *PostgresRepository) Insert(ctx context.Context, userID int64, kind models.EventKind) error {
	query := `
		INSERT INTO userevents (userid, event, created)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, userID, string(kind), time.Now().UTC()); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListRecent(ctx context.Context, userID int64, limit int) ([]*models.AuthEvent, error) {
	// eventid is monotonic, so ordering by it avoids ties between events
	// logged within the same timestamp granularity.
	query := `
		SELECT eventid, userid, event, created
		FROM userevents
		WHERE userid = $1
		ORDER BY eventid DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.AuthEvent
	for rows.Next() {
		event := &models.AuthEvent{}
		if err := rows.Scan(&event.ID, &event.UserID, &event.Kind, &event.Created); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
