package authevents

import (
	"context"

	"github.com/dmitrijs2005/bankcore/internal/models"
)

// Repository is the append-only auth event log contract.
type Repository interface {
	// Insert appends one event for the user.
	Insert(ctx context.Context, userID int64, kind models.EventKind) error

	// ListRecent returns the user's most recent events, newest first,
	// bounded by limit. This is the lookback window the lockout state
	// machine scans for failure streaks.
	ListRecent(ctx context.Context, userID int64, limit int) ([]*models.AuthEvent, error)
}
