package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/bankcore/internal/models"
)

// Repository is the users storage contract.
type Repository interface {
	// Create inserts a user. A duplicate email yields common.ErrConflict.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, userID int64) (*models.User, error)

	// SetLockState records a lockout transition. until must be nil when
	// locked is false.
	SetLockState(ctx context.Context, userID int64, locked bool, until *time.Time) error

	UpdateProfile(ctx context.Context, userID int64, name, email string) error

	// Delete removes the user; owned accounts, credentials and auth events
	// cascade at the schema level.
	Delete(ctx context.Context, userID int64) error
}
