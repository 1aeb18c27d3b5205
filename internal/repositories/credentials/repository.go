package credentials

import (
	"context"

	"github.com/dmitrijs2005/bankcore/internal/models"
)

// Repository is the password-credential storage contract. Credentials are
// append-only: a password change supersedes the old current row and inserts
// a new one; nothing is ever deleted. Callers run SupersedeCurrent and
// Insert inside one dbx.WithTx closure.
type Repository interface {
	// Insert appends a new current credential for the user.
	Insert(ctx context.Context, userID int64, hash string) (*models.Credential, error)

	// SupersedeCurrent clears the is-current flag on the user's active
	// credential, if any.
	SupersedeCurrent(ctx context.Context, userID int64) error

	// GetCurrent returns the user's active credential or common.ErrNotFound.
	GetCurrent(ctx context.Context, userID int64) (*models.Credential, error)
}
