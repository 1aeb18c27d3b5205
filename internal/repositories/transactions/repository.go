package transactions

import (
	"context"

	"github.com/dmitrijs2005/bankcore/internal/models"
	"github.com/google/uuid"
)

// Repository is the transaction recorder's storage contract. The ledger is
// append-only: there is no update or delete.
type Repository interface {
	// Insert appends one immutable ledger entry and returns it with the
	// generated id. A duplicate idempotency key yields
	// common.ErrDuplicateRequest.
	Insert(ctx context.Context, record *models.Transaction) (*models.Transaction, error)

	// ListByAccount returns all entries referencing the account as source
	// or destination, newest first.
	ListByAccount(ctx context.Context, accountID int64) ([]*models.Transaction, error)

	// FindByIdempotencyKey returns the entry recorded for the given
	// client-supplied key, or common.ErrNotFound.
	FindByIdempotencyKey(ctx context.Context, key uuid.UUID) (*models.Transaction, error)
}
