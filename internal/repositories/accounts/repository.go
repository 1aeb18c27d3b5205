package accounts

import (
	"context"

	"github.com/dmitrijs2005/bankcore/internal/models"
	"github.com/shopspring/decimal"
)

// Repository is the accounts contract of the ledger store. GetForUpdate and
// UpdateBalance are only meaningful when the repository is bound to a
// transaction handle; callers are expected to hold both inside one
// dbx.WithTx closure.
type Repository interface {
	Create(ctx context.Context, userID int64, name string, accountType models.AccountType, balance decimal.Decimal) (*models.Account, error)
	GetByID(ctx context.Context, accountID int64) (*models.Account, error)

	// GetForUpdate reads the account row holding an exclusive row lock for
	// the duration of the enclosing transaction, so a concurrent mutator
	// cannot read a stale balance.
	GetForUpdate(ctx context.Context, accountID int64) (*models.Account, error)

	// UpdateBalance writes a new balance. Returns common.ErrNotFound if the
	// row no longer exists.
	UpdateBalance(ctx context.Context, accountID int64, balance decimal.Decimal) error

	// HasTransactions reports whether any ledger entry references the
	// account as source or destination. Used to block deletions that would
	// orphan ledger history.
	HasTransactions(ctx context.Context, accountID int64) (bool, error)

	// FirstForUser returns the user's account with the lowest id.
	FirstForUser(ctx context.Context, userID int64) (*models.Account, error)

	ListByUser(ctx context.Context, userID int64) ([]*models.Account, error)
	Delete(ctx context.Context, accountID int64) error
}
