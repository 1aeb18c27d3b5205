package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/bankcore/internal/dbx"
	"github.com/dmitrijs2005/bankcore/internal/repositories/accounts"
	"github.com/dmitrijs2005/bankcore/internal/repositories/authevents"
	"github.com/dmitrijs2005/bankcore/internal/repositories/credentials"
	"github.com/dmitrijs2005/bankcore/internal/repositories/refreshtokens"
	"github.com/dmitrijs2005/bankcore/internal/repositories/transactions"
	"github.com/dmitrijs2005/bankcore/internal/repositories/users"
)

// RepositoryManager vends repository implementations bound to a DBTX, so a
// service can use the same repository code against the pool or against the
// transaction handle inside a dbx.WithTx closure.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Credentials(db dbx.DBTX) credentials.Repository
	Accounts(db dbx.DBTX) accounts.Repository
	Transactions(db dbx.DBTX) transactions.Repository
	AuthEvents(db dbx.DBTX) authevents.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository

	// RunMigrations brings the schema up to date.
	RunMigrations(ctx context.Context, db *sql.DB) error
}
