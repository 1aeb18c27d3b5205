// Package services contains the business logic of bankcore. This file
// implements LedgerService, the funds-movement engine: deposits, withdrawals
// and transfers over the account/transaction repositories, each applied as
// one atomic unit.
package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/bankcore/internal/common"
	"github.com/dmitrijs2005/bankcore/internal/config"
	"github.com/dmitrijs2005/bankcore/internal/dbx"
	"github.com/dmitrijs2005/bankcore/internal/logging"
	"github.com/dmitrijs2005/bankcore/internal/models"
	"github.com/dmitrijs2005/bankcore/internal/repositories/accounts"
	"github.com/dmitrijs2005/bankcore/internal/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementResult is what a successful mutating operation hands back to the
// collaborator layer: the recorded ledger entry and the acting account's new
// balance.
type MovementResult struct {
	Transaction *models.Transaction
	NewBalance  decimal.Decimal
}

// LedgerService orchestrates deposit, withdraw, transfer and account
// lifecycle operations. Every balance read, invariant check and write happens
// inside a single dbx.WithTx unit with the touched rows locked, so two
// concurrent withdrawals against one account serialize on the row and the
// second sees the first's committed balance.
type LedgerService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	log   logging.Logger

	// skipOwnershipChecks reproduces the historical insecure variant for
	// demos. Never set in production; see config.InsecureSkipOwnershipChecks.
	skipOwnershipChecks bool
}

// NewLedgerService constructs a LedgerService using repositories and config.
func NewLedgerService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, log logging.Logger) *LedgerService {
	return &LedgerService{
		db:                  db,
		repos:               m,
		log:                 log.With("component", "ledger"),
		skipOwnershipChecks: cfg.InsecureSkipOwnershipChecks,
	}
}

// Deposit credits the account from the system account and records one
// deposit entry.
func (s *LedgerService) Deposit(ctx context.Context, actingUserID int64, cmd DepositCommand) (*MovementResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	result := &MovementResult{}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.checkDuplicate(ctx, tx, cmd.IdempotencyKey); err != nil {
			return err
		}
		repo := s.repos.Accounts(tx)
		account, err := repo.GetForUpdate(ctx, cmd.AccountID)
		if err != nil {
			return err
		}
		if err := s.authorize(account, actingUserID); err != nil {
			return err
		}
		result.NewBalance, err = s.applyDelta(ctx, repo, account, cmd.Amount)
		if err != nil {
			return err
		}
		result.Transaction, err = s.recordTransaction(ctx, tx,
			models.SystemAccountID, account.ID, cmd.Amount, models.TransactionTypeDeposit, cmd.IdempotencyKey)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "deposit applied", "account", cmd.AccountID, "amount", cmd.Amount.String())
	return result, nil
}

// Withdraw debits the account toward the system account and records one
// withdraw entry. The balance check runs on the locked row, so there is no
// window between check and debit.
func (s *LedgerService) Withdraw(ctx context.Context, actingUserID int64, cmd WithdrawCommand) (*MovementResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	result := &MovementResult{}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.checkDuplicate(ctx, tx, cmd.IdempotencyKey); err != nil {
			return err
		}
		repo := s.repos.Accounts(tx)
		account, err := repo.GetForUpdate(ctx, cmd.AccountID)
		if err != nil {
			return err
		}
		if err := s.authorize(account, actingUserID); err != nil {
			return err
		}
		result.NewBalance, err = s.applyDelta(ctx, repo, account, cmd.Amount.Neg())
		if err != nil {
			return err
		}
		result.Transaction, err = s.recordTransaction(ctx, tx,
			account.ID, models.SystemAccountID, cmd.Amount, models.TransactionTypeWithdraw, cmd.IdempotencyKey)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "withdrawal applied", "account", cmd.AccountID, "amount", cmd.Amount.String())
	return result, nil
}

// Transfer moves funds between two accounts: debit, credit and the single
// transfer entry commit or roll back together.
func (s *LedgerService) Transfer(ctx context.Context, actingUserID int64, cmd TransferCommand) (*MovementResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	result := &MovementResult{}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.checkDuplicate(ctx, tx, cmd.IdempotencyKey); err != nil {
			return err
		}
		var err error
		result, err = s.transferLocked(ctx, tx, actingUserID, cmd.SrcID, cmd.DesID, cmd.Amount, cmd.IdempotencyKey)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "transfer applied", "src", cmd.SrcID, "des", cmd.DesID, "amount", cmd.Amount.String())
	return result, nil
}

// TransferToUser resolves the recipient by email to their first account and
// runs the transfer logic. Sending to oneself this way is rejected; the
// plain Transfer path exists for moving funds between own accounts.
func (s *LedgerService) TransferToUser(ctx context.Context, actingUserID int64, cmd TransferToUserCommand) (*MovementResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	result := &MovementResult{}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.checkDuplicate(ctx, tx, cmd.IdempotencyKey); err != nil {
			return err
		}
		recipient, err := s.repos.Users(tx).GetByEmail(ctx, cmd.RecipientEmail)
		if err != nil {
			return err
		}
		if recipient.ID == actingUserID {
			return common.ErrInvalidOperation
		}
		destination, err := s.repos.Accounts(tx).FirstForUser(ctx, recipient.ID)
		if err != nil {
			return err
		}
		result, err = s.transferLocked(ctx, tx, actingUserID, cmd.SrcID, destination.ID, cmd.Amount, cmd.IdempotencyKey)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "transfer to user applied", "src", cmd.SrcID, "recipient", cmd.RecipientEmail, "amount", cmd.Amount.String())
	return result, nil
}

// CreateAccount opens an additional zero-balance account for the acting
// user.
func (s *LedgerService) CreateAccount(ctx context.Context, actingUserID int64, cmd CreateAccountCommand) (*models.Account, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	account, err := s.repos.Accounts(s.db).Create(ctx, actingUserID, cmd.Name, cmd.Type, decimal.Zero)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "account created", "account", account.ID, "user", actingUserID)
	return account, nil
}

// Accounts lists the acting user's accounts.
func (s *LedgerService) Accounts(ctx context.Context, actingUserID int64) ([]*models.Account, error) {
	return s.repos.Accounts(s.db).ListByUser(ctx, actingUserID)
}

// Transactions returns the ledger entries referencing an owned account,
// newest first.
func (s *LedgerService) Transactions(ctx context.Context, actingUserID int64, accountID int64) ([]*models.Transaction, error) {
	account, err := s.repos.Accounts(s.db).GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.UserID != actingUserID {
		return nil, common.ErrForbidden
	}
	return s.repos.Transactions(s.db).ListByAccount(ctx, accountID)
}

// DeleteAccount removes an account. Only the owner may delete, only at zero
// balance, and only when no ledger entry references the account; deleting
// anything else would orphan ledger history.
func (s *LedgerService) DeleteAccount(ctx context.Context, actingUserID int64, cmd DeleteAccountCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Accounts(tx)
		account, err := repo.GetForUpdate(ctx, cmd.AccountID)
		if err != nil {
			return err
		}
		if account.UserID != actingUserID {
			return common.ErrForbidden
		}
		if !account.Balance.IsZero() {
			return common.ErrInvalidOperation
		}
		hasHistory, err := repo.HasTransactions(ctx, account.ID)
		if err != nil {
			return err
		}
		if hasHistory {
			return common.ErrConflict
		}
		return repo.Delete(ctx, account.ID)
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "account deleted", "account", cmd.AccountID, "user", actingUserID)
	return nil
}

// --- internals ---

// transferLocked runs the two balance mutations and the single ledger entry
// for a transfer inside the caller's transaction. Rows are locked in
// ascending account id order so two transfers moving funds in opposite
// directions between the same pair cannot deadlock.
func (s *LedgerService) transferLocked(ctx context.Context, tx dbx.DBTX, actingUserID int64,
	srcID, desID int64, amount decimal.Decimal, key uuid.NullUUID) (*MovementResult, error) {

	if srcID == desID {
		return nil, common.ErrInvalidOperation
	}

	repo := s.repos.Accounts(tx)

	firstID, secondID := srcID, desID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}
	first, err := repo.GetForUpdate(ctx, firstID)
	if err != nil {
		return nil, err
	}
	second, err := repo.GetForUpdate(ctx, secondID)
	if err != nil {
		return nil, err
	}

	src, des := first, second
	if src.ID != srcID {
		src, des = second, first
	}

	if err := s.authorize(src, actingUserID); err != nil {
		return nil, err
	}

	newBalance, err := s.applyDelta(ctx, repo, src, amount.Neg())
	if err != nil {
		return nil, err
	}
	if _, err := s.applyDelta(ctx, repo, des, amount); err != nil {
		return nil, err
	}

	record, err := s.recordTransaction(ctx, tx, src.ID, des.ID, amount, models.TransactionTypeTransfer, key)
	if err != nil {
		return nil, err
	}
	return &MovementResult{Transaction: record, NewBalance: newBalance}, nil
}

// applyDelta is the balance mutator: it applies a signed delta to an account
// row the caller has already locked and enforces the nonnegative-balance
// invariant. It performs no write when the invariant would break and records
// no ledger entry itself.
func (s *LedgerService) applyDelta(ctx context.Context, repo accounts.Repository,
	account *models.Account, delta decimal.Decimal) (decimal.Decimal, error) {

	newBalance := account.Balance.Add(delta)
	if newBalance.IsNegative() {
		return decimal.Decimal{}, common.ErrInsufficientFunds
	}
	if err := repo.UpdateBalance(ctx, account.ID, newBalance); err != nil {
		return decimal.Decimal{}, err
	}
	account.Balance = newBalance
	return newBalance, nil
}

// recordTransaction is the transaction recorder: it appends the immutable
// ledger entry describing a movement whose balance effects were applied in
// the same atomic unit.
func (s *LedgerService) recordTransaction(ctx context.Context, tx dbx.DBTX,
	srcID, desID int64, amount decimal.Decimal, kind models.TransactionType, key uuid.NullUUID) (*models.Transaction, error) {

	if !amount.IsPositive() {
		return nil, common.ErrInvalidAmount
	}
	if kind == models.TransactionTypeTransfer && srcID == desID {
		return nil, common.ErrInvalidOperation
	}
	return s.repos.Transactions(tx).Insert(ctx, &models.Transaction{
		SrcID:          srcID,
		DesID:          desID,
		Amount:         amount,
		Type:           kind,
		IdempotencyKey: key,
	})
}

// checkDuplicate rejects a command whose idempotency key already produced a
// committed ledger entry. A race between two identical commands is closed by
// the unique index on the key: the loser's insert fails and its whole unit
// rolls back.
func (s *LedgerService) checkDuplicate(ctx context.Context, tx dbx.DBTX, key uuid.NullUUID) error {
	if !key.Valid {
		return nil
	}
	_, err := s.repos.Transactions(tx).FindByIdempotencyKey(ctx, key.UUID)
	if err == nil {
		return common.ErrDuplicateRequest
	}
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	return err
}

// authorize enforces account ownership for the acting user. The system
// account is exempt; it is never loaded as an accounts row.
func (s *LedgerService) authorize(account *models.Account, actingUserID int64) error {
	if s.skipOwnershipChecks {
		return nil
	}
	if account.UserID != actingUserID {
		return common.ErrForbidden
	}
	return nil
}
