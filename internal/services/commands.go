package services

import (
	"github.com/dmitrijs2005/bankcore/internal/common"
	"github.com/dmitrijs2005/bankcore/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Commands are the typed, validated inputs of the funds-movement engine. The
// collaborator layer builds one per request; Validate runs before any
// storage access.
//
// IdempotencyKey is optional on every mutating command. When set, replaying
// the command can never apply its balance effects twice: the retry fails
// with common.ErrDuplicateRequest.

// checkAmount enforces the fixed-point contract: strictly positive, at most
// two decimal places.
func checkAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return common.ErrInvalidAmount
	}
	if amount.Exponent() < -2 {
		return common.ErrInvalidAmount
	}
	return nil
}

// DepositCommand credits an account from the system account.
type DepositCommand struct {
	AccountID      int64
	Amount         decimal.Decimal
	IdempotencyKey uuid.NullUUID
}

func (c DepositCommand) Validate() error {
	return checkAmount(c.Amount)
}

// WithdrawCommand debits an account toward the system account.
type WithdrawCommand struct {
	AccountID      int64
	Amount         decimal.Decimal
	IdempotencyKey uuid.NullUUID
}

func (c WithdrawCommand) Validate() error {
	return checkAmount(c.Amount)
}

// TransferCommand moves funds between two user accounts.
type TransferCommand struct {
	SrcID          int64
	DesID          int64
	Amount         decimal.Decimal
	IdempotencyKey uuid.NullUUID
}

func (c TransferCommand) Validate() error {
	if c.SrcID == c.DesID {
		return common.ErrInvalidOperation
	}
	return checkAmount(c.Amount)
}

// TransferToUserCommand moves funds to another user identified by email; the
// destination is the recipient's first account.
type TransferToUserCommand struct {
	SrcID          int64
	RecipientEmail string
	Amount         decimal.Decimal
	IdempotencyKey uuid.NullUUID
}

func (c TransferToUserCommand) Validate() error {
	if c.RecipientEmail == "" {
		return common.ErrInvalidOperation
	}
	return checkAmount(c.Amount)
}

// CreateAccountCommand opens an additional account for the acting user.
type CreateAccountCommand struct {
	Name string
	Type models.AccountType
}

func (c CreateAccountCommand) Validate() error {
	if c.Name == "" || !c.Type.Valid() {
		return common.ErrInvalidOperation
	}
	return nil
}

// DeleteAccountCommand removes an empty, history-free account.
type DeleteAccountCommand struct {
	AccountID int64
}

func (c DeleteAccountCommand) Validate() error {
	if c.AccountID <= 0 {
		return common.ErrInvalidOperation
	}
	return nil
}
