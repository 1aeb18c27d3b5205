package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType is the closed set of ledger entry kinds.
type TransactionType string

const (
	TransactionTypeDeposit  TransactionType = "deposit"
	TransactionTypeWithdraw TransactionType = "withdraw"
	TransactionTypeTransfer TransactionType = "transfer"
)

// Valid reports whether t is a member of the closed set.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdraw, TransactionTypeTransfer:
		return true
	}
	return false
}

// Transaction is one immutable ledger entry describing a completed money
// movement. SrcID or DesID may be SystemAccountID for deposits and
// withdrawals. Rows are never updated or deleted.
//
// Approved/Complete and their timestamps are reserved for multi-phase
// settlement; every transaction written today commits in a single phase.
type Transaction struct {
	ID     int64
	SrcID  int64
	DesID  int64
	Amount decimal.Decimal
	Type   TransactionType

	// IdempotencyKey is the optional client-supplied deduplication key.
	IdempotencyKey uuid.NullUUID

	Created     time.Time
	Approved    bool
	ApprovedAt  *time.Time
	Complete    bool
	CompletedAt *time.Time
}
