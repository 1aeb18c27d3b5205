package models

import "github.com/shopspring/decimal"

// AccountType is the closed set of account kinds.
type AccountType string

const (
	AccountTypeChecking AccountType = "checking"
	AccountTypeSaving   AccountType = "saving"
)

// Valid reports whether t is a member of the closed set.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeChecking, AccountTypeSaving:
		return true
	}
	return false
}

// SystemAccountID is the reserved sentinel counterparty representing the
// bank itself: the source of deposits and the destination of withdrawals.
// It never exists as an accounts row and is exempt from ownership checks.
const SystemAccountID int64 = 0

// Account belongs to exactly one user. The balance is a fixed-point decimal
// and is mutated only inside a ledger transaction; it never goes negative.
type Account struct {
	ID      int64
	UserID  int64
	Name    string
	Type    AccountType
	Balance decimal.Decimal
}
