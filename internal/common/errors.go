// Package common contains shared sentinel errors and small helpers used
// across bankcore components. Callers should match these values with
// errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")

	// Ledger errors.
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidOperation  = errors.New("invalid operation")
	ErrDuplicateRequest  = errors.New("duplicate request")

	// Authorization / authentication errors.
	ErrForbidden          = errors.New("forbidden")
	ErrAccountLocked      = errors.New("account locked")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token lifecycle errors.
	ErrInvalidToken        = errors.New("invalid token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// Generic/internal flow control.
	ErrInternal = errors.New("internal error")
)
