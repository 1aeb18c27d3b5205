// Package models defines the persisted entities of the bankcore ledger and
// auth subsystems.
package models

import "time"

// User is an identity record. A user owns zero or more accounts; deleting a
// user cascades to their accounts, credentials and auth events.
type User struct {
	ID       int64
	Name     string
	Email    string
	Verified bool

	// Lockout state. LockoutUntil is set while a failure-streak lockout is
	// active; it may linger past its deadline until the next login attempt
	// recomputes it (lazy expiry, no background timer).
	Locked       bool
	LockoutUntil *time.Time

	Created time.Time
	Updated time.Time
}
