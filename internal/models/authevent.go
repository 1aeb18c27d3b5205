package models

import "time"

// EventKind identifies an authentication event. The literal strings match
// the rows the lockout state machine scans for.
type EventKind string

const (
	EventSuccessfulAuth  EventKind = "Successful Authentication"
	EventFailedAuth      EventKind = "Failed Authentication"
	EventAccountLocked   EventKind = "Account Locked"
	EventAccountUnlocked EventKind = "Account Unlocked"
	EventLogOut          EventKind = "Log Out"
)

// AuthEvent is an append-only log entry consumed by the lockout state
// machine to compute recent failure streaks. Never mutated.
type AuthEvent struct {
	ID      int64
	UserID  int64
	Kind    EventKind
	Created time.Time
}
