package models

import "time"

// Credential is one historical password-hash record for a user. Exactly one
// credential per user is current at a time; a password change supersedes the
// old record instead of deleting it, preserving history. Rows are immutable
// once written apart from the IsCurrent flag flip on supersede.
type Credential struct {
	ID        int64
	UserID    int64
	Hash      string
	IsCurrent bool
	Created   time.Time
}
