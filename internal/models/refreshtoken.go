package models

import "time"

// RefreshToken is a server-stored, long-lived token that can be exchanged
// for a fresh access token. Rotated (deleted and re-created) on every use.
type RefreshToken struct {
	UserID  int64
	Token   string
	Expires time.Time
}
