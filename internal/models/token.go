package models

import "time"

// AuthToken is the registry record for an issued session token. Revocation
// sets RevokedAt rather than deleting the row, so revoking twice is a
// no-op and expired entries can be purged lazily by the cleanup job.
type AuthToken struct {
	ID        string
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

func (t AuthToken) Valid(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
