package domain

import "time"

// Session binds an opaque identifier to an authenticated account for a bounded lifetime.
type Session struct {
	ID        string
	AccountID int64
	Remember  bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
