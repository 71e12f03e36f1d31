package entity

import "time"

// Session is an opaque server-side session. The token is the primary key:
// 32 random bytes, hex encoded. Only the auth service creates or revokes
// sessions.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the session has passed its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
