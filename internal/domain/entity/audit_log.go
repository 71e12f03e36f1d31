package entity

import "time"

// AuditLog is an append-only record of a security-relevant action
// (login, logout, token exchange, ...). Writing one must never block
// the primary operation.
type AuditLog struct {
	ID        string
	UserID    string // empty for anonymous actions
	Email     string
	Action    string
	IP        string
	UserAgent string
	Metadata  map[string]any
	CreatedAt time.Time
}
