package entity

import "time"

// Connection holds the OAuth tokens for a company on the external
// accounting platform. Token fields are sealed (ChaCha20-Poly1305)
// before they reach the database.
type Connection struct {
	CompanyID       string
	AccessTokenEnc  []byte
	RefreshTokenEnc []byte
	TokenExpiresAt  time.Time
	UpdatedAt       time.Time
}
