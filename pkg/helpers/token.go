package helpers

import (
	"crypto/rand"
	"encoding/hex"
)

// NewSessionToken generates an opaque session token: 32 bytes from
// crypto/rand, hex encoded (64 characters).
func NewSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
