package provider

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// TokenVault seals provider tokens before they are stored. ChaCha20-Poly1305
// with a random nonce prepended to the ciphertext.
type TokenVault struct {
	aead cipher.AEAD
}

// NewTokenVault builds a vault from a 64-character hex key (32 bytes).
func NewTokenVault(hexKey string) (*TokenVault, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("token vault key is not hex: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("token vault key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	return &TokenVault{aead: aead}, nil
}

// Seal encrypts the plaintext token.
func (v *TokenVault) Seal(plain string) ([]byte, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return v.aead.Seal(nonce, nonce, []byte(plain), nil), nil
}

// Open decrypts a sealed token. Tampered or truncated input fails.
func (v *TokenVault) Open(sealed []byte) (string, error) {
	if len(sealed) < v.aead.NonceSize() {
		return "", errors.New("sealed token too short")
	}
	nonce, ct := sealed[:v.aead.NonceSize()], sealed[v.aead.NonceSize():]
	plain, err := v.aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
