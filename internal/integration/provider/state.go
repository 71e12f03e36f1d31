package provider

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// StateSigner issues and verifies the OAuth state parameter as a short-lived
// HS256 token. The nonce inside is additionally tracked in redis by the
// caller so each state is single use.
type StateSigner struct {
	secret []byte
	ttl    time.Duration
}

func NewStateSigner(secret string, ttl time.Duration) *StateSigner {
	return &StateSigner{secret: []byte(secret), ttl: ttl}
}

// StateClaims binds the state to the company being connected.
type StateClaims struct {
	CompanyID string `json:"cid"`
	Nonce     string `json:"nonce"`
	jwt.RegisteredClaims
}

// Sign produces the state token.
func (s *StateSigner) Sign(companyID, nonce string) (string, error) {
	now := time.Now()
	claims := &StateClaims{
		CompanyID: companyID,
		Nonce:     nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify parses the state token and returns its claims.
func (s *StateSigner) Verify(state string) (*StateClaims, error) {
	claims := &StateClaims{}
	tkn, err := jwt.ParseWithClaims(state, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid state token")
	}
	return claims, nil
}
