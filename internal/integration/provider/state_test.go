package provider

import (
	"testing"
	"time"
)

func TestStateSignVerify(t *testing.T) {
	s := NewStateSigner("secret", 10*time.Minute)

	state, err := s.Sign("c1", "nonce-1")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := s.Verify(state)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.CompanyID != "c1" || claims.Nonce != "nonce-1" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestStateVerifyRejectsWrongSecret(t *testing.T) {
	state, err := NewStateSigner("secret-a", 10*time.Minute).Sign("c1", "n")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewStateSigner("secret-b", 10*time.Minute).Verify(state); err == nil {
		t.Error("state signed with another secret verified")
	}
}

func TestStateVerifyRejectsExpired(t *testing.T) {
	state, err := NewStateSigner("secret", -time.Minute).Sign("c1", "n")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewStateSigner("secret", -time.Minute).Verify(state); err == nil {
		t.Error("expired state verified")
	}
}

func TestStateVerifyRejectsGarbage(t *testing.T) {
	s := NewStateSigner("secret", 10*time.Minute)
	if _, err := s.Verify("garbage.token.here"); err == nil {
		t.Error("garbage state verified")
	}
}
