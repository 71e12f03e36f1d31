package repository

import (
	"context"

	"github.com/wicaksana/ledgeraudit/internal/domain/entity"
)

// SessionRepository persists opaque session tokens. Get returns nil (no
// error) for a token that is absent or already expired. Delete is
// idempotent. DeleteExpired removes expired rows and returns the count.
type SessionRepository interface {
	Create(ctx context.Context, s *entity.Session) error
	Get(ctx context.Context, token string) (*entity.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) (int64, error)
}
