package repository

import (
	"context"

	"github.com/wicaksana/ledgeraudit/internal/domain/entity"
)

// ConnectionRepository persists sealed provider tokens, one row per company.
// Get returns nil (no error) when the company has never been connected.
type ConnectionRepository interface {
	Upsert(ctx context.Context, c *entity.Connection) error
	Get(ctx context.Context, companyID string) (*entity.Connection, error)
	Delete(ctx context.Context, companyID string) error
}
