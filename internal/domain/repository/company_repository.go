package repository

import (
	"context"

	"github.com/wicaksana/ledgeraudit/internal/domain/entity"
)

// CompanyRepository persists tenants.
type CompanyRepository interface {
	Create(ctx context.Context, c *entity.Company) error
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	List(ctx context.Context) ([]*entity.Company, error)
	Update(ctx context.Context, c *entity.Company) error
	ListConnected(ctx context.Context) ([]*entity.Company, error)
}
