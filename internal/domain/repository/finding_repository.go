package repository

import (
	"context"

	"github.com/wicaksana/ledgeraudit/internal/domain/entity"
)

// FindingFilter narrows finding listings.
type FindingFilter struct {
	CompanyID string
	Status    entity.FindingStatus
	Severity  entity.Severity
	Limit     int
	Offset    int
}

// FindingRepository persists audit findings. ReplaceForEntry makes a
// re-check idempotent: old findings for the entry are dropped before the
// new set is inserted.
type FindingRepository interface {
	ReplaceForEntry(ctx context.Context, entryID string, findings []*entity.Finding) error
	GetByID(ctx context.Context, id string) (*entity.Finding, error)
	List(ctx context.Context, f FindingFilter) ([]*entity.Finding, error)
	CountBySeverity(ctx context.Context, companyID string, status entity.FindingStatus) (map[entity.Severity]int64, error)
	SetStatus(ctx context.Context, id string, status entity.FindingStatus) error
}
