package repository

import (
	"context"
	"time"

	"github.com/wicaksana/ledgeraudit/internal/domain/entity"
)

// JournalFilter narrows journal entry listings.
type JournalFilter struct {
	CompanyID string
	From      time.Time
	To        time.Time
	Limit     int
	Offset    int
}

// JournalSummary is the aggregate projection behind the dashboard.
type JournalSummary struct {
	EntryCount  int64 `json:"entry_count"`
	DebitTotal  int64 `json:"debit_total"`
	CreditTotal int64 `json:"credit_total"`
}

// JournalRepository persists journal entries and their lines.
// Upsert keys on (company_id, external_id); lines are replaced wholesale.
type JournalRepository interface {
	Upsert(ctx context.Context, e *entity.JournalEntry) error
	GetByID(ctx context.Context, id string) (*entity.JournalEntry, error)
	List(ctx context.Context, f JournalFilter) ([]*entity.JournalEntry, error)
	Summary(ctx context.Context, companyID string) (*JournalSummary, error)
	LastEntryDate(ctx context.Context, companyID string) (time.Time, error)
	FindDuplicates(ctx context.Context, e *entity.JournalEntry) ([]string, error)
}
