package repository

import (
	"context"

	"github.com/wicaksana/ledgeraudit/internal/domain/entity"
)

// AuditLogRepository appends security audit records.
type AuditLogRepository interface {
	Insert(ctx context.Context, l *entity.AuditLog) error
}
