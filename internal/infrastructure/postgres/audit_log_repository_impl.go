package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wicaksana/ledgeraudit/internal/domain/entity"
	"github.com/wicaksana/ledgeraudit/internal/domain/repository"
)

type AuditLogRepository struct {
	pool *pgxpool.Pool
}

func NewAuditLogRepository(pool *pgxpool.Pool) *AuditLogRepository {
	return &AuditLogRepository{pool: pool}
}

func (r *AuditLogRepository) Insert(ctx context.Context, l *entity.AuditLog) error {
	md, _ := json.Marshal(l.Metadata)

	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_logs (user_id, email, action, ip, user_agent, metadata)
		VALUES (NULLIF($1, '')::uuid, NULLIF($2, ''), $3, NULLIF($4, ''), NULLIF($5, ''), $6)
	`, l.UserID, l.Email, l.Action, l.IP, l.UserAgent, md)
	return err
}

var _ repository.AuditLogRepository = (*AuditLogRepository)(nil)
