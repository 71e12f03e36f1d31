package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wicaksana/ledgeraudit/internal/domain/entity"
	"github.com/wicaksana/ledgeraudit/internal/domain/repository"
)

type FindingRepository struct {
	pool *pgxpool.Pool
}

func NewFindingRepository(pool *pgxpool.Pool) *FindingRepository {
	return &FindingRepository{pool: pool}
}

// ReplaceForEntry drops old findings for the entry and inserts the new set
// atomically, so re-running checks never duplicates findings. Resolved
// findings are kept.
func (r *FindingRepository) ReplaceForEntry(ctx context.Context, entryID string, findings []*entity.Finding) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		DELETE FROM audit_findings WHERE entry_id = $1 AND status = 'open'
	`, entryID); err != nil {
		return err
	}

	for _, f := range findings {
		row := tx.QueryRow(ctx, `
			INSERT INTO audit_findings (entry_id, company_id, rule, severity, message, status)
			VALUES ($1, $2, $3, $4, $5, 'open')
			RETURNING id, created_at
		`, f.EntryID, f.CompanyID, f.Rule, f.Severity, f.Message)
		if err := row.Scan(&f.ID, &f.CreatedAt); err != nil {
			return err
		}
		f.Status = entity.FindingOpen
	}

	return tx.Commit(ctx)
}

func (r *FindingRepository) GetByID(ctx context.Context, id string) (*entity.Finding, error) {
	f := &entity.Finding{}

	row := r.pool.QueryRow(ctx, `
		SELECT id, entry_id, company_id, rule, severity, message, status, created_at
		FROM audit_findings
		WHERE id = $1
	`, id)
	if err := row.Scan(&f.ID, &f.EntryID, &f.CompanyID, &f.Rule, &f.Severity,
		&f.Message, &f.Status, &f.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errNotFound
		}
		return nil, err
	}

	return f, nil
}

func (r *FindingRepository) List(ctx context.Context, fl repository.FindingFilter) ([]*entity.Finding, error) {
	limit := fl.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	// Empty filter values match everything.
	rows, err := r.pool.Query(ctx, `
		SELECT id, entry_id, company_id, rule, severity, message, status, created_at
		FROM audit_findings
		WHERE company_id = $1
		  AND ($2 = '' OR status = $2)
		  AND ($3 = '' OR severity = $3)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`, fl.CompanyID, string(fl.Status), string(fl.Severity), limit, fl.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Finding
	for rows.Next() {
		f := &entity.Finding{}
		if err := rows.Scan(&f.ID, &f.EntryID, &f.CompanyID, &f.Rule, &f.Severity,
			&f.Message, &f.Status, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *FindingRepository) CountBySeverity(ctx context.Context, companyID string, status entity.FindingStatus) (map[entity.Severity]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT severity, count(*)
		FROM audit_findings
		WHERE company_id = $1 AND status = $2
		GROUP BY severity
	`, companyID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[entity.Severity]int64{}
	for rows.Next() {
		var sev entity.Severity
		var n int64
		if err := rows.Scan(&sev, &n); err != nil {
			return nil, err
		}
		out[sev] = n
	}
	return out, rows.Err()
}

func (r *FindingRepository) SetStatus(ctx context.Context, id string, status entity.FindingStatus) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE audit_findings SET status = $1 WHERE id = $2
	`, status, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return errNotFound
	}
	return nil
}

var _ repository.FindingRepository = (*FindingRepository)(nil)
