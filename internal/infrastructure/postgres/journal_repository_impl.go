package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wicaksana/ledgeraudit/internal/domain/entity"
	"github.com/wicaksana/ledgeraudit/internal/domain/repository"
)

type JournalRepository struct {
	pool *pgxpool.Pool
}

func NewJournalRepository(pool *pgxpool.Pool) *JournalRepository {
	return &JournalRepository{pool: pool}
}

// Upsert writes the entry and replaces its lines in one transaction.
// Keyed on (company_id, external_id) so re-syncing the same page is
// idempotent.
func (r *JournalRepository) Upsert(ctx context.Context, e *entity.JournalEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		INSERT INTO journal_entries (company_id, external_id, entry_date, description, posted_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (company_id, external_id) DO UPDATE
		SET entry_date = EXCLUDED.entry_date,
		    description = EXCLUDED.description,
		    posted_at = EXCLUDED.posted_at
		RETURNING id, created_at
	`, e.CompanyID, e.ExternalID, e.EntryDate, e.Description, e.PostedAt)
	if err := row.Scan(&e.ID, &e.CreatedAt); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM journal_lines WHERE entry_id = $1`, e.ID); err != nil {
		return err
	}
	for _, l := range e.Lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO journal_lines (entry_id, line_no, account_code, account_name, side, amount)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, e.ID, l.LineNo, l.AccountCode, l.AccountName, l.Side, l.Amount); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *JournalRepository) GetByID(ctx context.Context, id string) (*entity.JournalEntry, error) {
	e := &entity.JournalEntry{}

	row := r.pool.QueryRow(ctx, `
		SELECT id, company_id, external_id, entry_date, description, posted_at, created_at
		FROM journal_entries
		WHERE id = $1
	`, id)
	if err := row.Scan(&e.ID, &e.CompanyID, &e.ExternalID, &e.EntryDate,
		&e.Description, &e.PostedAt, &e.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errNotFound
		}
		return nil, err
	}

	if err := r.loadLines(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *JournalRepository) loadLines(ctx context.Context, e *entity.JournalEntry) error {
	rows, err := r.pool.Query(ctx, `
		SELECT line_no, account_code, account_name, side, amount
		FROM journal_lines
		WHERE entry_id = $1
		ORDER BY line_no
	`, e.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var l entity.JournalLine
		if err := rows.Scan(&l.LineNo, &l.AccountCode, &l.AccountName, &l.Side, &l.Amount); err != nil {
			return err
		}
		e.Lines = append(e.Lines, l)
	}
	return rows.Err()
}

func (r *JournalRepository) List(ctx context.Context, f repository.JournalFilter) ([]*entity.JournalEntry, error) {
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	from := f.From
	if from.IsZero() {
		from = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	to := f.To
	if to.IsZero() {
		to = time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, company_id, external_id, entry_date, description, posted_at, created_at
		FROM journal_entries
		WHERE company_id = $1 AND entry_date >= $2 AND entry_date <= $3
		ORDER BY entry_date DESC, external_id DESC
		LIMIT $4 OFFSET $5
	`, f.CompanyID, from, to, limit, f.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.JournalEntry
	for rows.Next() {
		e := &entity.JournalEntry{}
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.ExternalID, &e.EntryDate,
			&e.Description, &e.PostedAt, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, e := range out {
		if err := r.loadLines(ctx, e); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *JournalRepository) Summary(ctx context.Context, companyID string) (*repository.JournalSummary, error) {
	s := &repository.JournalSummary{}

	row := r.pool.QueryRow(ctx, `
		SELECT count(DISTINCT e.id),
		       COALESCE(sum(l.amount) FILTER (WHERE l.side = 'debit'), 0),
		       COALESCE(sum(l.amount) FILTER (WHERE l.side = 'credit'), 0)
		FROM journal_entries e
		LEFT JOIN journal_lines l ON l.entry_id = e.id
		WHERE e.company_id = $1
	`, companyID)
	if err := row.Scan(&s.EntryCount, &s.DebitTotal, &s.CreditTotal); err != nil {
		return nil, err
	}

	return s, nil
}

// LastEntryDate returns the zero time when the company has no entries yet.
func (r *JournalRepository) LastEntryDate(ctx context.Context, companyID string) (time.Time, error) {
	var t *time.Time
	row := r.pool.QueryRow(ctx, `
		SELECT max(entry_date) FROM journal_entries WHERE company_id = $1
	`, companyID)
	if err := row.Scan(&t); err != nil {
		return time.Time{}, err
	}
	if t == nil {
		return time.Time{}, nil
	}
	return *t, nil
}

// FindDuplicates returns IDs of other entries with the same company, date,
// description and debit total as e.
func (r *JournalRepository) FindDuplicates(ctx context.Context, e *entity.JournalEntry) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT o.id
		FROM journal_entries o
		JOIN LATERAL (
			SELECT COALESCE(sum(amount) FILTER (WHERE side = 'debit'), 0) AS debit_total
			FROM journal_lines WHERE entry_id = o.id
		) t ON true
		WHERE o.company_id = $1
		  AND o.id <> $2
		  AND o.entry_date = $3
		  AND o.description = $4
		  AND t.debit_total = $5
	`, e.CompanyID, e.ID, e.EntryDate, e.Description, e.DebitTotal())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

var _ repository.JournalRepository = (*JournalRepository)(nil)
