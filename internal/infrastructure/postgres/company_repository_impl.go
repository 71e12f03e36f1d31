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

type CompanyRepository struct {
	pool *pgxpool.Pool
}

func NewCompanyRepository(pool *pgxpool.Pool) *CompanyRepository {
	return &CompanyRepository{pool: pool}
}

func (r *CompanyRepository) Create(ctx context.Context, c *entity.Company) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO companies (name, fiscal_year_start_month, external_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, c.Name, c.FiscalYearStartMonth, c.ExternalID)

	return row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *CompanyRepository) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	c := &entity.Company{}

	row := r.pool.QueryRow(ctx, `
		SELECT id, name, fiscal_year_start_month, external_id, last_synced_at, created_at, updated_at
		FROM companies
		WHERE id = $1
	`, id)

	if err := row.Scan(&c.ID, &c.Name, &c.FiscalYearStartMonth, &c.ExternalID,
		&c.LastSyncedAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errNotFound
		}
		return nil, err
	}

	return c, nil
}

func (r *CompanyRepository) List(ctx context.Context) ([]*entity.Company, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, fiscal_year_start_month, external_id, last_synced_at, created_at, updated_at
		FROM companies
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCompanies(rows)
}

// ListConnected returns companies that have a provider connection, i.e. the
// sync worker's work list.
func (r *CompanyRepository) ListConnected(ctx context.Context) ([]*entity.Company, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.name, c.fiscal_year_start_month, c.external_id, c.last_synced_at, c.created_at, c.updated_at
		FROM companies c
		JOIN provider_connections pc ON pc.company_id = c.id
		ORDER BY c.created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCompanies(rows)
}

func scanCompanies(rows pgx.Rows) ([]*entity.Company, error) {
	var out []*entity.Company
	for rows.Next() {
		c := &entity.Company{}
		if err := rows.Scan(&c.ID, &c.Name, &c.FiscalYearStartMonth, &c.ExternalID,
			&c.LastSyncedAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CompanyRepository) Update(ctx context.Context, c *entity.Company) error {
	c.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE companies
		SET name = $1, fiscal_year_start_month = $2, external_id = $3, last_synced_at = $4, updated_at = $5
		WHERE id = $6
	`, c.Name, c.FiscalYearStartMonth, c.ExternalID, c.LastSyncedAt, c.UpdatedAt, c.ID)
	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return errNotFound
	}

	return nil
}

var _ repository.CompanyRepository = (*CompanyRepository)(nil)
