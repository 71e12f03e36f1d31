package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wicaksana/ledgeraudit/internal/domain/entity"
	"github.com/wicaksana/ledgeraudit/internal/domain/repository"
)

type ConnectionRepository struct {
	pool *pgxpool.Pool
}

func NewConnectionRepository(pool *pgxpool.Pool) *ConnectionRepository {
	return &ConnectionRepository{pool: pool}
}

func (r *ConnectionRepository) Upsert(ctx context.Context, c *entity.Connection) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO provider_connections (company_id, access_token_enc, refresh_token_enc, token_expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (company_id) DO UPDATE
		SET access_token_enc = EXCLUDED.access_token_enc,
		    refresh_token_enc = EXCLUDED.refresh_token_enc,
		    token_expires_at = EXCLUDED.token_expires_at,
		    updated_at = now()
		RETURNING updated_at
	`, c.CompanyID, c.AccessTokenEnc, c.RefreshTokenEnc, c.TokenExpiresAt)

	return row.Scan(&c.UpdatedAt)
}

// Get returns nil for a company that was never connected.
func (r *ConnectionRepository) Get(ctx context.Context, companyID string) (*entity.Connection, error) {
	c := &entity.Connection{}

	row := r.pool.QueryRow(ctx, `
		SELECT company_id, access_token_enc, refresh_token_enc, token_expires_at, updated_at
		FROM provider_connections
		WHERE company_id = $1
	`, companyID)
	if err := row.Scan(&c.CompanyID, &c.AccessTokenEnc, &c.RefreshTokenEnc,
		&c.TokenExpiresAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return c, nil
}

func (r *ConnectionRepository) Delete(ctx context.Context, companyID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM provider_connections WHERE company_id = $1`, companyID)
	return err
}

var _ repository.ConnectionRepository = (*ConnectionRepository)(nil)
