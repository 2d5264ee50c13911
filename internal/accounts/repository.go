package accounts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherly/backend/internal/models"
)

// Repository handles account persistence. Accounts are provisioned
// out-of-band (registration flow or seeder); the request path only reads.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an accounts repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByExternalID returns the account linked to an external identity, or
// (nil, nil) when no account is linked.
func (r *Repository) GetByExternalID(ctx context.Context, externalID string) (*models.Account, error) {
	const q = `SELECT id, external_id, email, created_at, updated_at FROM accounts WHERE external_id = $1`
	var a models.Account
	err := r.pool.QueryRow(ctx, q, externalID).Scan(&a.ID, &a.ExternalID, &a.Email, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByID returns an account by ID, or (nil, nil) when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	const q = `SELECT id, external_id, email, created_at, updated_at FROM accounts WHERE id = $1`
	var a models.Account
	err := r.pool.QueryRow(ctx, q, id).Scan(&a.ID, &a.ExternalID, &a.Email, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Upsert inserts an account or refreshes its email when the external id is
// already linked. Used by provisioning flows and the seeder, not by the
// request path.
func (r *Repository) Upsert(ctx context.Context, a *models.Account) error {
	const q = `INSERT INTO accounts (id, external_id, email)
		VALUES (gen_random_uuid(), $1, $2)
		ON CONFLICT (external_id) DO UPDATE SET email = EXCLUDED.email, updated_at = NOW()
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, a.ExternalID, a.Email).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}
