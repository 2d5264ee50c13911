package attendees

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherly/backend/internal/models"
)

// Repository handles attendee persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an attendees repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts an attendee profile owned by the given account.
func (r *Repository) Create(ctx context.Context, a *models.Attendee) error {
	const q = `INSERT INTO attendees (id, account_id, first_name, last_name)
		VALUES (gen_random_uuid(), $1, $2, $3)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, a.AccountID, a.FirstName, a.LastName).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

// GetByID returns an attendee by ID, or (nil, nil) when absent. Implements
// the reservation writer's AttendeeSource.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Attendee, error) {
	const q = `SELECT id, account_id, first_name, last_name, created_at, updated_at FROM attendees WHERE id = $1`
	var a models.Attendee
	err := r.pool.QueryRow(ctx, q, id).Scan(&a.ID, &a.AccountID, &a.FirstName, &a.LastName, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Update replaces the attendee's name fields.
func (r *Repository) Update(ctx context.Context, a *models.Attendee) error {
	const q = `UPDATE attendees SET first_name = $2, last_name = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	return r.pool.QueryRow(ctx, q, a.ID, a.FirstName, a.LastName).Scan(&a.UpdatedAt)
}

// Delete removes an attendee profile.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM attendees WHERE id = $1`, id)
	return err
}
