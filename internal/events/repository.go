package events

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherly/backend/internal/models"
)

// Repository handles event and reservation persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an events repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts an event.
func (r *Repository) Create(ctx context.Context, e *models.Event) error {
	const q = `INSERT INTO events (id, organization_id, title, description, start_time, end_time, location, capacity)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, e.OrganizationID, e.Title, e.Description, e.StartTime, e.EndTime, e.Location, e.Capacity).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// GetByID returns an event by ID, or (nil, nil) when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	const q = `SELECT id, organization_id, title, description, start_time, end_time, location, capacity, created_at, updated_at
		FROM events WHERE id = $1`
	var e models.Event
	err := r.pool.QueryRow(ctx, q, id).Scan(&e.ID, &e.OrganizationID, &e.Title, &e.Description, &e.StartTime, &e.EndTime, &e.Location, &e.Capacity, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListByOrganization returns an organization's events, soonest first.
func (r *Repository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]models.Event, error) {
	const q = `SELECT id, organization_id, title, description, start_time, end_time, location, capacity, created_at, updated_at
		FROM events WHERE organization_id = $1 ORDER BY start_time`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.OrganizationID, &e.Title, &e.Description, &e.StartTime, &e.EndTime, &e.Location, &e.Capacity, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Update replaces the event's mutable fields.
func (r *Repository) Update(ctx context.Context, e *models.Event) error {
	const q = `UPDATE events SET title = $2, description = $3, start_time = $4, end_time = $5, location = $6, capacity = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	return r.pool.QueryRow(ctx, q, e.ID, e.Title, e.Description, e.StartTime, e.EndTime, e.Location, e.Capacity).Scan(&e.UpdatedAt)
}

// Delete removes an event.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	return err
}

// UpsertReservation inserts or replaces the reservation for the
// (event_id, attendee_id) pair as a single atomic statement. The unique
// constraint on that pair is the sole serialization point for concurrent
// RSVPs; no application-level lock is taken.
func (r *Repository) UpsertReservation(ctx context.Context, res *models.Reservation) error {
	const q = `INSERT INTO reservations (event_id, attendee_id, status, guests)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id, attendee_id) DO UPDATE SET status = EXCLUDED.status, guests = EXCLUDED.guests, updated_at = NOW()
		RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, q, res.EventID, res.AttendeeID, res.Status, res.Guests).
		Scan(&res.CreatedAt, &res.UpdatedAt)
}

// ListReservations returns an event's reservations.
func (r *Repository) ListReservations(ctx context.Context, eventID uuid.UUID) ([]models.Reservation, error) {
	const q = `SELECT event_id, attendee_id, status, guests, created_at, updated_at
		FROM reservations WHERE event_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Reservation
	for rows.Next() {
		var res models.Reservation
		if err := rows.Scan(&res.EventID, &res.AttendeeID, &res.Status, &res.Guests, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, res)
	}
	return list, rows.Err()
}
