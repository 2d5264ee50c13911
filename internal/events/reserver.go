package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gatherly/backend/internal/authflow"
	"github.com/gatherly/backend/internal/models"
)

// ErrEventNotFound is returned when an RSVP targets an event that does not
// exist. Checked after ownership, so using someone else's attendee always
// fails as NotOwner regardless of the event.
var ErrEventNotFound = errors.New("event not found")

// AttendeeSource looks up attendee profiles. Returns (nil, nil) when absent.
type AttendeeSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Attendee, error)
}

// EventSource looks up events. Returns (nil, nil) when absent.
type EventSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
}

// ReservationStore performs the atomic reservation upsert.
type ReservationStore interface {
	UpsertReservation(ctx context.Context, res *models.Reservation) error
}

// Reserver is the reservation write path: it validates the attendee, checks
// that the caller owns it, and upserts the reservation keyed on
// (event, attendee). Repeating an identical call converges to the same
// stored row; the store's conflict resolution is the only serialization, so
// the writer holds no lock of its own. Event capacity is not enforced here.
type Reserver struct {
	events       EventSource
	attendees    AttendeeSource
	reservations ReservationStore
}

// NewReserver creates a reservation writer.
func NewReserver(events EventSource, attendees AttendeeSource, reservations ReservationStore) *Reserver {
	return &Reserver{events: events, attendees: attendees, reservations: reservations}
}

// Reserve creates or replaces the caller's RSVP for the event. status
// defaults to going and guests to 0 when unset.
func (s *Reserver) Reserve(ctx context.Context, eventID uuid.UUID, account *models.Account, attendeeID, status string, guests int) (*models.Reservation, error) {
	if attendeeID == "" {
		return nil, authflow.ErrMissingAttendee
	}
	id, err := uuid.Parse(attendeeID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid attendee id", authflow.ErrAttendeeNotFound)
	}
	attendee, err := s.attendees.GetByID(ctx, id)
	if err != nil {
		return nil, authflow.StoreError(err)
	}
	if attendee == nil {
		return nil, authflow.ErrAttendeeNotFound
	}
	if attendee.AccountID != account.ID {
		return nil, authflow.ErrNotOwner
	}
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, authflow.StoreError(err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	if status == "" {
		status = models.StatusGoing
	}
	res := &models.Reservation{EventID: eventID, AttendeeID: id, Status: status, Guests: guests}
	if err := s.reservations.UpsertReservation(ctx, res); err != nil {
		return nil, authflow.StoreError(err)
	}
	return res, nil
}
