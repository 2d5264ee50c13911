package models

import (
	"time"

	"github.com/google/uuid"
)

// Reservation status values. Guests is meaningful only for StatusGoing.
const (
	StatusGoing    = "going"
	StatusMaybe    = "maybe"
	StatusNotGoing = "not_going"
)

// ValidStatus reports whether s is one of the reservation status values.
func ValidStatus(s string) bool {
	return s == StatusGoing || s == StatusMaybe || s == StatusNotGoing
}

// Reservation is the attendance record for one (event, attendee) pair. The
// composite key (EventID, AttendeeID) is the reservation's identity: writes
// go through an atomic upsert on that key, so repeated identical calls
// converge to the same row and never duplicate.
type Reservation struct {
	EventID    uuid.UUID `json:"event_id"`
	AttendeeID uuid.UUID `json:"attendee_id"`
	Status     string    `json:"status"`
	Guests     int       `json:"guests"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
