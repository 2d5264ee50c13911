package models

import (
	"time"

	"github.com/google/uuid"
)

// Attendee is a profile used to register presence at events. It is owned by
// exactly one account; one account may keep several profiles (e.g. a family).
type Attendee struct {
	ID        uuid.UUID `json:"id"`
	AccountID uuid.UUID `json:"account_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
