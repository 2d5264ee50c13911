package models

import (
	"time"

	"github.com/google/uuid"
)

// ExternalIdentity is the provider-issued principal resulting from credential
// verification. Not persisted; the identity provider owns it.
type ExternalIdentity struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// Account is the platform's internal representation of a user, linked
// one-to-one to an external identity via ExternalID (unique).
type Account struct {
	ID         uuid.UUID `json:"id"`
	ExternalID string    `json:"external_id"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
