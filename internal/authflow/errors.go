package authflow

import (
	"errors"
	"fmt"
)

// Failure kinds surfaced by the request pipeline and the reservation writer.
// Each maps to exactly one transport outcome; the mapping lives in
// internal/middleware. All are terminal for the request: no stage retries,
// recovers, or continues past a failure.
var (
	// Authentication (401). Covers malformed credentials, provider-rejected
	// tokens and provider communication faults alike.
	ErrUnauthenticated = errors.New("unauthenticated")

	// The credential was valid but no local account is linked to the
	// external identity (403). No auto-provisioning happens here.
	ErrIdentityNotLinked = errors.New("no account linked to this identity")

	// Authorization (400 / 403).
	ErrMissingOrgID     = errors.New("organization id not found in request")
	ErrNotAMember       = errors.New("not a member of this organization")
	ErrInsufficientRole = errors.New("insufficient privileges")

	// Reservation writes (400 / 404 / 403).
	ErrMissingAttendee  = errors.New("attendee_id required")
	ErrAttendeeNotFound = errors.New("attendee not found")
	ErrNotOwner         = errors.New("attendee does not belong to the authenticated account")

	// The store is unreachable or returned an unexpected fault (500). The
	// only kind logged as an operational concern.
	ErrStore = errors.New("store failure")
)

// StoreError wraps a driver error under ErrStore so callers can match the
// kind with errors.Is while keeping the cause in the message.
func StoreError(err error) error {
	return fmt.Errorf("%w: %v", ErrStore, err)
}
