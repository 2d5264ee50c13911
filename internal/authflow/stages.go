package authflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gatherly/backend/internal/models"
)

// TokenVerifier validates an opaque bearer token against the identity
// provider. Implementations live in internal/identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*models.ExternalIdentity, error)
}

// AccountSource looks up accounts by external identity. Returns (nil, nil)
// when no account matches; an error only for store faults.
type AccountSource interface {
	GetByExternalID(ctx context.Context, externalID string) (*models.Account, error)
}

// MembershipSource looks up an account's role within an organization.
// Returns "" when the account is not a member; an error only for store faults.
type MembershipSource interface {
	GetRole(ctx context.Context, orgID, accountID uuid.UUID) (string, error)
}

// OrgIDSource declares where a route carries its organization id: a path
// parameter, a request-body field, or both (param wins).
type OrgIDSource struct {
	Param string
	Body  string
}

const bearerPrefix = "Bearer "

// VerifyCredential returns the stage that parses the Authorization header
// and verifies the token with the provider. The header must match
// "Bearer <token>" exactly (case-sensitive prefix); anything else fails
// without contacting the provider. Provider rejections and provider faults
// both collapse to ErrUnauthenticated.
func VerifyCredential(verifier TokenVerifier) Stage {
	return func(ctx context.Context, rc *Context) error {
		header := rc.AuthHeader
		if header == "" {
			return fmt.Errorf("%w: missing authorization header", ErrUnauthenticated)
		}
		token, ok := strings.CutPrefix(header, bearerPrefix)
		if !ok || token == "" {
			return fmt.Errorf("%w: malformed credential", ErrUnauthenticated)
		}
		ident, err := verifier.Verify(ctx, token)
		if err != nil {
			return fmt.Errorf("%w: invalid or expired token", ErrUnauthenticated)
		}
		rc.Identity = ident
		return nil
	}
}

// ResolveAccount returns the stage that maps the verified external identity
// to the internal account record. A valid credential without a linked
// account is ErrIdentityNotLinked, a distinct kind from authentication
// failure. Pure read; missing accounts are never provisioned here.
func ResolveAccount(accounts AccountSource) Stage {
	return func(ctx context.Context, rc *Context) error {
		if rc.Identity == nil {
			return fmt.Errorf("%w: identity not verified", ErrUnauthenticated)
		}
		account, err := accounts.GetByExternalID(ctx, rc.Identity.ID)
		if err != nil {
			return StoreError(err)
		}
		if account == nil {
			return ErrIdentityNotLinked
		}
		rc.Account = account
		return nil
	}
}

// RequireOrgRole returns the stage that checks the resolved account's role
// in the target organization against allowedRoles. The check is exact set
// membership: "admin" does not satisfy a check that only lists "organizer".
// Callers declare the full acceptable set per action; when none is given it
// defaults to organizer and admin.
//
// The organization id is taken from rc.OrgID when an earlier stage resolved
// it (e.g. from the target resource), otherwise from the declared source.
func RequireOrgRole(source OrgIDSource, memberships MembershipSource, allowedRoles ...string) Stage {
	if len(allowedRoles) == 0 {
		allowedRoles = []string{models.RoleOrganizer, models.RoleAdmin}
	}
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}
	return func(ctx context.Context, rc *Context) error {
		if rc.Account == nil {
			return fmt.Errorf("%w: account not resolved", ErrUnauthenticated)
		}
		orgID := rc.OrgID
		if orgID == uuid.Nil {
			var raw string
			if source.Param != "" {
				raw = rc.PathParams[source.Param]
			}
			if raw == "" && source.Body != "" {
				raw = rc.BodyFields[source.Body]
			}
			if raw == "" {
				return ErrMissingOrgID
			}
			id, err := uuid.Parse(raw)
			if err != nil {
				return fmt.Errorf("%w: invalid organization id", ErrMissingOrgID)
			}
			orgID = id
		}
		role, err := memberships.GetRole(ctx, orgID, rc.Account.ID)
		if err != nil {
			return StoreError(err)
		}
		if role == "" {
			return ErrNotAMember
		}
		if _, ok := allowed[role]; !ok {
			return ErrInsufficientRole
		}
		rc.OrgID = orgID
		return nil
	}
}
