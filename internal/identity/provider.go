// Package identity verifies opaque bearer tokens against the external
// identity provider and maps them to stable external identities.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/gatherly/backend/internal/models"
)

// Verifier validates an opaque access token and returns the external
// identity it belongs to.
type Verifier interface {
	Verify(ctx context.Context, token string) (*models.ExternalIdentity, error)
}

// ProviderVerifier verifies tokens by calling the provider's UserInfo
// endpoint. Every call re-verifies; wrap with NewCachedVerifier to cache
// successful results.
type ProviderVerifier struct {
	provider *oidc.Provider
}

// NewProviderVerifier discovers the issuer's endpoints and returns a
// verifier bound to it.
func NewProviderVerifier(ctx context.Context, issuerURL string) (*ProviderVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("discover identity provider: %w", err)
	}
	return &ProviderVerifier{provider: provider}, nil
}

// Verify asks the provider who the token belongs to. Provider rejections and
// communication faults are not distinguished; the caller collapses both to
// an authentication failure.
func (v *ProviderVerifier) Verify(ctx context.Context, token string) (*models.ExternalIdentity, error) {
	info, err := v.provider.UserInfo(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	if err != nil {
		return nil, fmt.Errorf("userinfo: %w", err)
	}
	if info.Subject == "" {
		return nil, errors.New("userinfo response has no subject")
	}
	return &models.ExternalIdentity{ID: info.Subject, Email: info.Email}, nil
}
