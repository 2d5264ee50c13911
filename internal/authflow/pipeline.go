// Package authflow is the request authorization pipeline: credential
// verification, identity resolution and organization-role checks, composed
// as an ordered list of stages over a request-scoped context value. The
// composer is transport-agnostic; gin adapters live in internal/middleware.
package authflow

import (
	"context"

	"github.com/google/uuid"

	"github.com/gatherly/backend/internal/models"
)

// Context carries the request-scoped pipeline state. Each request gets a
// fresh instance; nothing is shared across requests. Stages fill in the
// resolved fields for later stages and the terminal handler to consume.
type Context struct {
	// Inputs, populated by the transport adapter.
	AuthHeader string
	PathParams map[string]string
	BodyFields map[string]string

	// Resolved by stages.
	Identity *models.ExternalIdentity
	Account  *models.Account
	OrgID    uuid.UUID
}

// Stage is one step of the pipeline. A stage either updates rc and returns
// nil, or returns a failure that aborts the chain.
type Stage func(ctx context.Context, rc *Context) error

// Run executes stages strictly in order and stops at the first failure.
// No retries, no recovery: the first error is the request's outcome.
func Run(ctx context.Context, rc *Context, stages ...Stage) error {
	for _, stage := range stages {
		if err := stage(ctx, rc); err != nil {
			return err
		}
	}
	return nil
}
