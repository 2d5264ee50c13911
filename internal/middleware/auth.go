package middleware

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gatherly/backend/internal/authflow"
	"github.com/gatherly/backend/internal/models"
)

const (
	// ContextIdentity is the gin context key for the verified external identity.
	ContextIdentity = "external_identity"
	// ContextAccount is the gin context key for the resolved account.
	ContextAccount = "account"
	// ContextOrgID is the gin context key for the authorized organization ID.
	ContextOrgID = "organization_id"
)

// Account returns the resolved account from the gin context. Panics if
// Authenticate did not run; handlers behind it may call this freely.
func Account(c *gin.Context) *models.Account {
	return c.MustGet(ContextAccount).(*models.Account)
}

// Authenticate runs the credential-verification and identity-resolution
// stages and attaches the results to the gin context.
func Authenticate(verifier authflow.TokenVerifier, accounts authflow.AccountSource, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc := &authflow.Context{AuthHeader: c.GetHeader("Authorization")}
		err := authflow.Run(c.Request.Context(), rc,
			authflow.VerifyCredential(verifier),
			authflow.ResolveAccount(accounts),
		)
		if err != nil {
			Abort(c, logger, err)
			return
		}
		c.Set(ContextIdentity, rc.Identity)
		c.Set(ContextAccount, rc.Account)
		c.Next()
	}
}

// RequireOrgRole runs the role-authorization stage for routes whose
// organization id comes from a path parameter or a body field. Call after
// Authenticate. allowedRoles is the exact acceptable set for the action.
func RequireOrgRole(source authflow.OrgIDSource, memberships authflow.MembershipSource, logger *zap.Logger, allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc := PipelineContext(c)
		if source.Body != "" {
			rc.BodyFields = bodyFields(c)
		}
		err := authflow.Run(c.Request.Context(), rc,
			authflow.RequireOrgRole(source, memberships, allowedRoles...),
		)
		if err != nil {
			Abort(c, logger, err)
			return
		}
		c.Set(ContextOrgID, rc.OrgID)
		c.Next()
	}
}

// PipelineContext builds a fresh pipeline context from the gin request and
// whatever earlier middleware already resolved.
func PipelineContext(c *gin.Context) *authflow.Context {
	rc := &authflow.Context{
		AuthHeader: c.GetHeader("Authorization"),
		PathParams: make(map[string]string, len(c.Params)),
	}
	for _, p := range c.Params {
		rc.PathParams[p.Key] = p.Value
	}
	if v, ok := c.Get(ContextIdentity); ok {
		rc.Identity = v.(*models.ExternalIdentity)
	}
	if v, ok := c.Get(ContextAccount); ok {
		rc.Account = v.(*models.Account)
	}
	return rc
}

// bodyFields reads the request body non-destructively and returns its
// top-level string fields, so the authorizer can pick an organization id out
// of the payload before the handler binds it.
func bodyFields(c *gin.Context) map[string]string {
	fields := make(map[string]string)
	raw, err := c.GetRawData()
	if err != nil || len(raw) == 0 {
		return fields
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(raw))
	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		return fields
	}
	for k, v := range body {
		if s, ok := v.(string); ok {
			fields[k] = s
		}
	}
	return fields
}
