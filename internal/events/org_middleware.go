package events

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gatherly/backend/internal/authflow"
	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/pkg/response"
)

// RequireEventOrgRole gates mutating event routes whose organization is not
// in the request itself: it loads the event from the path id and checks the
// caller's role in the owning organization. Call after Authenticate.
func RequireEventOrgRole(store Store, memberships authflow.MembershipSource, logger *zap.Logger, allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			response.BadRequest(c, "invalid event id")
			c.Abort()
			return
		}
		e, err := store.GetByID(c.Request.Context(), id)
		if err != nil {
			middleware.Abort(c, logger, authflow.StoreError(err))
			return
		}
		if e == nil {
			response.NotFound(c, "event not found")
			c.Abort()
			return
		}
		rc := middleware.PipelineContext(c)
		rc.OrgID = e.OrganizationID
		err = authflow.Run(c.Request.Context(), rc,
			authflow.RequireOrgRole(authflow.OrgIDSource{}, memberships, allowedRoles...),
		)
		if err != nil {
			middleware.Abort(c, logger, err)
			return
		}
		c.Set(middleware.ContextOrgID, rc.OrgID)
		c.Next()
	}
}
