package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gatherly/backend/internal/authflow"
	"github.com/gatherly/backend/pkg/response"
)

// Abort translates a pipeline failure into its HTTP response and stops the
// chain. The mapping is total over the failure taxonomy; anything unmatched
// is treated like a store fault. Store faults are the only kind logged at
// error level, the rest are normal client outcomes.
func Abort(c *gin.Context, logger *zap.Logger, err error) {
	defer c.Abort()
	switch {
	case errors.Is(err, authflow.ErrUnauthenticated):
		response.Unauthorized(c, err.Error())
	case errors.Is(err, authflow.ErrIdentityNotLinked):
		response.Forbidden(c, err.Error())
	case errors.Is(err, authflow.ErrMissingOrgID):
		response.BadRequest(c, err.Error())
	case errors.Is(err, authflow.ErrNotAMember):
		response.Forbidden(c, err.Error())
	case errors.Is(err, authflow.ErrInsufficientRole):
		response.Forbidden(c, err.Error())
	case errors.Is(err, authflow.ErrMissingAttendee):
		response.BadRequest(c, err.Error())
	case errors.Is(err, authflow.ErrAttendeeNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, authflow.ErrNotOwner):
		response.Forbidden(c, err.Error())
	default:
		logger.Error("store failure", zap.Error(err))
		response.Internal(c, "internal error")
	}
}
