package accounts

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/pkg/response"
)

// Handler handles account HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates an accounts handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// Me handles GET /accounts/me. Returns the authenticated caller's account.
func (h *Handler) Me(c *gin.Context) {
	response.OK(c, middleware.Account(c))
}

// GetByID handles GET /accounts/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid account id")
		return
	}
	a, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load account")
		return
	}
	if a == nil {
		response.NotFound(c, "account not found")
		return
	}
	response.OK(c, a)
}
