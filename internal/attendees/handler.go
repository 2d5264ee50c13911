package attendees

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gatherly/backend/internal/authflow"
	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/response"
)

// Handler handles attendee HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates an attendees handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// CreateRequest is the body for POST /attendees.
type CreateRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

// UpdateRequest is the body for PUT /attendees/:id.
type UpdateRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

// Create handles POST /attendees. The profile is owned by the calling
// account; ownership is what the reservation writer later enforces.
func (h *Handler) Create(c *gin.Context) {
	account := middleware.Account(c)
	var body CreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "first_name and last_name required")
		return
	}
	a := &models.Attendee{
		AccountID: account.ID,
		FirstName: strings.TrimSpace(body.FirstName),
		LastName:  strings.TrimSpace(body.LastName),
	}
	if a.FirstName == "" || a.LastName == "" {
		response.BadRequest(c, "first_name and last_name required")
		return
	}
	if err := h.repo.Create(c.Request.Context(), a); err != nil {
		response.Internal(c, "failed to create attendee")
		return
	}
	response.Created(c, a)
}

// GetByID handles GET /attendees/:id.
func (h *Handler) GetByID(c *gin.Context) {
	a, ok := h.load(c)
	if !ok {
		return
	}
	response.OK(c, a)
}

// Update handles PUT /attendees/:id. Owner only.
func (h *Handler) Update(c *gin.Context) {
	a, ok := h.loadOwned(c)
	if !ok {
		return
	}
	var body UpdateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "first_name and last_name required")
		return
	}
	a.FirstName = strings.TrimSpace(body.FirstName)
	a.LastName = strings.TrimSpace(body.LastName)
	if err := h.repo.Update(c.Request.Context(), a); err != nil {
		response.Internal(c, "failed to update attendee")
		return
	}
	response.OK(c, a)
}

// Delete handles DELETE /attendees/:id. Owner only.
func (h *Handler) Delete(c *gin.Context) {
	a, ok := h.loadOwned(c)
	if !ok {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), a.ID); err != nil {
		response.Internal(c, "failed to delete attendee")
		return
	}
	response.NoContent(c)
}

func (h *Handler) load(c *gin.Context) (*models.Attendee, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid attendee id")
		return nil, false
	}
	a, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		middleware.Abort(c, h.logger, authflow.StoreError(err))
		return nil, false
	}
	if a == nil {
		response.NotFound(c, "attendee not found")
		return nil, false
	}
	return a, true
}

func (h *Handler) loadOwned(c *gin.Context) (*models.Attendee, bool) {
	a, ok := h.load(c)
	if !ok {
		return nil, false
	}
	if a.AccountID != middleware.Account(c).ID {
		middleware.Abort(c, h.logger, authflow.ErrNotOwner)
		return nil, false
	}
	return a, true
}
