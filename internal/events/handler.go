package events

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gatherly/backend/internal/authflow"
	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/response"
)

// Store is the event persistence the handler needs; *Repository implements
// it, tests substitute a fake.
type Store interface {
	Create(ctx context.Context, e *models.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]models.Event, error)
	Update(ctx context.Context, e *models.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Handler handles event HTTP endpoints.
type Handler struct {
	store    Store
	reserver *Reserver
	logger   *zap.Logger
}

// NewHandler creates an events handler.
func NewHandler(store Store, reserver *Reserver, logger *zap.Logger) *Handler {
	return &Handler{store: store, reserver: reserver, logger: logger}
}

// CreateRequest is the body for POST /events. The organization_id field is
// also what the route's authorizer reads to decide membership.
type CreateRequest struct {
	OrganizationID string  `json:"organization_id" binding:"required,uuid"`
	Title          string  `json:"title" binding:"required"`
	Description    string  `json:"description"`
	StartTime      string  `json:"start_time" binding:"required"`
	EndTime        *string `json:"end_time"`
	Location       string  `json:"location"`
	Capacity       *int    `json:"capacity"`
}

// UpdateRequest is the body for PUT /events/:id.
type UpdateRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	StartTime   string  `json:"start_time" binding:"required"`
	EndTime     *string `json:"end_time"`
	Location    string  `json:"location"`
	Capacity    *int    `json:"capacity"`
}

// RSVPRequest is the body for POST /events/:id/rsvp.
type RSVPRequest struct {
	AttendeeID string `json:"attendee_id"`
	Status     string `json:"status"`
	Guests     *int   `json:"guests"`
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// Create handles POST /events. Route is gated on organizer/admin role in the
// body's organization.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "organization_id, title and start_time required")
		return
	}
	orgID := c.MustGet(middleware.ContextOrgID).(uuid.UUID)
	startTime, err := parseTime(req.StartTime)
	if err != nil {
		response.BadRequest(c, "invalid start_time")
		return
	}
	var endTime *time.Time
	if req.EndTime != nil {
		t, err := parseTime(*req.EndTime)
		if err != nil {
			response.BadRequest(c, "invalid end_time")
			return
		}
		endTime = &t
	}
	e := &models.Event{
		OrganizationID: orgID,
		Title:          req.Title,
		Description:    req.Description,
		StartTime:      startTime,
		EndTime:        endTime,
		Location:       req.Location,
		Capacity:       req.Capacity,
	}
	if err := h.store.Create(c.Request.Context(), e); err != nil {
		middleware.Abort(c, h.logger, authflow.StoreError(err))
		return
	}
	response.Created(c, e)
}

// GetByID handles GET /events/:id.
func (h *Handler) GetByID(c *gin.Context) {
	e, ok := h.load(c)
	if !ok {
		return
	}
	response.OK(c, e)
}

// ListByOrganization handles GET /organizations/:id/events.
func (h *Handler) ListByOrganization(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	list, err := h.store.ListByOrganization(c.Request.Context(), orgID)
	if err != nil {
		middleware.Abort(c, h.logger, authflow.StoreError(err))
		return
	}
	response.OK(c, list)
}

// Update handles PUT /events/:id. Route is gated on organizer/admin role in
// the event's organization.
func (h *Handler) Update(c *gin.Context) {
	e, ok := h.load(c)
	if !ok {
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "title and start_time required")
		return
	}
	startTime, err := parseTime(req.StartTime)
	if err != nil {
		response.BadRequest(c, "invalid start_time")
		return
	}
	var endTime *time.Time
	if req.EndTime != nil {
		t, err := parseTime(*req.EndTime)
		if err != nil {
			response.BadRequest(c, "invalid end_time")
			return
		}
		endTime = &t
	}
	e.Title = req.Title
	e.Description = req.Description
	e.StartTime = startTime
	e.EndTime = endTime
	e.Location = req.Location
	e.Capacity = req.Capacity
	if err := h.store.Update(c.Request.Context(), e); err != nil {
		middleware.Abort(c, h.logger, authflow.StoreError(err))
		return
	}
	response.OK(c, e)
}

// Delete handles DELETE /events/:id. Same gate as Update.
func (h *Handler) Delete(c *gin.Context) {
	e, ok := h.load(c)
	if !ok {
		return
	}
	if err := h.store.Delete(c.Request.Context(), e.ID); err != nil {
		middleware.Abort(c, h.logger, authflow.StoreError(err))
		return
	}
	response.NoContent(c)
}

// RSVP handles POST /events/:id/rsvp. Requires authentication but no
// organization role: anyone with a linked account may RSVP using an
// attendee profile they own.
func (h *Handler) RSVP(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	account := middleware.Account(c)
	var req RSVPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if req.Status != "" && !models.ValidStatus(req.Status) {
		response.BadRequest(c, "status must be going, maybe or not_going")
		return
	}
	guests := 0
	if req.Guests != nil {
		if *req.Guests < 0 {
			response.BadRequest(c, "guests must be >= 0")
			return
		}
		guests = *req.Guests
	}
	res, err := h.reserver.Reserve(c.Request.Context(), eventID, account, req.AttendeeID, req.Status, guests)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		middleware.Abort(c, h.logger, err)
		return
	}
	response.Created(c, res)
}

func (h *Handler) load(c *gin.Context) (*models.Event, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return nil, false
	}
	e, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		middleware.Abort(c, h.logger, authflow.StoreError(err))
		return nil, false
	}
	if e == nil {
		response.NotFound(c, "event not found")
		return nil, false
	}
	return e, true
}
