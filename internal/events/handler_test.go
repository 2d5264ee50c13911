package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gatherly/backend/internal/authflow"
	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
)

type fakeTokenVerifier struct {
	byToken map[string]*models.ExternalIdentity
	calls   int
}

func (f *fakeTokenVerifier) Verify(ctx context.Context, token string) (*models.ExternalIdentity, error) {
	f.calls++
	if ident, ok := f.byToken[token]; ok {
		return ident, nil
	}
	return nil, errors.New("invalid token")
}

type fakeAccountSource struct {
	byExternalID map[string]*models.Account
}

func (f *fakeAccountSource) GetByExternalID(ctx context.Context, externalID string) (*models.Account, error) {
	return f.byExternalID[externalID], nil
}

type fakeMembershipSource struct {
	roles map[string]string
}

func (f *fakeMembershipSource) GetRole(ctx context.Context, orgID, accountID uuid.UUID) (string, error) {
	return f.roles[orgID.String()+"|"+accountID.String()], nil
}

type fakeEventStore struct {
	byID map[uuid.UUID]*models.Event
}

func (f *fakeEventStore) Create(ctx context.Context, e *models.Event) error {
	e.ID = uuid.New()
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return f.byID[id], nil
}

func (f *fakeEventStore) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]models.Event, error) {
	var list []models.Event
	for _, e := range f.byID {
		if e.OrganizationID == orgID {
			list = append(list, *e)
		}
	}
	return list, nil
}

func (f *fakeEventStore) Update(ctx context.Context, e *models.Event) error {
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventStore) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

type scenario struct {
	router       *gin.Engine
	verifier     *fakeTokenVerifier
	events       *fakeEventStore
	attendees    *fakeAttendees
	reservations *fakeReservations
	memberships  *fakeMembershipSource
	accounts     *fakeAccountSource
	orgID        uuid.UUID
}

// newScenario wires the real middleware and handlers over in-memory fakes:
// three accounts behind bearer tokens, one organization where only
// account-a holds the organizer role.
func newScenario(t *testing.T) *scenario {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	orgID := uuid.New()
	accountA := &models.Account{ID: uuid.New(), ExternalID: "ext-a", Email: "a@example.com"}
	accountB := &models.Account{ID: uuid.New(), ExternalID: "ext-b", Email: "b@example.com"}
	accountC := &models.Account{ID: uuid.New(), ExternalID: "ext-c", Email: "c@example.com"}

	s := &scenario{
		orgID: orgID,
		verifier: &fakeTokenVerifier{byToken: map[string]*models.ExternalIdentity{
			"token-a":        {ID: "ext-a", Email: accountA.Email},
			"token-b":        {ID: "ext-b", Email: accountB.Email},
			"token-c":        {ID: "ext-c", Email: accountC.Email},
			"token-unlinked": {ID: "ext-unlinked"},
		}},
		accounts: &fakeAccountSource{byExternalID: map[string]*models.Account{
			"ext-a": accountA,
			"ext-b": accountB,
			"ext-c": accountC,
		}},
		memberships: &fakeMembershipSource{roles: map[string]string{
			orgID.String() + "|" + accountA.ID.String(): models.RoleOrganizer,
		}},
		events:       &fakeEventStore{byID: make(map[uuid.UUID]*models.Event)},
		attendees:    &fakeAttendees{byID: make(map[uuid.UUID]*models.Attendee)},
		reservations: newFakeReservations(),
	}

	reserver := NewReserver(s.events, s.attendees, s.reservations)
	handler := NewHandler(s.events, reserver, logger)

	router := gin.New()
	api := router.Group("")
	api.Use(middleware.Authenticate(s.verifier, s.accounts, logger))
	api.POST("/events",
		middleware.RequireOrgRole(authflow.OrgIDSource{Body: "organization_id"}, s.memberships, logger,
			models.RoleOrganizer, models.RoleAdmin),
		handler.Create)
	api.PUT("/events/:id",
		RequireEventOrgRole(s.events, s.memberships, logger, models.RoleOrganizer, models.RoleAdmin),
		handler.Update)
	api.POST("/events/:id/rsvp", handler.RSVP)
	s.router = router
	return s
}

func (s *scenario) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *scenario) addAttendee(owner *models.Account, first, last string) *models.Attendee {
	a := &models.Attendee{ID: uuid.New(), AccountID: owner.ID, FirstName: first, LastName: last}
	s.attendees.byID[a.ID] = a
	return a
}

func eventPayload(orgID uuid.UUID) map[string]interface{} {
	return map[string]interface{}{
		"organization_id": orgID.String(),
		"title":           "Summer Meetup",
		"start_time":      "2026-06-01T18:00:00Z",
		"end_time":        "2026-06-01T21:00:00Z",
		"location":        "Main Hall",
		"capacity":        100,
	}
}

func TestCreateEventRequiresCredentials(t *testing.T) {
	s := newScenario(t)

	t.Run("missing header", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/events", "", eventPayload(s.orgID))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header skips provider", func(t *testing.T) {
		before := s.verifier.calls
		w := s.do(t, http.MethodPost, "/events", "token-a", eventPayload(s.orgID))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, before, s.verifier.calls)
	})

	t.Run("rejected token", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/events", "Bearer bogus", eventPayload(s.orgID))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token without linked account", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/events", "Bearer token-unlinked", eventPayload(s.orgID))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestCreateEventRoleChecks(t *testing.T) {
	s := newScenario(t)

	t.Run("organizer succeeds", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/events", "Bearer token-a", eventPayload(s.orgID))
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("non-member fails with the same payload", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/events", "Bearer token-b", eventPayload(s.orgID))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "not a member")
	})

	t.Run("missing organization id", func(t *testing.T) {
		payload := eventPayload(s.orgID)
		delete(payload, "organization_id")
		w := s.do(t, http.MethodPost, "/events", "Bearer token-a", payload)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUpdateEventResolvesOrgFromEvent(t *testing.T) {
	s := newScenario(t)
	w := s.do(t, http.MethodPost, "/events", "Bearer token-a", eventPayload(s.orgID))
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data models.Event `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	update := map[string]interface{}{
		"title":      "Summer Meetup (moved)",
		"start_time": "2026-06-02T18:00:00Z",
		"location":   "Annex",
	}

	w = s.do(t, http.MethodPut, "/events/"+created.Data.ID.String(), "Bearer token-b", update)
	assert.Equal(t, http.StatusForbidden, w.Code, "non-member cannot update")

	w = s.do(t, http.MethodPut, "/events/"+created.Data.ID.String(), "Bearer token-a", update)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRSVPFlow(t *testing.T) {
	s := newScenario(t)

	// Organizer A creates event E in org O.
	w := s.do(t, http.MethodPost, "/events", "Bearer token-a", eventPayload(s.orgID))
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data models.Event `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	eventID := created.Data.ID

	// B (no membership in O) owns attendee profile P.
	accountB := s.accounts.byExternalID["ext-b"]
	profile := s.addAttendee(accountB, "Pat", "Lee")

	rsvp := map[string]interface{}{
		"attendee_id": profile.ID.String(),
		"status":      "going",
		"guests":      1,
	}

	// Membership is not required to RSVP.
	w = s.do(t, http.MethodPost, fmt.Sprintf("/events/%s/rsvp", eventID), "Bearer token-b", rsvp)
	require.Equal(t, http.StatusCreated, w.Code)
	var first struct {
		Data models.Reservation `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	assert.Equal(t, eventID, first.Data.EventID)
	assert.Equal(t, profile.ID, first.Data.AttendeeID)
	assert.Equal(t, models.StatusGoing, first.Data.Status)
	assert.Equal(t, 1, first.Data.Guests)

	// Repeating the identical call returns the same reservation unchanged.
	w = s.do(t, http.MethodPost, fmt.Sprintf("/events/%s/rsvp", eventID), "Bearer token-b", rsvp)
	require.Equal(t, http.StatusCreated, w.Code)
	var second struct {
		Data models.Reservation `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.Equal(t, first.Data.EventID, second.Data.EventID)
	assert.Equal(t, first.Data.AttendeeID, second.Data.AttendeeID)
	assert.Equal(t, first.Data.Status, second.Data.Status)
	assert.Equal(t, first.Data.Guests, second.Data.Guests)
	assert.Len(t, s.reservations.rows, 1, "no duplicate row for the same (event, attendee)")

	// C cannot RSVP with B's attendee profile.
	w = s.do(t, http.MethodPost, fmt.Sprintf("/events/%s/rsvp", eventID), "Bearer token-c",
		map[string]interface{}{"attendee_id": profile.ID.String(), "status": "going", "guests": 0})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "does not belong")
}

func TestRSVPValidation(t *testing.T) {
	s := newScenario(t)
	w := s.do(t, http.MethodPost, "/events", "Bearer token-a", eventPayload(s.orgID))
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data models.Event `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	eventID := created.Data.ID

	accountB := s.accounts.byExternalID["ext-b"]
	profile := s.addAttendee(accountB, "Pat", "Lee")

	t.Run("missing attendee_id", func(t *testing.T) {
		w := s.do(t, http.MethodPost, fmt.Sprintf("/events/%s/rsvp", eventID), "Bearer token-b",
			map[string]interface{}{"status": "going"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown attendee", func(t *testing.T) {
		w := s.do(t, http.MethodPost, fmt.Sprintf("/events/%s/rsvp", eventID), "Bearer token-b",
			map[string]interface{}{"attendee_id": uuid.NewString()})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid status", func(t *testing.T) {
		w := s.do(t, http.MethodPost, fmt.Sprintf("/events/%s/rsvp", eventID), "Bearer token-b",
			map[string]interface{}{"attendee_id": profile.ID.String(), "status": "attending"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("negative guests", func(t *testing.T) {
		guests := -1
		w := s.do(t, http.MethodPost, fmt.Sprintf("/events/%s/rsvp", eventID), "Bearer token-b",
			map[string]interface{}{"attendee_id": profile.ID.String(), "guests": guests})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown event", func(t *testing.T) {
		w := s.do(t, http.MethodPost, fmt.Sprintf("/events/%s/rsvp", uuid.New()), "Bearer token-b",
			map[string]interface{}{"attendee_id": profile.ID.String()})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
