package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/gatherly/backend/internal/authflow"
)

// Every failure kind must map to exactly one outward status; nothing falls
// through to 500 except store faults.
func TestAbortMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err  error
		code int
	}{
		{authflow.ErrUnauthenticated, http.StatusUnauthorized},
		{authflow.ErrIdentityNotLinked, http.StatusForbidden},
		{authflow.ErrMissingOrgID, http.StatusBadRequest},
		{authflow.ErrNotAMember, http.StatusForbidden},
		{authflow.ErrInsufficientRole, http.StatusForbidden},
		{authflow.ErrMissingAttendee, http.StatusBadRequest},
		{authflow.ErrAttendeeNotFound, http.StatusNotFound},
		{authflow.ErrNotOwner, http.StatusForbidden},
		{authflow.StoreError(errors.New("down")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			Abort(c, zap.NewNop(), tc.err)
			assert.Equal(t, tc.code, w.Code)
			assert.True(t, c.IsAborted())
		})
	}
}

// Wrapped kinds keep their mapping.
func TestAbortMatchesWrappedErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	wrapped := errors.Join(authflow.ErrUnauthenticated, errors.New("malformed credential"))
	Abort(c, zap.NewNop(), wrapped)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
