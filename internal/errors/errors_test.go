package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"validation", Validation("title is required"), http.StatusBadRequest, "title is required"},
		{"auth", ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"authz", ErrNotAuthorized, http.StatusForbidden, "not authorized"},
		{"not found", ErrTemplateNotFound, http.StatusNotFound, "template not found"},
		{"wrapped not found", fmt.Errorf("load: %w", ErrUserNotFound), http.StatusNotFound, "user not found"},
		{"internal hides cause", Internal("create template", errors.New("dial tcp: refused")), http.StatusInternalServerError, "internal server error"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantMsg, httpErr.ToErrorResponse().Error)
		})
	}
}

func TestAppError_IsAndUnwrap(t *testing.T) {
	cause := errors.New("deadlock")
	err := Internal("update template", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "update template: deadlock", err.Error())
	assert.Equal(t, KindInternal, KindOf(err))

	assert.ErrorIs(t, Auth("invalid credentials"), ErrInvalidCredentials)
	assert.NotErrorIs(t, ErrNoToken, ErrInvalidCredentials)
	assert.Equal(t, KindAuthz, KindOf(fmt.Errorf("wrap: %w", ErrNotAuthorized)))
}
