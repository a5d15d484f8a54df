package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	apperrors "formbuilder/internal/errors"
	"formbuilder/internal/logging"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "validation",
			err:        apperrors.Validation("title is required"),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"title is required","code":"VALIDATION_ERROR"}`,
		},
		{
			name:       "not found",
			err:        apperrors.ErrTemplateNotFound,
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"template not found","code":"NOT_FOUND"}`,
		},
		{
			name:       "internal cause hidden",
			err:        apperrors.Internal("list templates", errors.New("connection reset")),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"internal server error","code":"INTERNAL_ERROR"}`,
		},
		{
			name:       "echo http error",
			err:        echo.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"Not Found","code":"NOT_FOUND"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/x", nil), rec)

			HTTPErrorHandler(logging.NewWithWriter(&logs, "debug"))(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			if tt.wantStatus >= http.StatusInternalServerError {
				assert.Contains(t, logs.String(), "connection reset")
			}
		})
	}
}
