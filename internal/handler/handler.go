package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"formbuilder/internal/auth"
	"formbuilder/internal/errors"
	"formbuilder/internal/middleware"
)

// MessageResponse is returned by endpoints that have nothing else to report.
type MessageResponse struct {
	Message string `json:"message"`
}

// toHTTPError converts a service error into an echo error carrying ErrorResponse.
func toHTTPError(err error) error {
	mapped := errors.MapErrorToHTTP(err)
	httpErr := echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse())
	if mapped.StatusCode >= http.StatusInternalServerError {
		return httpErr.SetInternal(err)
	}
	return httpErr
}

func badRequest(message string) error {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: message,
		Code:  "VALIDATION_ERROR",
	})
}

// bindAndValidate decodes the request body into req and runs the struct validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return badRequest(err.Error())
	}
	return nil
}

func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, badRequest("invalid " + name)
	}
	return uint(id), nil
}

func currentIdentity(c echo.Context) (auth.Identity, error) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return auth.Identity{}, toHTTPError(errors.ErrNotAuthenticated)
	}
	return identity, nil
}
