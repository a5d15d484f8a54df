package errors

import (
	"errors"
	"net/http"
)

// Kind classifies an application error for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindAuthz
	KindNotFound
)

// AppError is the error type returned by services.
type AppError struct {
	Kind    Kind
	Message string
	Code    string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil && e.Kind == KindInternal {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches two AppErrors of the same kind and code, so sentinels work with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code && e.Message == t.Message
}

// Validation builds a ValidationError (400).
func Validation(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Code: "VALIDATION_ERROR"}
}

// Auth builds an AuthError (401).
func Auth(message string) *AppError {
	return &AppError{Kind: KindAuth, Message: message, Code: "UNAUTHORIZED"}
}

// Authz builds an AuthzError (403).
func Authz(message string) *AppError {
	return &AppError{Kind: KindAuthz, Message: message, Code: "FORBIDDEN"}
}

// NotFound builds a NotFoundError (404).
func NotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message, Code: "NOT_FOUND"}
}

// Internal wraps a store or transport failure (500).
func Internal(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: message, Code: "INTERNAL_ERROR", Err: err}
}

var (
	// ErrInvalidCredentials is returned for both unknown email and wrong password.
	ErrInvalidCredentials = Auth("invalid credentials")
	// ErrNoToken is returned when a protected request carries no bearer token.
	ErrNoToken = Auth("no token")
	// ErrAuthenticationFailed is returned for a bad, expired or revoked token.
	ErrAuthenticationFailed = Auth("authentication failed")
	// ErrNotAuthenticated is returned when a role check runs without an identity.
	ErrNotAuthenticated = Auth("not authenticated")
	// ErrNotAuthorized is returned when the identity lacks a required role.
	ErrNotAuthorized = Authz("not authorized")
	// ErrUserNotFound is returned when a user record is absent.
	ErrUserNotFound = NotFound("user not found")
	// ErrTemplateNotFound is returned when a template is absent or not visible.
	ErrTemplateNotFound = NotFound("template not found")
)

// KindOf returns the kind of err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Internal details never reach the client.
func MapErrorToHTTP(err error) *HTTPError {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
	switch appErr.Kind {
	case KindValidation:
		return NewHTTPError(http.StatusBadRequest, appErr.Message, appErr.Code)
	case KindAuth:
		return NewHTTPError(http.StatusUnauthorized, appErr.Message, appErr.Code)
	case KindAuthz:
		return NewHTTPError(http.StatusForbidden, appErr.Message, appErr.Code)
	case KindNotFound:
		return NewHTTPError(http.StatusNotFound, appErr.Message, appErr.Code)
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
