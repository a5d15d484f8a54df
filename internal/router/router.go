package router

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"formbuilder/internal/auth"
	"formbuilder/internal/config"
	"formbuilder/internal/handler"
	"formbuilder/internal/logging"
	"formbuilder/internal/middleware"
	"formbuilder/internal/model"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Template *handler.TemplateHandler
	Response *handler.ResponseHandler
	Health   *handler.HealthHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	logger logging.Logger,
	tokenStore auth.TokenStoreInterface,
	sessions middleware.SessionToucher,
	h Handlers,
) {
	e.HTTPErrorHandler = middleware.HTTPErrorHandler(logger)
	e.Validator = NewValidator()

	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/healthz", h.Health.Health)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/forgot-password", h.Auth.ForgotPassword)
	api.POST("/auth/reset-password", h.Auth.ResetPassword)

	// Secured routes (require a live access token)
	secured := api.Group("",
		middleware.JWT([]byte(cfg.JWTSecret)),
		middleware.Identity(tokenStore),
		middleware.TrackSession(sessions, logger),
	)

	secured.POST("/auth/logout", h.Auth.Logout)
	secured.POST("/auth/logout-all", h.Auth.LogoutAll)
	secured.GET("/auth/me", h.Auth.Me)
	secured.POST("/auth/change-password", h.Auth.ChangePassword)
	secured.GET("/auth/sessions", h.Auth.Sessions)

	// Template routes
	secured.POST("/templates", h.Template.Create)
	secured.GET("/templates", h.Template.List)
	secured.GET("/templates/:id", h.Template.Get)
	secured.PUT("/templates/:id", h.Template.Update)
	secured.DELETE("/templates/:id", h.Template.Delete)
	secured.PUT("/templates/:id/reorder", h.Template.Reorder)

	// Response routes
	secured.POST("/templates/:id/responses", h.Response.Submit)
	secured.GET("/templates/:id/responses", h.Response.List)
	secured.GET("/templates/:id/summary", h.Response.Summary)

	// User routes
	secured.GET("/users/profile", h.User.GetProfile)
	secured.PATCH("/users/settings", h.User.UpdateSettings)

	admin := secured.Group("/users/admin", middleware.RequireRole(model.RoleAdmin))
	admin.GET("/users", h.User.ListUsers)
	admin.GET("/users/:id", h.User.GetUser)
	admin.DELETE("/users/:id", h.User.DeleteUser)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns a validator that reports fields by their JSON names.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface. The first failing field becomes the message.
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	return errors.New(describe(verrs[0]))
}

func describe(fe validator.FieldError) string {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "required_if":
		if cond := strings.Fields(fe.Param()); len(cond) == 2 {
			return fmt.Sprintf("%s is required when %s is %s", field, strings.ToLower(cond[0]), cond[1])
		}
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at most %s items", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
	case "min":
		if fe.Param() == "1" {
			return field + " must not be empty"
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s items", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "unique":
		return field + " must not contain duplicates"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		return field + " is invalid"
	}
}

// fieldPath is the namespace without the root struct name, e.g. questions[0].type.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
