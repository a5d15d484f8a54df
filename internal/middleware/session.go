package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"formbuilder/internal/logging"
)

// SessionToucher records session activity.
type SessionToucher interface {
	TouchSession(ctx context.Context, tokenID string) error
}

// TrackSession marks the caller's session as used. It runs after Identity; a failed
// write is logged and the request goes on.
func TrackSession(sessions SessionToucher, logger logging.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if claims, ok := CurrentClaims(c); ok && claims.ID != "" {
				ctx := c.Request().Context()
				if err := sessions.TouchSession(ctx, claims.ID); err != nil {
					logger.Warn(ctx, "touch session", "token_id", claims.ID, "error", err.Error())
				}
			}
			return next(c)
		}
	}
}
