package middleware

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"formbuilder/internal/logging"
)

// RequestLogger writes one structured access log line per request.
func RequestLogger(logger logging.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			args := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency.String(),
				"request_id", v.RequestID,
			}
			ctx := c.Request().Context()
			if v.Error != nil {
				logger.Warn(ctx, "request", append(args, "error", v.Error.Error())...)
				return nil
			}
			logger.Info(ctx, "request", args...)
			return nil
		},
	})
}
