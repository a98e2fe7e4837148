package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/practicewell/practicewell/internal/platform/auth"
	"github.com/practicewell/practicewell/internal/platform/db"
)

// Audit logs every mutating API request with the acting user, tenant, and
// outcome. Chart access is PHI, so the trail is mandatory even when request
// logging is dialed down.
func Audit(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			method := c.Request().Method
			if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
				return err
			}

			ctx := c.Request().Context()
			rid, _ := c.Get("request_id").(string)

			logger.Info().
				Str("request_id", rid).
				Str("user_id", auth.UserIDFromContext(ctx)).
				Strs("roles", auth.RolesFromContext(ctx)).
				Str("tenant", db.TenantFromContext(ctx)).
				Str("method", method).
				Str("path", c.Request().URL.Path).
				Int("status", c.Response().Status).
				Time("at", time.Now()).
				Msg("audit")

			return err
		}
	}
}
