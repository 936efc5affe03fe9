package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vlasenko/contacts_api/internal/models"
	"github.com/vlasenko/contacts_api/internal/service"
)

const userContextKey = "currentUser"

// RequireAuth resolves the bearer access token into the current user and
// stores it on the echo context. Any token or identity failure is the same
// generic 401 to the caller.
func RequireAuth(auth *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := BearerToken(c)
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			user, err := auth.CurrentUser(ctx, raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
			}
			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

func CurrentUser(c echo.Context) (*models.User, bool) {
	user, ok := c.Get(userContextKey).(*models.User)
	return user, ok
}

// BearerToken extracts the raw token from the Authorization header, or ""
// when the header is absent or not a bearer scheme.
func BearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
