package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	UserIDHeader = "X-User-Id"
	userIDKey    = "user_id"
)

// RequireUser takes the shopper identity from the X-User-Id header set by the
// storefront's auth layer and rejects requests that carry none.
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := strings.TrimSpace(c.Request().Header.Get(UserIDHeader))
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing X-User-Id header")
			}
			c.Set(userIDKey, userID)
			return next(c)
		}
	}
}

func UserID(c echo.Context) string {
	userID, _ := c.Get(userIDKey).(string)
	return userID
}
