package middleware

// identity.go holds the context key shared by the auth middleware, the
// rate limiter and the handlers.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const userIDKey = "user_id"

func setUserID(c echo.Context, id uint64) { c.Set(userIDKey, id) }

// UserID returns the authenticated caller.  It reports false for
// anonymous requests.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(userIDKey).(uint64)
	return id, ok && id != 0
}

// userKey renders the caller for rate limit keys; "anon" when the request
// is not authenticated.
func userKey(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
