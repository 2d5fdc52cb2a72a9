package middleware

import "github.com/labstack/echo/v4"

// currentUserID is the authenticated admin's ID, or "anon" on public
// routes. Rate-limit keys use it.
func currentUserID(c echo.Context) string {
	if s, ok := c.Get(ctxUserID).(string); ok && s != "" {
		return s
	}
	return "anon"
}
