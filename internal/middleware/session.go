package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/edu-leads/internal/model"
	"github.com/iliyamo/edu-leads/internal/service"
)

// SessionCookie is the HttpOnly cookie carrying the admin session token.
const SessionCookie = "admin_token"

// Context keys set by SessionAuth.
const (
	ctxPrincipal = "principal"
	ctxUserID    = "user_id"
	ctxRole      = "role"
)

// SessionVerifier is satisfied by *service.AuthService.
type SessionVerifier interface {
	VerifySession(ctx context.Context, token string) (model.Principal, error)
}

// SessionAuth rejects requests without a valid session cookie with 401 and
// otherwise stores the verified principal in the context. Handlers read it
// with PrincipalFrom.
func SessionAuth(v SessionVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var raw string
			if ck, err := c.Cookie(SessionCookie); err == nil {
				raw = ck.Value
			}
			p, err := v.VerifySession(c.Request().Context(), raw)
			if err != nil {
				return unauthorized(c, err)
			}
			c.Set(ctxPrincipal, p)
			c.Set(ctxUserID, p.AdminID)
			c.Set(ctxRole, p.Role)
			return next(c)
		}
	}
}

func unauthorized(c echo.Context, err error) error {
	var se *service.Error
	if errors.As(err, &se) && se.Kind == service.KindAuthentication {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": se.Code(), "message": se.Message})
	}
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated", "message": "authentication required"})
}

// PrincipalFrom returns the principal stored by SessionAuth.
func PrincipalFrom(c echo.Context) (model.Principal, bool) {
	p, ok := c.Get(ctxPrincipal).(model.Principal)
	return p, ok
}
