package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/edu-leads/internal/middleware"
	"github.com/iliyamo/edu-leads/internal/model"
	"github.com/iliyamo/edu-leads/internal/service"
)

// AuthService is the part of *service.AuthService the handlers use.
type AuthService interface {
	Login(ctx context.Context, username, password string) (service.Session, error)
	Logout(ctx context.Context, token string)
	ProvisionAdmin(ctx context.Context, in service.ProvisionInput) (model.Admin, error)
	TokenTTL() time.Duration
}

// AuthHandler bundles dependencies for the admin session endpoints.
type AuthHandler struct {
	Auth         AuthService
	CookieSecure bool
}

func NewAuthHandler(auth AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Auth: auth, CookieSecure: cookieSecure}
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login sets the session cookie. The token is never part of the body.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	sess, err := h.Auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	c.SetCookie(h.cookie(sess.Token, int(h.Auth.TokenTTL()/time.Second), sess.ExpiresAt))
	return c.JSON(http.StatusOK, echo.Map{"admin": sess.Admin})
}

// Verify returns the principal of the current session. It runs behind
// middleware.SessionAuth.
func (h *AuthHandler) Verify(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated", "message": "authentication required"})
	}
	return c.JSON(http.StatusOK, echo.Map{"admin": p})
}

// Logout always clears the cookie, with or without a valid session.
func (h *AuthHandler) Logout(c echo.Context) error {
	if ck, err := c.Cookie(middleware.SessionCookie); err == nil && ck.Value != "" {
		h.Auth.Logout(c.Request().Context(), ck.Value)
	}
	c.SetCookie(h.cookie("", -1, time.Unix(0, 0)))
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Create provisions an admin. It is only routed when provisioning is
// enabled in configuration.
func (h *AuthHandler) Create(c echo.Context) error {
	var req service.ProvisionInput
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	admin, err := h.Auth.ProvisionAdmin(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"admin": admin})
}

func (h *AuthHandler) cookie(value string, maxAge int, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
