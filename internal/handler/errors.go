package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/edu-leads/internal/logger"
	"github.com/iliyamo/edu-leads/internal/service"
)

// respondError writes err as {"error": code, "message": text}. Store
// failures are logged with their cause and reported without it.
func respondError(c echo.Context, err error) error {
	var se *service.Error
	if !errors.As(err, &se) {
		logger.Log.WithError(err).WithField("path", c.Path()).Error("unhandled error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal", "message": "internal server error"})
	}
	status := statusFor(se)
	if se.Kind == service.KindStore {
		logger.Log.WithError(se).WithField("path", c.Path()).Error("store failure")
	}
	if se.Retryable() {
		c.Response().Header().Set("Retry-After", "1")
	}
	return c.JSON(status, echo.Map{"error": se.Code(), "message": se.Message})
}

func statusFor(se *service.Error) int {
	switch se.Kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindDuplicate:
		return http.StatusConflict
	case service.KindAuthentication:
		return http.StatusUnauthorized
	case service.KindNotFound:
		return http.StatusNotFound
	}
	if errors.Is(se, service.ErrTimeout) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func badBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_body", "message": "request body must be JSON"})
}
