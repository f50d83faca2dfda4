package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/rent_system/services/auth/internal/service"
)

func fail(l *slog.Logger, event string, err error) error {
	var (
		code int
		msg  string
	)
	switch {
	case errors.Is(err, service.ErrValidation):
		code, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		code, msg = http.StatusUnauthorized, service.ErrInvalidCredentials.Error()
	case errors.Is(err, service.ErrInvalidRefreshToken):
		code, msg = http.StatusUnauthorized, service.ErrInvalidRefreshToken.Error()
	case errors.Is(err, service.ErrTokenNotFound):
		code, msg = http.StatusNotFound, service.ErrTokenNotFound.Error()
	case errors.Is(err, service.ErrUserNotFound):
		code, msg = http.StatusNotFound, service.ErrUserNotFound.Error()
	case errors.Is(err, service.ErrHasDependents):
		code, msg = http.StatusConflict, service.ErrHasDependents.Error()
	case errors.Is(err, service.ErrConflict):
		code, msg = http.StatusConflict, service.ErrConflict.Error()
	case errors.Is(err, service.ErrAlreadyRevoked):
		code, msg = http.StatusConflict, service.ErrAlreadyRevoked.Error()
	case errors.Is(err, service.ErrStorage):
		code, msg = http.StatusServiceUnavailable, "storage unavailable, retry later"
	default:
		code, msg = http.StatusInternalServerError, "internal error"
	}

	if code >= 500 {
		l.Error(event, "status", code, "reason", msg, "error", err)
	} else {
		l.Warn(event, "status", code, "reason", msg, "error", err)
	}
	return echo.NewHTTPError(code, msg)
}

func bindAndValidate(c echo.Context, l *slog.Logger, event string, req any) error {
	if err := c.Bind(req); err != nil {
		l.Warn(event, "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(req); err != nil {
		l.Warn(event, "status", 400, "reason", "validation failed", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
