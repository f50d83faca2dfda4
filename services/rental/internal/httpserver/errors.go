package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/rent_system/pkg/middleware/auth"
	"github.com/Skotchmaster/rent_system/pkg/tokens"
	"github.com/Skotchmaster/rent_system/services/rental/internal/service"
)

// fail logs the service error under event and converts it to an HTTP error.
func fail(l *slog.Logger, event string, err error) error {
	var (
		code int
		msg  string
	)
	switch {
	case errors.Is(err, service.ErrValidation):
		code, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrNotFound):
		code, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrForbidden):
		code, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrConflict):
		code, msg = http.StatusConflict, service.ErrConflict.Error()
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

func parseID(c echo.Context, l *slog.Logger, event, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		l.Warn(event, "status", 400, "reason", name+" is not a uuid", "error", err)
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, name+" is not a uuid")
	}
	return id, nil
}

func identity(c echo.Context) (tokens.Identity, error) {
	id, ok := authmw.IdentityFrom(c)
	if !ok {
		return tokens.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing identity")
	}
	return id, nil
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
