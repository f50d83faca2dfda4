package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/rent_system/gateway/internal/middleware"
	authmw "github.com/Skotchmaster/rent_system/pkg/middleware/auth"
)

type Deps struct {
	AuthURL   string
	RentalURL string

	// Verifier enables the bearer precheck on mutating rental routes when set.
	Verifier authmw.Verifier
}

func Register(e *echo.Echo, d *Deps) error {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	authProxy, err := newProxy(d.AuthURL, "/api/v1/auth")
	if err != nil {
		return err
	}

	rentalProxy, err := newProxy(d.RentalURL, "/api/v1")
	if err != nil {
		return err
	}

	e.Any("/api/v1/auth/*", authProxy)

	api := e.Group("/api/v1")
	if d.Verifier != nil {
		api.Use(middleware.BearerPrecheck(d.Verifier))
	}

	for _, prefix := range []string{"/properties", "/bookings", "/reviews"} {
		api.Any(prefix, rentalProxy)
		api.Any(prefix+"/*", rentalProxy)
	}

	return nil
}
