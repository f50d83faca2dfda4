package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	authmw "github.com/Skotchmaster/rent_system/pkg/middleware/auth"
)

const (
	RoleRenter = "renter"
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
)

type Deps struct {
	Bookings   *BookingHTTP
	Properties *PropertyHTTP
	Reviews    *ReviewHTTP
	Verifier   authmw.Verifier
	DB         *gorm.DB
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		sqlDB, err := d.DB.DB()
		if err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second)
		defer cancel()
		if err := sqlDB.PingContext(ctx); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	authMW := authmw.NewBearerAuth(d.Verifier)

	properties := e.Group("/properties")
	properties.GET("", d.Properties.List)
	properties.GET("/search", d.Properties.Search)
	properties.GET("/:id", d.Properties.Get)
	properties.GET("/:id/reviews", d.Reviews.ListByProperty)

	ownerOnly := properties.Group("", authMW.RequireAuth)
	ownerOnly.POST("", d.Properties.Create, authmw.RequireRole(RoleOwner, RoleAdmin))
	ownerOnly.GET("/stats", d.Properties.OwnerStats, authmw.RequireRole(RoleOwner, RoleAdmin))
	ownerOnly.PATCH("/:id", d.Properties.Patch)
	ownerOnly.DELETE("/:id", d.Properties.Delete)
	ownerOnly.GET("/:id/bookings", d.Bookings.ListByProperty, authmw.RequireRole(RoleOwner, RoleAdmin))
	ownerOnly.POST("/:id/reviews", d.Reviews.Create)

	bookings := e.Group("/bookings", authMW.RequireAuth)
	bookings.POST("", d.Bookings.Create, authmw.RequireRole(RoleRenter, RoleAdmin))
	bookings.GET("/my", d.Bookings.ListMine)
	bookings.GET("/:id", d.Bookings.Get)
	bookings.PATCH("/:id", d.Bookings.Update)
	bookings.DELETE("/:id", d.Bookings.Delete)

	reviews := e.Group("/reviews")
	reviews.GET("/user/:id", d.Reviews.ListByUser)
	reviews.PATCH("/:id", d.Reviews.Patch, authMW.RequireAuth)
	reviews.DELETE("/:id", d.Reviews.Delete, authMW.RequireAuth)
}
