package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	authmw "github.com/Skotchmaster/rent_system/pkg/middleware/auth"
)

type Deps struct {
	AuthHandler *AuthHTTP
	Verifier    authmw.Verifier
	DB          *gorm.DB
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

	e.POST("/register", d.AuthHandler.Register)
	e.POST("/login", d.AuthHandler.Login)
	e.POST("/refresh", d.AuthHandler.Refresh)
	e.POST("/logout", d.AuthHandler.LogOut)
	e.POST("/revoke", d.AuthHandler.Revoke)

	private := e.Group("", authMW.RequireAuth)
	private.POST("/logout-all", d.AuthHandler.LogOutAll)
	private.GET("/me", d.AuthHandler.Me)
	private.PATCH("/me", d.AuthHandler.UpdateMe)
	private.DELETE("/me", d.AuthHandler.DeleteMe)
}
