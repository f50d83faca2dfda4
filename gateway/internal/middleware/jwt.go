package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/rent_system/pkg/middleware/auth"
)

// Mutating runs mw only for requests that change state. Reads pass straight
// through to the upstream.
func Mutating(mw echo.MiddlewareFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		guarded := mw(next)
		return func(c echo.Context) error {
			switch c.Request().Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
				return guarded(c)
			default:
				return next(c)
			}
		}
	}
}

// BearerPrecheck rejects mutating requests whose access token does not verify.
func BearerPrecheck(v authmw.Verifier) echo.MiddlewareFunc {
	return Mutating(authmw.NewBearerAuth(v).RequireAuth)
}
