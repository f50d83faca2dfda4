package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/rent_system/pkg/logging"
	"github.com/Skotchmaster/rent_system/pkg/tokens"
)

const CtxIdentity = "identity"

type Verifier interface {
	Verify(token string) (tokens.Identity, error)
}

type BearerAuth struct {
	Verifier Verifier
}

func NewBearerAuth(v Verifier) *BearerAuth {
	return &BearerAuth{Verifier: v}
}

// RequireAuth verifies the Authorization bearer token and stores the caller's
// identity in the echo context.
func (m *BearerAuth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := BearerToken(c.Request())
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		id, err := m.Verifier.Verify(raw)
		if err != nil {
			logging.FromContext(c.Request().Context()).Warn("auth_failed", "status", 401, "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		c.Set(CtxIdentity, id)
		ctx := logging.IntoContext(c.Request().Context(),
			logging.FromContext(c.Request().Context()).With("user_id", id.ID.String()))
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(allowed ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing identity")
			}
			if !id.HasAnyRole(allowed...) {
				return echo.NewHTTPError(http.StatusForbidden, "you don't have enough rights for this action")
			}
			return next(c)
		}
	}
}

func IdentityFrom(c echo.Context) (tokens.Identity, bool) {
	id, ok := c.Get(CtxIdentity).(tokens.Identity)
	return id, ok
}

func BearerToken(r *http.Request) string {
	h := r.Header.Get(echo.HeaderAuthorization)
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
