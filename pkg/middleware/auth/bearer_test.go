package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/rent_system/pkg/tokens"
)

func newIssuer() *tokens.Issuer {
	return &tokens.Issuer{Secret: []byte("test-jwt-secret"), Issuer: "rent_system", Audience: "clients", TTL: time.Minute}
}

func newEcho(iss *tokens.Issuer, roles ...string) *echo.Echo {
	e := echo.New()
	auth := NewBearerAuth(iss)
	chain := []echo.MiddlewareFunc{auth.RequireAuth}
	if len(roles) > 0 {
		chain = append(chain, RequireRole(roles...))
	}
	e.GET("/me", func(c echo.Context) error {
		id, ok := IdentityFrom(c)
		if !ok {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.String(http.StatusOK, id.ID.String())
	}, chain...)
	return e
}

func do(e *echo.Echo, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authz != "" {
		req.Header.Set(echo.HeaderAuthorization, authz)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	iss := newIssuer()
	uid := uuid.New()
	token, _, err := iss.Issue(tokens.Identity{ID: uid, Roles: []string{"renter"}})
	require.NoError(t, err)

	e := newEcho(iss)

	rec := do(e, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uid.String(), rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do(e, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, "Bearer garbage").Code)
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	iss := newIssuer()
	renter, _, err := iss.Issue(tokens.Identity{ID: uuid.New(), Roles: []string{"renter"}})
	require.NoError(t, err)
	owner, _, err := iss.Issue(tokens.Identity{ID: uuid.New(), Roles: []string{"owner"}})
	require.NoError(t, err)

	e := newEcho(iss, "owner", "admin")

	assert.Equal(t, http.StatusForbidden, do(e, "Bearer "+renter).Code)
	assert.Equal(t, http.StatusOK, do(e, "Bearer "+owner).Code)
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(echo.HeaderAuthorization, "bearer  abc ")
	assert.Equal(t, "abc", BearerToken(r))
}
