package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestMutating(t *testing.T) {
	t.Parallel()

	deny := func(echo.HandlerFunc) echo.HandlerFunc {
		return func(echo.Context) error { return echo.NewHTTPError(http.StatusUnauthorized) }
	}
	h := Mutating(deny)(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	tests := []struct {
		method string
		want   int
	}{
		{http.MethodGet, http.StatusOK},
		{http.MethodHead, http.StatusOK},
		{http.MethodOptions, http.StatusOK},
		{http.MethodPost, http.StatusUnauthorized},
		{http.MethodPut, http.StatusUnauthorized},
		{http.MethodPatch, http.StatusUnauthorized},
		{http.MethodDelete, http.StatusUnauthorized},
	}

	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(tt.method, "/", nil), rec)
			err := h(c)
			if tt.want == http.StatusOK {
				assert.NoError(t, err)
				assert.Equal(t, http.StatusOK, rec.Code)
				return
			}
			var he *echo.HTTPError
			if assert.ErrorAs(t, err, &he) {
				assert.Equal(t, tt.want, he.Code)
			}
		})
	}
}
