package domain

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCreateCookie(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(7 * 24 * time.Hour)
	c := CreateCookie(RefreshCookieName, "tok", DefaultCookiePath, exp)

	assert.Equal(t, "tok", c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.InDelta(t, (7 * 24 * time.Hour).Seconds(), float64(c.MaxAge), 2)
}

func TestDeleteCookie(t *testing.T) {
	t.Parallel()

	c := DeleteCookie(RefreshCookieName, DefaultCookiePath)
	assert.Empty(t, c.Value)
	assert.Equal(t, -1, c.MaxAge)
	assert.Equal(t, DefaultCookiePath, c.Path)
}
