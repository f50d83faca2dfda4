package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/rent_system/pkg/logging"
	authmw "github.com/Skotchmaster/rent_system/pkg/middleware/auth"
	"github.com/Skotchmaster/rent_system/services/auth/internal/domain"
	"github.com/Skotchmaster/rent_system/services/auth/internal/service"
	"github.com/Skotchmaster/rent_system/services/auth/internal/transport"
)

type AuthHTTP struct {
	Svc        *service.AuthService
	CookiePath string
}

func (h *AuthHTTP) cookiePath() string {
	if h.CookiePath == "" {
		return domain.DefaultCookiePath
	}
	return h.CookiePath
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.RegisterRequest
	if err := bindAndValidate(c, l, "register_error", &req); err != nil {
		return err
	}

	user, err := h.Svc.Register(ctx, req)
	if err != nil {
		return fail(l, "register_error", err)
	}

	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := bindAndValidate(c, l, "login_error", &req); err != nil {
		return err
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "login_failed", err)
	}

	c.SetCookie(domain.CreateCookie(domain.RefreshCookieName, res.RefreshToken, h.cookiePath(), res.RefreshExp))

	return c.JSON(http.StatusOK, transport.TokenResponse{AccessToken: res.AccessToken, ExpiresAt: res.AccessExp})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	cookie, err := c.Cookie(domain.RefreshCookieName)
	if err != nil || cookie.Value == "" {
		l.Warn("refresh_failed", "status", 401, "reason", "no refresh cookie")
		return echo.NewHTTPError(http.StatusUnauthorized, "missing refresh token")
	}

	res, err := h.Svc.Refresh(ctx, cookie.Value)
	if err != nil {
		// Storage failures roll back, so the cookie stays valid for a retry.
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			c.SetCookie(domain.DeleteCookie(domain.RefreshCookieName, h.cookiePath()))
		}
		return fail(l, "refresh_failed", err)
	}

	c.SetCookie(domain.CreateCookie(domain.RefreshCookieName, res.RefreshToken, h.cookiePath(), res.RefreshExp))
	return c.JSON(http.StatusOK, transport.TokenResponse{AccessToken: res.AccessToken, ExpiresAt: res.AccessExp})
}

func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	c.SetCookie(domain.DeleteCookie(domain.RefreshCookieName, h.cookiePath()))

	if cookie, err := c.Cookie(domain.RefreshCookieName); err == nil {
		if err := h.Svc.LogOut(ctx, cookie.Value); err != nil {
			return fail(l, "logout_failed", err)
		}
	}

	l.Info("successful_logout")
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHTTP) Revoke(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_revoke")

	var req transport.RevokeRequest
	if err := bindAndValidate(c, l, "revoke_error", &req); err != nil {
		return err
	}

	if err := h.Svc.Revoke(ctx, req.RefreshToken); err != nil {
		return fail(l, "revoke_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "revoked"})
}

func (h *AuthHTTP) LogOutAll(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout_all")

	who, ok := authmw.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing identity")
	}

	n, err := h.Svc.LogOutAll(ctx, who)
	if err != nil {
		return fail(l, "logout_all_failed", err)
	}

	c.SetCookie(domain.DeleteCookie(domain.RefreshCookieName, h.cookiePath()))
	return c.JSON(http.StatusOK, echo.Map{"revoked": n})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_me")

	who, ok := authmw.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing identity")
	}

	user, err := h.Svc.Me(ctx, who)
	if err != nil {
		return fail(l, "me_failed", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHTTP) UpdateMe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_update_me")

	who, ok := authmw.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing identity")
	}

	var req transport.UpdateProfileRequest
	if err := bindAndValidate(c, l, "update_profile_error", &req); err != nil {
		return err
	}

	user, err := h.Svc.UpdateProfile(ctx, who, req)
	if err != nil {
		return fail(l, "update_profile_failed", err)
	}
	if req.Password != nil {
		c.SetCookie(domain.DeleteCookie(domain.RefreshCookieName, h.cookiePath()))
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHTTP) DeleteMe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_delete_me")

	who, ok := authmw.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing identity")
	}

	if err := h.Svc.DeleteAccount(ctx, who); err != nil {
		return fail(l, "delete_account_failed", err)
	}

	c.SetCookie(domain.DeleteCookie(domain.RefreshCookieName, h.cookiePath()))
	return c.NoContent(http.StatusNoContent)
}
