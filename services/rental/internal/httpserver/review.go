package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/rent_system/pkg/logging"
	"github.com/Skotchmaster/rent_system/services/rental/internal/service"
	"github.com/Skotchmaster/rent_system/services/rental/internal/transport"
)

type ReviewHTTP struct {
	Svc *service.ReviewService
}

func (h *ReviewHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.create")

	who, err := identity(c)
	if err != nil {
		return err
	}
	pid, err := parseID(c, l, "create_review_error", "id")
	if err != nil {
		return err
	}

	var req transport.CreateReviewRequest
	if err := bindAndValidate(c, l, "create_review_error", &req); err != nil {
		return err
	}

	rv, err := h.Svc.Create(ctx, who, pid, req)
	if err != nil {
		return fail(l, "create_review_error", err)
	}
	return c.JSON(http.StatusCreated, rv)
}

func (h *ReviewHTTP) Patch(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.patch")

	who, err := identity(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, l, "patch_review_error", "id")
	if err != nil {
		return err
	}

	var req transport.PatchReviewRequest
	if err := bindAndValidate(c, l, "patch_review_error", &req); err != nil {
		return err
	}

	rv, err := h.Svc.Patch(ctx, who, id, req)
	if err != nil {
		return fail(l, "patch_review_error", err)
	}
	return c.JSON(http.StatusOK, rv)
}

func (h *ReviewHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.delete")

	who, err := identity(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, l, "delete_review_error", "id")
	if err != nil {
		return err
	}

	if err := h.Svc.Delete(ctx, who, id); err != nil {
		return fail(l, "delete_review_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ReviewHTTP) ListByProperty(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.list_by_property")

	pid, err := parseID(c, l, "list_reviews_error", "id")
	if err != nil {
		return err
	}

	items, err := h.Svc.ListByProperty(ctx, pid)
	if err != nil {
		return fail(l, "list_reviews_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}

func (h *ReviewHTTP) ListByUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.list_by_user")

	uid, err := parseID(c, l, "list_reviews_error", "id")
	if err != nil {
		return err
	}

	items, err := h.Svc.ListByUser(ctx, uid)
	if err != nil {
		return fail(l, "list_reviews_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}
