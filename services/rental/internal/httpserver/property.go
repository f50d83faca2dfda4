package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/rent_system/pkg/logging"
	"github.com/Skotchmaster/rent_system/services/rental/internal/service"
	"github.com/Skotchmaster/rent_system/services/rental/internal/transport"
	"github.com/Skotchmaster/rent_system/services/rental/internal/util"
)

type PropertyHTTP struct {
	Svc *service.PropertyService
}

func (h *PropertyHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "property.get")

	id, err := parseID(c, l, "get_property_error", "id")
	if err != nil {
		return err
	}

	p, err := h.Svc.Get(ctx, id)
	if err != nil {
		return fail(l, "get_property_error", err)
	}
	return c.JSON(http.StatusOK, p)
}

// List returns a page of properties, or all properties of one owner when
// owner_id is given.
func (h *PropertyHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "property.list")

	if raw := c.QueryParam("owner_id"); raw != "" {
		ownerID, err := uuid.Parse(raw)
		if err != nil {
			l.Warn("list_properties_error", "status", 400, "reason", "owner_id is not a uuid", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "owner_id is not a uuid")
		}
		items, err := h.Svc.ListByOwner(ctx, ownerID)
		if err != nil {
			return fail(l, "list_properties_error", err)
		}
		return c.JSON(http.StatusOK, echo.Map{"data": items})
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.List(ctx, offset, limit)
	if err != nil {
		return fail(l, "list_properties_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items, "meta": util.Meta(page, offset, limit, total)})
}

func (h *PropertyHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "property.search")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.SearchProperties(ctx, c.QueryParam("q"), offset, limit)
	if err != nil {
		return fail(l, "search_properties_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items, "meta": util.Meta(page, offset, limit, total)})
}

func (h *PropertyHTTP) OwnerStats(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "property.owner_stats")

	who, err := identity(c)
	if err != nil {
		return err
	}

	st, err := h.Svc.OwnerStats(ctx, who)
	if err != nil {
		return fail(l, "owner_stats_error", err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *PropertyHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "property.create")

	who, err := identity(c)
	if err != nil {
		return err
	}

	var req transport.CreatePropertyRequest
	if err := bindAndValidate(c, l, "create_property_error", &req); err != nil {
		return err
	}

	p, err := h.Svc.Create(ctx, who, req)
	if err != nil {
		return fail(l, "create_property_error", err)
	}

	l.Info("create_property_success", "property_id", p.ID.String())
	return c.JSON(http.StatusCreated, p)
}

func (h *PropertyHTTP) Patch(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "property.patch")

	who, err := identity(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, l, "patch_property_error", "id")
	if err != nil {
		return err
	}

	var req transport.PatchPropertyRequest
	if err := bindAndValidate(c, l, "patch_property_error", &req); err != nil {
		return err
	}

	p, err := h.Svc.Patch(ctx, who, id, req)
	if err != nil {
		return fail(l, "patch_property_error", err)
	}

	l.Info("patch_property_success")
	return c.JSON(http.StatusOK, p)
}

func (h *PropertyHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "property.delete")

	who, err := identity(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, l, "delete_property_error", "id")
	if err != nil {
		return err
	}

	if err := h.Svc.Delete(ctx, who, id); err != nil {
		return fail(l, "delete_property_error", err)
	}

	l.Info("delete_property_success")
	return c.NoContent(http.StatusNoContent)
}
