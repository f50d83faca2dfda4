package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/rent_system/pkg/logging"
	"github.com/Skotchmaster/rent_system/services/rental/internal/service"
	"github.com/Skotchmaster/rent_system/services/rental/internal/transport"
)

type BookingHTTP struct {
	Svc *service.BookingService
}

func (h *BookingHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "booking.create")

	who, err := identity(c)
	if err != nil {
		return err
	}

	var req transport.CreateBookingRequest
	if err := bindAndValidate(c, l, "create_booking_error", &req); err != nil {
		return err
	}

	b, err := h.Svc.Create(ctx, who, req)
	if err != nil {
		return fail(l, "create_booking_error", err)
	}

	l.Info("create_booking_success", "booking_id", b.ID.String())
	return c.JSON(http.StatusCreated, b)
}

func (h *BookingHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "booking.update")

	who, err := identity(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, l, "update_booking_error", "id")
	if err != nil {
		return err
	}

	var req transport.PatchBookingRequest
	if err := bindAndValidate(c, l, "update_booking_error", &req); err != nil {
		return err
	}

	b, err := h.Svc.Update(ctx, who, id, req)
	if err != nil {
		return fail(l, "update_booking_error", err)
	}

	l.Info("update_booking_success")
	return c.JSON(http.StatusOK, b)
}

func (h *BookingHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "booking.delete")

	who, err := identity(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, l, "delete_booking_error", "id")
	if err != nil {
		return err
	}

	if err := h.Svc.Delete(ctx, who, id); err != nil {
		return fail(l, "delete_booking_error", err)
	}

	l.Info("delete_booking_success")
	return c.NoContent(http.StatusNoContent)
}

func (h *BookingHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "booking.get")

	who, err := identity(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, l, "get_booking_error", "id")
	if err != nil {
		return err
	}

	b, err := h.Svc.Get(ctx, who, id)
	if err != nil {
		return fail(l, "get_booking_error", err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *BookingHTTP) ListMine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "booking.list_mine")

	who, err := identity(c)
	if err != nil {
		return err
	}

	items, err := h.Svc.ListMine(ctx, who)
	if err != nil {
		return fail(l, "list_bookings_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}

func (h *BookingHTTP) ListByProperty(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "booking.list_by_property")

	who, err := identity(c)
	if err != nil {
		return err
	}
	pid, err := parseID(c, l, "list_bookings_error", "id")
	if err != nil {
		return err
	}

	items, err := h.Svc.ListByProperty(ctx, who, pid)
	if err != nil {
		return fail(l, "list_bookings_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}
