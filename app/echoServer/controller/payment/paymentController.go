package payment

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"librental/app/echoServer/jwtx"
	paymentsvc "librental/service/payment"
)

type Controller struct {
	Svc paymentsvc.Service
	Log *slog.Logger
}

// GET /v1/payments
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context(), jwtx.Caller(c))
	if err != nil {
		h.Log.Error("payment list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/payments/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	row, err := h.Svc.Get(c.Request().Context(), jwtx.Caller(c), id)
	if err != nil {
		if paymentsvc.Code(err) == paymentsvc.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "payment not found"})
		}
		h.Log.Error("payment detail", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, row)
}
