package borrowing

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"librental/app/echoServer/jwtx"
	borrowsvc "librental/service/borrowing"
)

type Controller struct {
	Svc borrowsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/borrowings
func (h *Controller) Create(c echo.Context) error {
	var req CreateBorrowingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	expected, err := time.Parse("2006-01-02", req.ExpectedReturnDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid expected_return_date"})
	}

	row, err := h.Svc.Create(c.Request().Context(), jwtx.Caller(c), req.BookID, expected)
	if err != nil {
		switch borrowsvc.Code(err) {
		case borrowsvc.ErrPastDate:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "expected return date cannot be in the past"})
		case borrowsvc.ErrNotAvailable:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "book is not available for borrowing"})
		case borrowsvc.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		default:
			h.Log.Error("borrowing create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, row)
}

// GET /v1/borrowings?user_id=&is_active=
func (h *Controller) List(c echo.Context) error {
	var q borrowsvc.Query
	if v := c.QueryParam("user_id"); v != "" {
		uid, err := strconv.ParseInt(v, 10, 64)
		if err != nil || uid <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user_id"})
		}
		q.UserID = &uid
	}
	if v := c.QueryParam("is_active"); v != "" {
		active := v == "true"
		q.IsActive = &active
	}

	rows, err := h.Svc.List(c.Request().Context(), jwtx.Caller(c), q)
	if err != nil {
		h.Log.Error("borrowing list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/borrowings/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	row, err := h.Svc.Get(c.Request().Context(), jwtx.Caller(c), id)
	if err != nil {
		if borrowsvc.Code(err) == borrowsvc.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "borrowing not found"})
		}
		h.Log.Error("borrowing detail", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, row)
}

// POST /v1/borrowings/:id/return
func (h *Controller) Return(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	row, err := h.Svc.Return(c.Request().Context(), jwtx.Caller(c), id)
	if err != nil {
		switch borrowsvc.Code(err) {
		case borrowsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "borrowing not found"})
		case borrowsvc.ErrAlreadyReturned:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "this borrowing has already been returned"})
		default:
			h.Log.Error("borrowing return", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, row)
}
