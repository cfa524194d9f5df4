package book

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"librental/app/echoServer/jwtx"
	booksvc "librental/service/book"
	"librental/service/policy"
)

type Controller struct {
	Svc booksvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// GET /v1/books
func (h *Controller) List(c echo.Context) error {
	books, err := h.Svc.List(c.Request().Context())
	if err != nil {
		h.Log.Error("book list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": books})
}

// GET /v1/books/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	b, err := h.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		if booksvc.Code(err) == booksvc.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		}
		h.Log.Error("book detail", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, b)
}

// POST /v1/books  (staff)
func (h *Controller) Create(c echo.Context) error {
	if !policy.Allow(policy.CatalogWrite, jwtx.Caller(c)) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	var req CreateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	b, err := h.Svc.Create(c.Request().Context(), booksvc.CreateInput{
		Title:     req.Title,
		Author:    req.Author,
		Cover:     req.Cover,
		Inventory: req.Inventory,
		DailyFee:  req.DailyFee,
	})
	if err != nil {
		if booksvc.Code(err) == booksvc.ErrInvalid {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
		}
		h.Log.Error("book create", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusCreated, b)
}

// PATCH /v1/books/:id  (staff)
func (h *Controller) Update(c echo.Context) error {
	if !policy.Allow(policy.CatalogWrite, jwtx.Caller(c)) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req UpdateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	b, err := h.Svc.Update(c.Request().Context(), id, booksvc.UpdateInput{
		Title:     req.Title,
		Author:    req.Author,
		Cover:     req.Cover,
		Inventory: req.Inventory,
		DailyFee:  req.DailyFee,
	})
	if err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrInvalid:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
		case booksvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		default:
			h.Log.Error("book update", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, b)
}

// DELETE /v1/books/:id  (staff)
func (h *Controller) Delete(c echo.Context) error {
	if !policy.Allow(policy.CatalogWrite, jwtx.Caller(c)) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		if booksvc.Code(err) == booksvc.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		}
		h.Log.Error("book delete", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.NoContent(http.StatusNoContent)
}
