// app/echoServer/controller/auth/authController.go
package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"librental/app/echoServer/jwtx"
	"librental/model"
	authsvc "librental/service/auth"
)

type Controller struct {
	Svc authsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

type RefreshReq struct {
	Refresh string `json:"refresh" validate:"required"`
}

// Register a new user
// @Summary      Register user
// @Description  Register a new non-staff user; email must be unique
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body  model.RegisterReq  true  "Register payload"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]any "validation error or email taken"
// @Failure      500  {object}  map[string]any
// @Router       /v1/users/register [post]
func (ct *Controller) Register(c echo.Context) error {
	var req model.RegisterReq
	if err := c.Bind(&req); err != nil {
		ct.Log.Warn("bind failed", "path", c.Path(), "err", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		ct.Log.Warn("validation failed", "path", c.Path(), "err", err)
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	u, err := ct.Svc.Register(c.Request().Context(), req)
	if err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrEmailTaken:
			return echo.NewHTTPError(http.StatusBadRequest, "email already registered")
		case authsvc.ErrBadInput:
			return echo.NewHTTPError(http.StatusBadRequest, "bad input")
		default:
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			ct.Log.Error("register failed", "err", err, "req_id", rid, "path", c.Path())
			return echo.NewHTTPError(http.StatusInternalServerError, "register failed")
		}
	}

	return c.JSON(http.StatusCreated, u)
}

// Token issues an access + refresh credential pair
// @Summary      Obtain token pair
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body  model.LoginReq  true  "Login payload"
// @Success      200  {object}  map[string]any
// @Failure      401  {object}  map[string]any
// @Router       /v1/token [post]
func (ct *Controller) Token(c echo.Context) error {
	var req model.LoginReq
	if err := c.Bind(&req); err != nil {
		ct.Log.Warn("bind failed", "path", c.Path(), "err", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		ct.Log.Warn("validation failed", "path", c.Path(), "err", err)
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	_, pair, err := ct.Svc.Login(c.Request().Context(), req)
	if err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrInvalidCreds:
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
		case authsvc.ErrBadInput:
			return echo.NewHTTPError(http.StatusBadRequest, "bad input")
		default:
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			ct.Log.Error("login failed", "err", err, "req_id", rid, "path", c.Path())
			return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
		}
	}

	return c.JSON(http.StatusOK, pair)
}

// Refresh rotates a refresh token
// @Summary      Refresh token pair
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body  RefreshReq  true  "Refresh payload"
// @Success      200  {object}  map[string]any
// @Failure      401  {object}  map[string]any
// @Router       /v1/token/refresh [post]
func (ct *Controller) Refresh(c echo.Context) error {
	var req RefreshReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	pair, err := ct.Svc.Refresh(c.Request().Context(), req.Refresh)
	if err != nil {
		if authsvc.Code(err) == authsvc.ErrInvalidRefresh {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
		}
		ct.Log.Error("refresh failed", "err", err, "path", c.Path())
		return echo.NewHTTPError(http.StatusInternalServerError, "refresh failed")
	}

	return c.JSON(http.StatusOK, pair)
}

// GET /v1/users/me
func (ct *Controller) Me(c echo.Context) error {
	caller := jwtx.Caller(c)
	u, err := ct.Svc.Me(c.Request().Context(), caller.ID)
	if err != nil {
		if authsvc.Code(err) == authsvc.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		ct.Log.Error("me failed", "err", err, "path", c.Path())
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, u)
}

// PATCH /v1/users/me
func (ct *Controller) UpdateMe(c echo.Context) error {
	var req model.UpdateMeReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	caller := jwtx.Caller(c)
	u, err := ct.Svc.UpdateMe(c.Request().Context(), caller.ID, req)
	if err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrEmailTaken:
			return echo.NewHTTPError(http.StatusBadRequest, "email already registered")
		case authsvc.ErrBadInput:
			return echo.NewHTTPError(http.StatusBadRequest, "bad input")
		case authsvc.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		default:
			ct.Log.Error("update me failed", "err", err, "path", c.Path())
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}
	return c.JSON(http.StatusOK, u)
}
