package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vlasenko/contacts_api/internal/middleware"
	"github.com/vlasenko/contacts_api/internal/service"
)

type UserHandler struct {
	Auth *service.AuthService
}

func (h *UserHandler) Me(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateAvatar(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
	}

	var req struct {
		Avatar string `json:"avatar"`
	}
	if err := c.Bind(&req); err != nil || req.Avatar == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "avatar url is required")
	}

	ctx, cancel := opCtx(c)
	defer cancel()

	updated, err := h.Auth.UpdateAvatar(ctx, user.Email, req.Avatar)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, updated)
}
