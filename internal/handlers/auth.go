package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vlasenko/contacts_api/internal/logging"
	"github.com/vlasenko/contacts_api/internal/middleware"
	"github.com/vlasenko/contacts_api/internal/mykafka"
	"github.com/vlasenko/contacts_api/internal/service"
)

type AuthHandler struct {
	Auth     *service.AuthService
	Producer *mykafka.Producer
}

func (h *AuthHandler) Signup(c echo.Context) error {
	ctx, cancel := opCtx(c)
	defer cancel()
	l := logging.FromContext(ctx).With("handler", "auth_signup")

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("signup_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	user, err := h.Auth.Signup(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}

	h.publish(c, "user_events", user.Email, echo.Map{
		"type":    "user_registered",
		"user_id": user.ID,
		"email":   user.Email,
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"user":     user,
		"detailed": "User successfully created. Check your email for confirmation.",
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx, cancel := opCtx(c)
	defer cancel()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Email    string `json:"email" form:"username"`
		Password string `json:"password" form:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	pair, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}

	h.publish(c, "user_events", req.Email, echo.Map{
		"type":  "user_logged_in",
		"email": req.Email,
	})

	return c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	ctx, cancel := opCtx(c)
	defer cancel()

	raw := middleware.BearerToken(c)
	if raw == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}

	pair, err := h.Auth.Refresh(ctx, raw)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) ConfirmEmail(c echo.Context) error {
	ctx, cancel := opCtx(c)
	defer cancel()

	already, err := h.Auth.ConfirmEmail(ctx, c.Param("token"))
	if err != nil {
		return httpError(err)
	}
	if already {
		return c.JSON(http.StatusOK, echo.Map{"message": "Your email is already confirmed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Email confirmed"})
}

func (h *AuthHandler) RequestEmail(c echo.Context) error {
	ctx, cancel := opCtx(c)
	defer cancel()

	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	already, err := h.Auth.RequestEmailVerification(ctx, req.Email)
	if err != nil {
		return httpError(err)
	}
	if already {
		return c.JSON(http.StatusOK, echo.Map{"message": "Your email is already confirmed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Check your email for confirmation."})
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	ctx, cancel := opCtx(c)
	defer cancel()

	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Auth.RequestPasswordReset(ctx, req.Email); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusResetContent, echo.Map{
		"message": "User is successfully informed how to reset password. " +
			"Check your email for instruction.",
	})
}

func (h *AuthHandler) ResetPasswordNew(c echo.Context) error {
	ctx, cancel := opCtx(c)
	defer cancel()

	password := c.FormValue("password")
	if password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "password is required")
	}

	if err := h.Auth.ResetPassword(ctx, c.Param("token"), password); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User password is successfully changed."})
}

// publish sends a domain event without failing the request on broker errors.
func (h *AuthHandler) publish(c echo.Context, topic, key string, event echo.Map) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka_publish_failed", "topic", topic, "error", err)
	}
}

// httpError maps orchestrator outcomes onto wire statuses. Unknown errors
// are infrastructure failures and stay opaque.
func httpError(err error) error {
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		return echo.NewHTTPError(http.StatusConflict, "Account already exists")
	case errors.Is(err, service.ErrAccountAbsent):
		return echo.NewHTTPError(http.StatusConflict, "Account is absent")
	case errors.Is(err, service.ErrInvalidEmail):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email")
	case errors.Is(err, service.ErrResetTarget):
		return echo.NewHTTPError(http.StatusNotAcceptable, "Invalid email")
	case errors.Is(err, service.ErrNotConfirmed):
		return echo.NewHTTPError(http.StatusUnauthorized, "Email not confirmed")
	case errors.Is(err, service.ErrInvalidPassword):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid password")
	case errors.Is(err, service.ErrInvalidRefreshToken):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	case errors.Is(err, service.ErrVerification):
		return echo.NewHTTPError(http.StatusBadRequest, "Verification error")
	case errors.Is(err, service.ErrCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
