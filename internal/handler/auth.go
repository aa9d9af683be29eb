package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront-gateway/internal/dto"
	"storefront-gateway/internal/notify"
	"storefront-gateway/internal/session"
)

type AuthHandler struct {
	sessions *session.Store
}

func NewAuthHandler(sessions *session.Store) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

func (h *AuthHandler) Login(c echo.Context) error {
	buf := notify.NewBuffer()

	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	sess, err := h.sessions.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return fail(c, buf, err, "Login failed")
	}

	buf.Success("Login Successful")
	return ok(c, buf, sess)
}

func (h *AuthHandler) Register(c echo.Context) error {
	buf := notify.NewBuffer()

	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	sess, err := h.sessions.Register(c.Request().Context(), req)
	if err != nil {
		return fail(c, buf, err, "Registration failed. Please try again.")
	}

	buf.Success("Welcome to Zang Global. Login to continue")
	return ok(c, buf, sess)
}

func (h *AuthHandler) Me(c echo.Context) error {
	buf := notify.NewBuffer()

	profile, err := h.sessions.FetchCurrentUser(c.Request().Context())
	if err != nil {
		return fail(c, buf, err, "Failed to fetch user")
	}
	return ok(c, buf, profile)
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	if refreshed := h.sessions.RefreshToken(c.Request().Context()); !refreshed {
		return c.JSON(http.StatusUnauthorized, response{Redirect: "/login"})
	}
	return c.JSON(http.StatusOK, response{Data: h.sessions.Session()})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	h.sessions.Logout(c.Request().Context())
	return c.JSON(http.StatusOK, response{Redirect: "/login"})
}
