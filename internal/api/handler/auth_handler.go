package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kikipackaging/backoffice/internal/core/domain"
	"github.com/kikipackaging/backoffice/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type sessionResponse struct {
	Authenticated bool                `json:"authenticated"`
	User          *domain.UserProfile `json:"user,omitempty"`
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, sessionResponse{Authenticated: true, User: user})
}

// Logout handles POST /auth/logout. It always succeeds.
func (h *AuthHandler) Logout(c echo.Context) error {
	h.authService.Logout(c.Request().Context())
	return respond(c, http.StatusOK, sessionResponse{Authenticated: false})
}

// Session handles GET /auth/session.
func (h *AuthHandler) Session(c echo.Context) error {
	if !h.authService.IsAuthenticated(c.Request().Context()) {
		return respond(c, http.StatusOK, sessionResponse{Authenticated: false})
	}
	u, ok := h.authService.Current()
	if !ok {
		return respond(c, http.StatusOK, sessionResponse{Authenticated: false})
	}
	return respond(c, http.StatusOK, sessionResponse{Authenticated: true, User: &u})
}
