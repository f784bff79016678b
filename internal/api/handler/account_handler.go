package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kikipackaging/backoffice/internal/core/ports"
)

// AccountHandler serves user management and invitations.
type AccountHandler struct {
	accounts ports.AccountService
}

func NewAccountHandler(accounts ports.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// ListUsers handles GET /users.
func (h *AccountHandler) ListUsers(c echo.Context) error {
	users, err := h.accounts.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, users)
}

// DeleteUser handles DELETE /users/:id.
func (h *AccountHandler) DeleteUser(c echo.Context) error {
	if err := h.accounts.DeleteUser(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil)
}

// Invite handles POST /invitations.
func (h *AccountHandler) Invite(c echo.Context) error {
	var req sendInvitationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	inv, err := h.accounts.SendInvitation(c.Request().Context(), toSendInvitationInput(req))
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, inv)
}

// Pending handles GET /invitations.
func (h *AccountHandler) Pending(c echo.Context) error {
	invs, err := h.accounts.PendingInvitations(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, invs)
}

// Validate handles GET /invitations/validate?token=. No session required.
func (h *AccountHandler) Validate(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token is required")
	}
	inv, err := h.accounts.ValidateInvitation(c.Request().Context(), token)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, inv)
}

// Accept handles POST /invitations/accept. No session required; on success
// the new account becomes the signed-in operator.
func (h *AccountHandler) Accept(c echo.Context) error {
	var req acceptInvitationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.accounts.AcceptInvitation(c.Request().Context(), req.Token, req.Password)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, user)
}

// Resend handles POST /invitations/:id/resend.
func (h *AccountHandler) Resend(c echo.Context) error {
	if err := h.accounts.ResendInvitation(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil)
}

// Revoke handles DELETE /invitations/:id.
func (h *AccountHandler) Revoke(c echo.Context) error {
	if err := h.accounts.RevokeInvitation(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil)
}
