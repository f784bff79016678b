package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/kikipackaging/backoffice/internal/api/handler"
	"github.com/kikipackaging/backoffice/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders the {"success": false, "error": "<message>"} envelope.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, handler.ErrorBody(msg))
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, middleware rejections).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		return http.StatusConflict, stockErr.Error()
	}

	switch {
	case errors.Is(err, domain.ErrNotAuthenticated),
		errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrRefreshExpired),
		errors.Is(err, domain.ErrRefreshRejected):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "resource not found"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrSKUExists),
		errors.Is(err, domain.ErrInvitationExists),
		errors.Is(err, domain.ErrRequestInFlight):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrInvitationInvalid):
		return http.StatusBadRequest, "invalid invitation"
	case errors.Is(err, domain.ErrInvitationExpired):
		return http.StatusGone, "invitation expired"
	case errors.Is(err, domain.ErrNetwork):
		log.Warn().Err(err).Str("path", c.Path()).Msg("backend unreachable")
		return http.StatusBadGateway, "backend unavailable"
	}

	// Client errors reported by the backend are passed through; anything else
	// is a gateway failure.
	var remote *domain.HTTPError
	if errors.As(err, &remote) {
		if remote.Status >= 400 && remote.Status < 500 {
			return remote.Status, remote.Message
		}
		log.Error().Err(err).Str("path", c.Path()).Msg("backend error")
		return http.StatusBadGateway, "backend error"
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
