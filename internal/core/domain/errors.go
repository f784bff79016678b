package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotAuthenticated  = errors.New("user not authenticated")
	ErrRefreshExpired    = errors.New("refresh token expired")
	ErrRefreshRejected   = errors.New("refresh token rejected")
	ErrNetwork           = errors.New("network error")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("access forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTimestamp  = errors.New("invalid timestamp")
	ErrSKUExists         = errors.New("sku already exists")
	ErrInvitationExists  = errors.New("invitation already exists")
	ErrInvitationInvalid = errors.New("invalid invitation token")
	ErrInvitationExpired = errors.New("invitation token expired")
	ErrRequestInFlight   = errors.New("request with this idempotency key is still in progress")
)

// HTTPError is a non-2xx response from the remote data service that was not
// absorbed by the refresh-and-retry path.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api error: %d %s", e.Status, e.Message)
}

// Is lets a 404 from the data service satisfy errors.Is(err, ErrNotFound).
func (e *HTTPError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// NetworkError wraps a transport-level failure (DNS, connection reset, timeout).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "network error: " + e.Err.Error() }
func (e *NetworkError) Unwrap() error { return e.Err }
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// InsufficientStockError reports the first product whose availability could
// not cover the requested quantity.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
