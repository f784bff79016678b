package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kikipackaging/backoffice/internal/core/domain"
	"github.com/kikipackaging/backoffice/internal/core/ports"
)

const idempotencyHeader = "Idempotency-Key"

// OrderHandler serves order operations. Every stock change happens in the
// inventory service behind it.
type OrderHandler struct {
	inventory ports.InventoryService
}

func NewOrderHandler(inventory ports.InventoryService) *OrderHandler {
	return &OrderHandler{inventory: inventory}
}

// Create handles POST /orders. A repeated Idempotency-Key returns the order
// created by the first request with 200 instead of 201.
func (h *OrderHandler) Create(c echo.Context) error {
	var req createOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	key := c.Request().Header.Get(idempotencyHeader)
	result, err := h.inventory.CreateOrder(c.Request().Context(), toCreateOrderInput(req, key))
	if err != nil {
		return err
	}
	status := http.StatusCreated
	if result.AlreadyExisted {
		status = http.StatusOK
	}
	return respond(c, status, result.Order)
}

// List handles GET /orders?status=&user_id=&date_from=&date_to=&limit=&offset=.
func (h *OrderHandler) List(c echo.Context) error {
	var (
		filter = ports.OrderFilter{
			UserID: c.QueryParam("user_id"),
			Status: c.QueryParam("status"),
		}
		err error
	)
	if filter.DateFrom, err = queryTime(c, "date_from"); err != nil {
		return err
	}
	if filter.DateTo, err = queryTime(c, "date_to"); err != nil {
		return err
	}
	if filter.Limit, err = queryInt(c, "limit", 0); err != nil {
		return err
	}
	if filter.Offset, err = queryInt(c, "offset", 0); err != nil {
		return err
	}

	result, err := h.inventory.ListOrders(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, pageResponse[domain.Order]{Items: result.Items, Total: result.Total})
}

// Get handles GET /orders/:id.
func (h *OrderHandler) Get(c echo.Context) error {
	order, err := h.inventory.GetOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, order)
}

// Update handles PATCH /orders/:id (notes only).
func (h *OrderHandler) Update(c echo.Context) error {
	var req updateOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	order, err := h.inventory.UpdateOrder(c.Request().Context(), c.Param("id"), req.Notes)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, order)
}

// ChangeStatus handles POST /orders/:id/status.
func (h *OrderHandler) ChangeStatus(c echo.Context) error {
	var req changeStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	order, err := h.inventory.ChangeStatus(c.Request().Context(), c.Param("id"), domain.OrderStatus(req.Status))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, order)
}

// Cancel handles POST /orders/:id/cancel.
func (h *OrderHandler) Cancel(c echo.Context) error {
	order, err := h.inventory.CancelOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, order)
}

// Delete handles DELETE /orders/:id.
func (h *OrderHandler) Delete(c echo.Context) error {
	if err := h.inventory.DeleteOrder(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil)
}

// DeleteItem handles DELETE /orders/items/:id.
func (h *OrderHandler) DeleteItem(c echo.Context) error {
	if err := h.inventory.DeleteOrderItem(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil)
}
