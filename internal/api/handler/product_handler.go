package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kikipackaging/backoffice/internal/core/ports"
)

// ProductHandler serves the catalog and manual stock adjustments.
type ProductHandler struct {
	catalog   ports.CatalogService
	inventory ports.InventoryService
}

func NewProductHandler(catalog ports.CatalogService, inventory ports.InventoryService) *ProductHandler {
	return &ProductHandler{catalog: catalog, inventory: inventory}
}

// List handles GET /products?active_only=&search=&category=.
func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.catalog.ListProducts(c.Request().Context(), ports.ProductFilter{
		ActiveOnly: queryBool(c, "active_only"),
		Search:     c.QueryParam("search"),
		Category:   c.QueryParam("category"),
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, products)
}

// Get handles GET /products/:id.
func (h *ProductHandler) Get(c echo.Context) error {
	p, err := h.catalog.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, p)
}

// Create handles POST /products.
func (h *ProductHandler) Create(c echo.Context) error {
	var req createProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	p, err := h.catalog.CreateProduct(c.Request().Context(), toCreateProductInput(req))
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, p)
}

// Update handles PATCH /products/:id.
func (h *ProductHandler) Update(c echo.Context) error {
	var req updateProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	p, err := h.catalog.UpdateProduct(c.Request().Context(), c.Param("id"), toProductPatch(req))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, p)
}

// Deactivate handles DELETE /products/:id. Products are never hard-deleted.
func (h *ProductHandler) Deactivate(c echo.Context) error {
	if err := h.catalog.DeactivateProduct(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil)
}

// Reactivate handles POST /products/:id/reactivate.
func (h *ProductHandler) Reactivate(c echo.Context) error {
	if err := h.catalog.ReactivateProduct(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil)
}

// AdjustStock handles POST /products/:id/stock.
func (h *ProductHandler) AdjustStock(c echo.Context) error {
	var req adjustStockRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	p, err := h.inventory.AdjustStock(c.Request().Context(), c.Param("id"), req.Delta)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, p)
}

// LowStock handles GET /products/low-stock?threshold=.
func (h *ProductHandler) LowStock(c echo.Context) error {
	threshold, err := queryInt(c, "threshold", 0)
	if err != nil {
		return err
	}
	products, err := h.catalog.LowStock(c.Request().Context(), threshold)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, products)
}

// Categories handles GET /products/categories.
func (h *ProductHandler) Categories(c echo.Context) error {
	cats, err := h.catalog.Categories(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, cats)
}
