package handler

import (
	"github.com/kikipackaging/backoffice/internal/core/ports"
)

// --- Request → Service input ---

func toCreateProductInput(req createProductRequest) ports.CreateProductInput {
	return ports.CreateProductInput{
		Name:          req.Name,
		Description:   req.Description,
		SKU:           req.SKU,
		Unit:          req.Unit,
		UnitPrice:     req.UnitPrice,
		StockQuantity: req.StockQuantity,
		ImageURL:      req.ImageURL,
		Category:      req.Category,
		IsActive:      req.IsActive,
	}
}

func toProductPatch(req updateProductRequest) ports.ProductPatch {
	return ports.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		SKU:         req.SKU,
		Unit:        req.Unit,
		UnitPrice:   req.UnitPrice,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
		IsActive:    req.IsActive,
	}
}

func toCreateOrderInput(req createOrderRequest, idempotencyKey string) ports.CreateOrderInput {
	lines := make([]ports.OrderLineInput, len(req.Items))
	for i, it := range req.Items {
		lines[i] = ports.OrderLineInput{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return ports.CreateOrderInput{
		Items:          lines,
		Notes:          req.Notes,
		IdempotencyKey: idempotencyKey,
	}
}

func toSendInvitationInput(req sendInvitationRequest) ports.SendInvitationInput {
	return ports.SendInvitationInput{Email: req.Email, Name: req.Name, Role: req.Role}
}
