package handler

import "github.com/shopspring/decimal"

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// --- Products ---

type createProductRequest struct {
	Name          string          `json:"name"           validate:"required"`
	Description   *string         `json:"description"`
	SKU           string          `json:"sku"            validate:"required"`
	Unit          string          `json:"unit"           validate:"required"`
	UnitPrice     decimal.Decimal `json:"unit_price"     validate:"gte=0"`
	StockQuantity int             `json:"stock_quantity" validate:"gte=0"`
	ImageURL      *string         `json:"image_url"`
	Category      *string         `json:"category"`
	IsActive      *bool           `json:"is_active"`
}

type updateProductRequest struct {
	Name        *string          `json:"name"        validate:"omitempty,min=1"`
	Description *string          `json:"description"`
	SKU         *string          `json:"sku"         validate:"omitempty,min=1"`
	Unit        *string          `json:"unit"        validate:"omitempty,min=1"`
	UnitPrice   *decimal.Decimal `json:"unit_price"  validate:"omitempty,gte=0"`
	ImageURL    *string          `json:"image_url"`
	Category    *string          `json:"category"`
	IsActive    *bool            `json:"is_active"`
}

type adjustStockRequest struct {
	Delta int `json:"delta" validate:"ne=0"`
}

// --- Orders ---

type orderLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"   validate:"gt=0"`
}

type createOrderRequest struct {
	Items []orderLineRequest `json:"items" validate:"required,min=1,dive"`
	Notes *string            `json:"notes"`
}

type updateOrderRequest struct {
	Notes *string `json:"notes"`
}

type changeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing completed cancelled"`
}

// --- Accounts ---

type sendInvitationRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"  validate:"required"`
	Role  string `json:"role"  validate:"required,oneof=admin staff"`
}

type acceptInvitationRequest struct {
	Token    string `json:"token"    validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}
