package domain

import "github.com/shopspring/decimal"

// DefaultLowStockThreshold is used when no threshold is supplied.
const DefaultLowStockThreshold = 10

// Product is a packaging item in the catalog. StockQuantity is never written
// directly by catalog updates; only the inventory ledger changes it.
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   *string         `json:"description"`
	SKU           string          `json:"sku"`
	Unit          string          `json:"unit"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	StockQuantity int             `json:"stock_quantity"`
	ImageURL      *string         `json:"image_url"`
	Category      *string         `json:"category"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     Timestamp       `json:"created_at"`
	UpdatedAt     Timestamp       `json:"updated_at"`
}
