package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/kikipackaging/backoffice/internal/core/domain"
)

// ProductFilter carries the list query parameters for the catalog.
type ProductFilter struct {
	ActiveOnly bool
	Search     string // partial match on name or sku
	Category   string
	// StockBelow, when positive, keeps only products with stock_quantity < StockBelow
	// ordered by stock ascending.
	StockBelow int
}

// NewProduct is the insert payload for a catalog entry.
type NewProduct struct {
	Name          string
	Description   *string
	SKU           string
	Unit          string
	UnitPrice     decimal.Decimal
	StockQuantity int
	ImageURL      *string
	Category      *string
	IsActive      bool
}

// ProductPatch holds the catalog fields an update may change. Stock is not
// part of it; stock moves only through ProductRepository.SetStock.
type ProductPatch struct {
	Name        *string
	Description *string
	SKU         *string
	Unit        *string
	UnitPrice   *decimal.Decimal
	ImageURL    *string
	Category    *string
	IsActive    *bool
}

// ProductRepository defines persistence operations for catalog products.
type ProductRepository interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
	// FindBySKU returns domain.ErrNotFound when no product carries sku.
	FindBySKU(ctx context.Context, sku string) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	Create(ctx context.Context, p NewProduct) (*domain.Product, error)
	Update(ctx context.Context, id string, patch ProductPatch) (*domain.Product, error)
	SetStock(ctx context.Context, id string, quantity int) error
	Categories(ctx context.Context) ([]string, error)
}
