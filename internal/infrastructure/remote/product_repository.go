package remote

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kikipackaging/backoffice/internal/core/domain"
	"github.com/kikipackaging/backoffice/internal/core/ports"
)

const productsTable = "packaging_products"

// ProductRepository implements ports.ProductRepository on the packaging_products table.
type ProductRepository struct {
	store *RestStore
}

func NewProductRepository(store *RestStore) *ProductRepository {
	return &ProductRepository{store: store}
}

type productRow struct {
	Name          string  `json:"name"`
	Description   *string `json:"description"`
	SKU           string  `json:"sku"`
	Unit          string  `json:"unit"`
	UnitPrice     numeric `json:"unit_price"`
	StockQuantity int     `json:"stock_quantity"`
	ImageURL      *string `json:"image_url"`
	Category      *string `json:"category"`
	IsActive      bool    `json:"is_active"`
}

func (r *ProductRepository) Get(ctx context.Context, id string) (*domain.Product, error) {
	return fetchOne[domain.Product](ctx, r.store, From(productsTable).Select("*").Eq("id", id))
}

func (r *ProductRepository) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return fetchOne[domain.Product](ctx, r.store, From(productsTable).Select("*").Eq("sku", sku))
}

func (r *ProductRepository) List(ctx context.Context, f ports.ProductFilter) ([]domain.Product, error) {
	q := From(productsTable).Select("*")
	if f.ActiveOnly {
		q.Eq("is_active", "true")
	}
	if f.Search != "" {
		term := sanitizeTerm(f.Search)
		q.Or(fmt.Sprintf("name.ilike.*%s*,sku.ilike.*%s*", term, term))
	}
	if f.Category != "" {
		q.Eq("category", f.Category)
	}
	if f.StockBelow > 0 {
		q.Lt("stock_quantity", strconv.Itoa(f.StockBelow)).Order("stock_quantity", true)
	} else {
		q.Order("name", true)
	}
	return fetchAll[domain.Product](ctx, r.store, q)
}

func (r *ProductRepository) Create(ctx context.Context, p ports.NewProduct) (*domain.Product, error) {
	return insertOne[domain.Product](ctx, r.store, productsTable, productRow{
		Name:          p.Name,
		Description:   p.Description,
		SKU:           p.SKU,
		Unit:          p.Unit,
		UnitPrice:     numeric(p.UnitPrice),
		StockQuantity: p.StockQuantity,
		ImageURL:      p.ImageURL,
		Category:      p.Category,
		IsActive:      p.IsActive,
	})
}

func (r *ProductRepository) Update(ctx context.Context, id string, p ports.ProductPatch) (*domain.Product, error) {
	patch := map[string]any{"updated_at": domain.FormatServerTime(time.Now())}
	if p.Name != nil {
		patch["name"] = *p.Name
	}
	if p.Description != nil {
		patch["description"] = *p.Description
	}
	if p.SKU != nil {
		patch["sku"] = *p.SKU
	}
	if p.Unit != nil {
		patch["unit"] = *p.Unit
	}
	if p.UnitPrice != nil {
		patch["unit_price"] = numeric(*p.UnitPrice)
	}
	if p.ImageURL != nil {
		patch["image_url"] = *p.ImageURL
	}
	if p.Category != nil {
		patch["category"] = *p.Category
	}
	if p.IsActive != nil {
		patch["is_active"] = *p.IsActive
	}
	rows, err := updateReturning[domain.Product](ctx, r.store, From(productsTable).Eq("id", id), patch)
	if err != nil {
		return nil, err
	}
	return &rows[0], nil
}

func (r *ProductRepository) SetStock(ctx context.Context, id string, quantity int) error {
	_, err := updateReturning[domain.Product](ctx, r.store, From(productsTable).Select("id").Eq("id", id), map[string]any{
		"stock_quantity": quantity,
		"updated_at":     domain.FormatServerTime(time.Now()),
	})
	return err
}

// Categories returns the distinct non-empty categories in use, sorted.
func (r *ProductRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := fetchAll[struct {
		Category *string `json:"category"`
	}](ctx, r.store, From(productsTable).Select("category").NotNull("category"))
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(rows))
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Category == nil || *row.Category == "" {
			continue
		}
		if _, ok := seen[*row.Category]; ok {
			continue
		}
		seen[*row.Category] = struct{}{}
		out = append(out, *row.Category)
	}
	sort.Strings(out)
	return out, nil
}

// sanitizeTerm strips characters that carry meaning inside an or=() filter.
func sanitizeTerm(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ',', '(', ')', '*', '"':
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

var _ ports.ProductRepository = (*ProductRepository)(nil)
