package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kikipackaging/backoffice/internal/core/domain"
	"github.com/kikipackaging/backoffice/internal/core/ports"
	"github.com/kikipackaging/backoffice/internal/core/session"
)

// CatalogService manages packaging products. Stock is only set on creation;
// afterwards it belongs to InventoryService.
type CatalogService struct {
	repo     ports.ProductRepository
	recorder ports.ActivityRecorder
	session  *session.Session
	logger   zerolog.Logger
}

func NewCatalogService(repo ports.ProductRepository, recorder ports.ActivityRecorder, sess *session.Session, logger zerolog.Logger) *CatalogService {
	return &CatalogService{repo: repo, recorder: recorder, session: sess, logger: logger}
}

func (s *CatalogService) ListProducts(ctx context.Context, filter ports.ProductFilter) ([]domain.Product, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	return s.repo.List(ctx, filter)
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.Get(ctx, id)
}

// CreateProduct inserts a catalog entry. SKUs are unique across the catalog.
func (s *CatalogService) CreateProduct(ctx context.Context, in ports.CreateProductInput) (*domain.Product, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	if in.Name == "" || in.SKU == "" || in.Unit == "" {
		return nil, fmt.Errorf("%w: name, sku and unit are required", domain.ErrInvalidInput)
	}
	if in.UnitPrice.IsNegative() || in.StockQuantity < 0 {
		return nil, fmt.Errorf("%w: price and stock must not be negative", domain.ErrInvalidInput)
	}
	if err := s.ensureSKUFree(ctx, in.SKU, ""); err != nil {
		return nil, err
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	p, err := s.repo.Create(ctx, ports.NewProduct{
		Name:          in.Name,
		Description:   in.Description,
		SKU:           in.SKU,
		Unit:          in.Unit,
		UnitPrice:     in.UnitPrice,
		StockQuantity: in.StockQuantity,
		ImageURL:      in.ImageURL,
		Category:      in.Category,
		IsActive:      active,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("sku", in.SKU).Msg("failed to create product")
		return nil, err
	}

	record(ctx, s.recorder, s.session, domain.ActionCreate, domain.EntityPackaging, p.ID, p.Name, map[string]any{
		"sku":            p.SKU,
		"stock_quantity": p.StockQuantity,
		"unit_price":     p.UnitPrice.String(),
	})
	return p, nil
}

// UpdateProduct applies patch. A changed SKU must not collide with another product.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, patch ports.ProductPatch) (*domain.Product, error) {
	if patch.SKU != nil {
		sku := strings.TrimSpace(*patch.SKU)
		if sku == "" {
			return nil, fmt.Errorf("%w: sku must not be empty", domain.ErrInvalidInput)
		}
		patch.SKU = &sku
		if err := s.ensureSKUFree(ctx, sku, id); err != nil {
			return nil, err
		}
	}
	if patch.UnitPrice != nil && patch.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
	}

	p, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	record(ctx, s.recorder, s.session, domain.ActionUpdate, domain.EntityPackaging, p.ID, p.Name, map[string]any{
		"changes": patchChanges(patch),
	})
	return p, nil
}

// DeactivateProduct hides a product from ordering without deleting it.
func (s *CatalogService) DeactivateProduct(ctx context.Context, id string) error {
	return s.setActive(ctx, id, false, domain.ActionDelete)
}

func (s *CatalogService) ReactivateProduct(ctx context.Context, id string) error {
	return s.setActive(ctx, id, true, domain.ActionReactivate)
}

func (s *CatalogService) setActive(ctx context.Context, id string, active bool, action domain.ActivityAction) error {
	p, err := s.repo.Update(ctx, id, ports.ProductPatch{IsActive: &active})
	if err != nil {
		return err
	}
	record(ctx, s.recorder, s.session, action, domain.EntityPackaging, p.ID, p.Name, map[string]any{"sku": p.SKU})
	return nil
}

// LowStock lists active products with stock below threshold, lowest first.
func (s *CatalogService) LowStock(ctx context.Context, threshold int) ([]domain.Product, error) {
	if threshold <= 0 {
		threshold = domain.DefaultLowStockThreshold
	}
	return s.repo.List(ctx, ports.ProductFilter{ActiveOnly: true, StockBelow: threshold})
}

func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func (s *CatalogService) ensureSKUFree(ctx context.Context, sku, selfID string) error {
	existing, err := s.repo.FindBySKU(ctx, sku)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != selfID:
		return fmt.Errorf("%w: %s", domain.ErrSKUExists, sku)
	}
	return nil
}

func patchChanges(p ports.ProductPatch) map[string]any {
	changes := map[string]any{}
	if p.Name != nil {
		changes["name"] = *p.Name
	}
	if p.Description != nil {
		changes["description"] = *p.Description
	}
	if p.SKU != nil {
		changes["sku"] = *p.SKU
	}
	if p.Unit != nil {
		changes["unit"] = *p.Unit
	}
	if p.UnitPrice != nil {
		changes["unit_price"] = p.UnitPrice.String()
	}
	if p.ImageURL != nil {
		changes["image_url"] = *p.ImageURL
	}
	if p.Category != nil {
		changes["category"] = *p.Category
	}
	if p.IsActive != nil {
		changes["is_active"] = *p.IsActive
	}
	return changes
}

var _ ports.CatalogService = (*CatalogService)(nil)
