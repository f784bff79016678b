package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/kikipackaging/backoffice/internal/core/domain"
	"github.com/kikipackaging/backoffice/internal/core/ports"
	"github.com/kikipackaging/backoffice/internal/core/session"
	"github.com/kikipackaging/backoffice/internal/pkg/metrics"
)

const (
	defaultOrderLimit = 50
	maxOrderLimit     = 200
)

// IdempotencyStore remembers which order an Idempotency-Key produced.
type IdempotencyStore interface {
	// Claim reserves key. When the key is already known it returns the order
	// id stored for it, or "" while the first request is still running.
	Claim(ctx context.Context, key string) (orderID string, claimed bool, err error)
	Complete(ctx context.Context, key, orderID string) error
	Release(ctx context.Context, key string) error
}

// InventoryService is the only writer of product stock. Every operation is a
// sequence of read-then-write calls against the backend; correctness assumes
// a single writer per product at a time.
type InventoryService struct {
	products ports.ProductRepository
	orders   ports.OrderRepository
	idem     IdempotencyStore
	recorder ports.ActivityRecorder
	session  *session.Session
	logger   zerolog.Logger
}

// NewInventoryService wires the ledger. idem may be nil, in which case
// Idempotency-Key headers are ignored.
func NewInventoryService(
	products ports.ProductRepository,
	orders ports.OrderRepository,
	idem IdempotencyStore,
	recorder ports.ActivityRecorder,
	sess *session.Session,
	logger zerolog.Logger,
) *InventoryService {
	return &InventoryService{
		products: products,
		orders:   orders,
		idem:     idem,
		recorder: recorder,
		session:  sess,
		logger:   logger,
	}
}

// demand is the aggregated requested quantity for one product.
type demand struct {
	productID string
	quantity  int
	product   *domain.Product
}

// CreateOrder validates availability for every line before writing anything,
// then decrements stock product by product, inserts the order and its items.
func (s *InventoryService) CreateOrder(ctx context.Context, in ports.CreateOrderInput) (*ports.CreateOrderResult, error) {
	user, err := s.session.Require()
	if err != nil {
		return nil, err
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: order has no items", domain.ErrInvalidInput)
	}
	for _, line := range in.Items {
		if line.ProductID == "" || line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: every item needs a product and a positive quantity", domain.ErrInvalidInput)
		}
	}

	if in.IdempotencyKey != "" && s.idem != nil {
		existing, claimed, err := s.idem.Claim(ctx, in.IdempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("idempotency claim: %w", err)
		}
		if !claimed {
			metrics.OrderIdempotencyTotal.WithLabelValues("hit").Inc()
			if existing == "" {
				return nil, domain.ErrRequestInFlight
			}
			order, err := s.orders.Get(ctx, existing)
			if err != nil {
				return nil, err
			}
			s.logger.Info().Str("idempotency_key", in.IdempotencyKey).Str("order_id", order.ID).Msg("idempotent replay")
			return &ports.CreateOrderResult{Order: order, AlreadyExisted: true}, nil
		}
		metrics.OrderIdempotencyTotal.WithLabelValues("miss").Inc()
	}

	t := newTrail("create_order", s.logger)
	order, err := s.createOrder(ctx, t, user, in)
	if err != nil {
		// Once stock has moved a replay must not run again, so the key stays
		// claimed until it expires.
		if in.IdempotencyKey != "" && s.idem != nil && !t.applied() {
			if rerr := s.idem.Release(ctx, in.IdempotencyKey); rerr != nil {
				s.logger.Warn().Err(rerr).Str("idempotency_key", in.IdempotencyKey).Msg("idempotency release failed")
			}
		}
		return nil, err
	}

	if in.IdempotencyKey != "" && s.idem != nil {
		if err := s.idem.Complete(ctx, in.IdempotencyKey, order.ID); err != nil {
			s.logger.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("idempotency complete failed")
		}
	}

	metrics.OrdersCreatedTotal.Inc()
	record(ctx, s.recorder, s.session, domain.ActionCreate, domain.EntityOrder, order.ID, order.DisplayName(), map[string]any{
		"items":       len(order.Items),
		"total_price": order.TotalPrice.String(),
	})
	s.logger.Info().Str("order_id", order.ID).Str("user_id", user.ID).Int("items", len(order.Items)).Msg("order created")
	return &ports.CreateOrderResult{Order: order}, nil
}

func (s *InventoryService) createOrder(ctx context.Context, t *trail, user domain.UserProfile, in ports.CreateOrderInput) (*domain.Order, error) {
	demands, err := s.checkAvailability(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	if err := s.takeStock(ctx, t, demands, "order_create"); err != nil {
		return nil, err
	}

	total := decimal.Zero
	lines := make([]ports.NewOrderItem, 0, len(demands))
	for _, d := range demands {
		lineTotal := d.product.UnitPrice.Mul(decimal.NewFromInt(int64(d.quantity)))
		total = total.Add(lineTotal)
		lines = append(lines, ports.NewOrderItem{
			ProductID:  d.product.ID,
			Quantity:   d.quantity,
			UnitPrice:  d.product.UnitPrice,
			TotalPrice: lineTotal,
		})
	}

	order, err := s.orders.Create(ctx, ports.NewOrder{
		UserID:     user.ID,
		Status:     initialStatus(in.Items),
		TotalPrice: total,
		Notes:      in.Notes,
	})
	if err != nil {
		return nil, t.fail("insert order", err)
	}
	t.done("inserted order %s", order.ID)

	items, err := s.orders.InsertItems(ctx, order.ID, lines)
	if err != nil {
		return nil, t.fail("insert items", err)
	}
	for i := range items {
		if items[i].Product == nil {
			for _, d := range demands {
				if d.product.ID == items[i].ProductID {
					items[i].Product = &domain.ProductRef{ID: d.product.ID, Name: d.product.Name, SKU: d.product.SKU, Unit: d.product.Unit}
				}
			}
		}
	}
	order.Items = items
	return order, nil
}

// initialStatus is the status a new order starts in. Stock is committed
// before the order row exists, so a checkout starts in processing; a
// single-line order is the legacy quick-order mode and starts in pending.
// Both hold stock.
func initialStatus(lines []ports.OrderLineInput) domain.OrderStatus {
	if len(lines) == 1 {
		return domain.OrderPending
	}
	return domain.OrderProcessing
}

// checkAvailability aggregates lines per product, keeping first-seen order,
// and fails before any write if a product cannot cover its total.
func (s *InventoryService) checkAvailability(ctx context.Context, lines []ports.OrderLineInput) ([]demand, error) {
	index := make(map[string]int, len(lines))
	var demands []demand
	for _, line := range lines {
		if i, ok := index[line.ProductID]; ok {
			demands[i].quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(demands)
		demands = append(demands, demand{productID: line.ProductID, quantity: line.Quantity})
	}

	for i := range demands {
		p, err := s.products.Get(ctx, demands[i].productID)
		if err != nil {
			return nil, fmt.Errorf("load product %s: %w", demands[i].productID, err)
		}
		if !p.IsActive {
			return nil, fmt.Errorf("%w: product %s is inactive", domain.ErrInvalidInput, p.ID)
		}
		if p.StockQuantity < demands[i].quantity {
			return nil, &domain.InsufficientStockError{
				ProductID: p.ID,
				Requested: demands[i].quantity,
				Available: p.StockQuantity,
			}
		}
		demands[i].product = p
	}
	return demands, nil
}

// takeStock decrements each product by its demand using the stock read in
// checkAvailability.
func (s *InventoryService) takeStock(ctx context.Context, t *trail, demands []demand, reason string) error {
	for _, d := range demands {
		next := d.product.StockQuantity - d.quantity
		if err := s.products.SetStock(ctx, d.product.ID, next); err != nil {
			return t.fail(fmt.Sprintf("decrement product %s", d.product.ID), err)
		}
		metrics.StockMovementsTotal.WithLabelValues(reason).Inc()
		t.done("product %s stock %d -> %d", d.product.ID, d.product.StockQuantity, next)
	}
	return nil
}

// restoreStock returns each item's quantity to its product, re-reading the
// product immediately before each write.
func (s *InventoryService) restoreStock(ctx context.Context, t *trail, items []domain.OrderItem, reason string) error {
	for _, item := range items {
		p, err := s.products.Get(ctx, item.ProductID)
		if err != nil {
			return t.fail(fmt.Sprintf("load product %s", item.ProductID), err)
		}
		next := p.StockQuantity + item.Quantity
		if err := s.products.SetStock(ctx, p.ID, next); err != nil {
			return t.fail(fmt.Sprintf("restore product %s", p.ID), err)
		}
		metrics.StockMovementsTotal.WithLabelValues(reason).Inc()
		t.done("product %s stock %d -> %d", p.ID, p.StockQuantity, next)
	}
	return nil
}

// GetOrder returns an order. Staff may only read their own orders.
func (s *InventoryService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	user, err := s.session.Require()
	if err != nil {
		return nil, err
	}
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() && order.UserID != user.ID {
		return nil, domain.ErrForbidden
	}
	return order, nil
}

// ListOrders returns a page of orders. Staff are always scoped to their own.
func (s *InventoryService) ListOrders(ctx context.Context, filter ports.OrderFilter) (*ports.ListOrdersResult, error) {
	user, err := s.session.Require()
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		filter.UserID = user.ID
	}
	if filter.Status != "" && !domain.OrderStatus(filter.Status).Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, filter.Status)
	}
	filter.Limit = clampLimit(filter.Limit, defaultOrderLimit, maxOrderLimit)
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	items, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ports.ListOrdersResult{Items: items, Total: total}, nil
}

// UpdateOrder changes the order notes. Staff may only edit their own orders
// while those still hold stock.
func (s *InventoryService) UpdateOrder(ctx context.Context, id string, notes *string) (*domain.Order, error) {
	user, err := s.session.Require()
	if err != nil {
		return nil, err
	}
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		if order.UserID != user.ID {
			return nil, domain.ErrForbidden
		}
		if !order.Status.HoldsStock() {
			return nil, fmt.Errorf("%w: only open orders can be edited", domain.ErrForbidden)
		}
	}

	updated, err := s.orders.Update(ctx, id, ports.OrderPatch{Notes: notes})
	if err != nil {
		return nil, err
	}
	updated.Items = order.Items
	record(ctx, s.recorder, s.session, domain.ActionUpdate, domain.EntityOrder, id, order.DisplayName(), map[string]any{
		"changes": map[string]any{"notes": notes},
	})
	return updated, nil
}

// ChangeStatus moves an order to next. The stock effect is decided by whether
// the old and new statuses hold stock: leaving the holding set restores every
// item, entering it takes stock again.
func (s *InventoryService) ChangeStatus(ctx context.Context, id string, next domain.OrderStatus) (*domain.Order, error) {
	user, err := s.session.Require()
	if err != nil {
		return nil, err
	}
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, next)
	}
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		// Staff may only cancel their own orders that still hold stock.
		if order.UserID != user.ID || next != domain.OrderCancelled || !order.Status.HoldsStock() {
			return nil, domain.ErrForbidden
		}
	}
	if order.Status == next {
		return order, nil
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, order.Status, next)
	}

	action := domain.ActionStatusChange
	reason := "status_change"
	if next == domain.OrderCancelled {
		action = domain.ActionCancel
		reason = "order_cancel"
	}

	t := newTrail(string(action)+"_order", s.logger)
	switch {
	case order.Status.HoldsStock() && !next.HoldsStock():
		if err := s.restoreStock(ctx, t, order.Items, reason); err != nil {
			return nil, err
		}
	case !order.Status.HoldsStock() && next.HoldsStock():
		lines := make([]ports.OrderLineInput, 0, len(order.Items))
		for _, item := range order.Items {
			lines = append(lines, ports.OrderLineInput{ProductID: item.ProductID, Quantity: item.Quantity})
		}
		demands, err := s.checkAvailability(ctx, lines)
		if err != nil {
			return nil, err
		}
		if err := s.takeStock(ctx, t, demands, reason); err != nil {
			return nil, err
		}
	}

	updated, err := s.orders.Update(ctx, id, ports.OrderPatch{Status: &next})
	if err != nil {
		return nil, t.fail("update status", err)
	}
	updated.Items = order.Items

	record(ctx, s.recorder, s.session, action, domain.EntityOrder, id, order.DisplayName(), map[string]any{
		"old_status": string(order.Status),
		"new_status": string(next),
	})
	s.logger.Info().Str("order_id", id).Str("from", string(order.Status)).Str("to", string(next)).Msg("order status changed")
	return updated, nil
}

// CancelOrder is ChangeStatus to cancelled.
func (s *InventoryService) CancelOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.ChangeStatus(ctx, id, domain.OrderCancelled)
}

// DeleteOrder removes an order. Stock is returned first when the order still
// holds it. Admin only.
func (s *InventoryService) DeleteOrder(ctx context.Context, id string) error {
	user, err := s.session.Require()
	if err != nil {
		return err
	}
	if !user.IsAdmin() {
		return domain.ErrForbidden
	}
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return err
	}

	t := newTrail("delete_order", s.logger)
	if order.Status.HoldsStock() {
		if err := s.restoreStock(ctx, t, order.Items, "order_delete"); err != nil {
			return err
		}
	}
	if err := s.orders.DeleteItems(ctx, id); err != nil {
		return t.fail("delete items", err)
	}
	t.done("deleted items of order %s", id)
	if err := s.orders.Delete(ctx, id); err != nil {
		return t.fail("delete order", err)
	}

	record(ctx, s.recorder, s.session, domain.ActionDelete, domain.EntityOrder, id, order.DisplayName(), map[string]any{
		"status":      string(order.Status),
		"total_price": order.TotalPrice.String(),
	})
	s.logger.Info().Str("order_id", id).Msg("order deleted")
	return nil
}

// DeleteOrderItem removes one line: its stock goes back to the product when
// the order holds stock, and the order total drops by the line total, never
// below zero.
func (s *InventoryService) DeleteOrderItem(ctx context.Context, itemID string) error {
	user, err := s.session.Require()
	if err != nil {
		return err
	}
	item, err := s.orders.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	order, err := s.orders.Get(ctx, item.OrderID)
	if err != nil {
		return err
	}
	if !user.IsAdmin() && (order.UserID != user.ID || !order.Status.HoldsStock()) {
		return domain.ErrForbidden
	}

	t := newTrail("delete_order_item", s.logger)
	if order.Status.HoldsStock() {
		if err := s.restoreStock(ctx, t, []domain.OrderItem{*item}, "item_delete"); err != nil {
			return err
		}
	}

	total := order.TotalPrice.Sub(item.TotalPrice)
	if total.IsNegative() {
		total = decimal.Zero
	}
	if _, err := s.orders.Update(ctx, order.ID, ports.OrderPatch{TotalPrice: &total}); err != nil {
		return t.fail("update order total", err)
	}
	t.done("order %s total %s -> %s", order.ID, order.TotalPrice, total)

	if err := s.orders.DeleteItem(ctx, itemID); err != nil {
		return t.fail("delete item", err)
	}

	name := order.DisplayName()
	if item.Product != nil && item.Product.Name != "" {
		name = item.Product.Name
	}
	record(ctx, s.recorder, s.session, domain.ActionDeleteItem, domain.EntityOrder, order.ID, name, map[string]any{
		"item_id":    itemID,
		"product_id": item.ProductID,
		"quantity":   item.Quantity,
	})
	return nil
}

// AdjustStock applies a manual correction to a product's stock.
func (s *InventoryService) AdjustStock(ctx context.Context, productID string, delta int) (*domain.Product, error) {
	if _, err := s.session.Require(); err != nil {
		return nil, err
	}
	if delta == 0 {
		return nil, fmt.Errorf("%w: adjustment must be non-zero", domain.ErrInvalidInput)
	}
	p, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	next := p.StockQuantity + delta
	if next < 0 {
		return nil, &domain.InsufficientStockError{ProductID: p.ID, Requested: -delta, Available: p.StockQuantity}
	}
	if err := s.products.SetStock(ctx, p.ID, next); err != nil {
		return nil, err
	}
	metrics.StockMovementsTotal.WithLabelValues("adjust").Inc()

	record(ctx, s.recorder, s.session, domain.ActionAdjustStock, domain.EntityPackaging, p.ID, p.Name, map[string]any{
		"old_quantity": p.StockQuantity,
		"new_quantity": next,
		"adjustment":   delta,
	})
	p.StockQuantity = next
	return p, nil
}

var _ ports.InventoryService = (*InventoryService)(nil)
