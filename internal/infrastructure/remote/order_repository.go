package remote

import (
	"context"
	"time"

	"github.com/kikipackaging/backoffice/internal/core/domain"
	"github.com/kikipackaging/backoffice/internal/core/ports"
)

const (
	ordersTable     = "orders"
	orderItemsTable = "order_items"

	orderSelect = "*,user:user_id(id,name),items:order_items(*,product:product_id(id,name,sku,unit))"
	itemSelect  = "*,product:product_id(id,name,sku,unit)"
)

// OrderRepository implements ports.OrderRepository on the orders and
// order_items tables.
type OrderRepository struct {
	store *RestStore
}

func NewOrderRepository(store *RestStore) *OrderRepository {
	return &OrderRepository{store: store}
}

type orderRow struct {
	UserID     string             `json:"user_id"`
	Status     domain.OrderStatus `json:"status"`
	TotalPrice numeric            `json:"total_price"`
	Notes      *string            `json:"notes"`
}

type orderItemRow struct {
	OrderID    string  `json:"order_id"`
	ProductID  string  `json:"product_id"`
	Quantity   int     `json:"quantity"`
	UnitPrice  numeric `json:"unit_price"`
	TotalPrice numeric `json:"total_price"`
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	return fetchOne[domain.Order](ctx, r.store, From(ordersTable).Select(orderSelect).Eq("id", id))
}

func (r *OrderRepository) List(ctx context.Context, f ports.OrderFilter) ([]domain.Order, int64, error) {
	q := From(ordersTable).Select(orderSelect).Order("created_at", false)
	if f.UserID != "" {
		q.Eq("user_id", f.UserID)
	}
	if f.Status != "" {
		q.Eq("status", f.Status)
	}
	if !f.DateFrom.IsZero() {
		q.Gte("created_at", domain.FormatServerTime(f.DateFrom))
	}
	if !f.DateTo.IsZero() {
		q.Lte("created_at", domain.FormatServerTime(f.DateTo))
	}
	q.Limit(f.Limit).Offset(f.Offset)
	return fetchPage[domain.Order](ctx, r.store, q)
}

func (r *OrderRepository) Create(ctx context.Context, o ports.NewOrder) (*domain.Order, error) {
	return insertOne[domain.Order](ctx, r.store, ordersTable, orderRow{
		UserID:     o.UserID,
		Status:     o.Status,
		TotalPrice: numeric(o.TotalPrice),
		Notes:      o.Notes,
	})
}

func (r *OrderRepository) InsertItems(ctx context.Context, orderID string, items []ports.NewOrderItem) ([]domain.OrderItem, error) {
	rows := make([]orderItemRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, orderItemRow{
			OrderID:    orderID,
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  numeric(it.UnitPrice),
			TotalPrice: numeric(it.TotalPrice),
		})
	}
	return insertReturning[domain.OrderItem](ctx, r.store, orderItemsTable, rows)
}

func (r *OrderRepository) Update(ctx context.Context, id string, p ports.OrderPatch) (*domain.Order, error) {
	patch := map[string]any{"updated_at": domain.FormatServerTime(time.Now())}
	if p.Status != nil {
		patch["status"] = *p.Status
	}
	if p.Notes != nil {
		patch["notes"] = *p.Notes
	}
	if p.TotalPrice != nil {
		patch["total_price"] = numeric(*p.TotalPrice)
	}
	rows, err := updateReturning[domain.Order](ctx, r.store, From(ordersTable).Eq("id", id), patch)
	if err != nil {
		return nil, err
	}
	return &rows[0], nil
}

func (r *OrderRepository) GetItem(ctx context.Context, itemID string) (*domain.OrderItem, error) {
	return fetchOne[domain.OrderItem](ctx, r.store, From(orderItemsTable).Select(itemSelect).Eq("id", itemID))
}

func (r *OrderRepository) DeleteItem(ctx context.Context, itemID string) error {
	return r.store.Delete(ctx, From(orderItemsTable).Eq("id", itemID))
}

func (r *OrderRepository) DeleteItems(ctx context.Context, orderID string) error {
	return r.store.Delete(ctx, From(orderItemsTable).Eq("order_id", orderID))
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, From(ordersTable).Eq("id", id))
}

var _ ports.OrderRepository = (*OrderRepository)(nil)
