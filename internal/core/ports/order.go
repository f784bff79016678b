package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kikipackaging/backoffice/internal/core/domain"
)

// OrderFilter carries the list query parameters for orders.
// UserID is always enforced by the service layer for non-admin operators.
type OrderFilter struct {
	UserID   string
	Status   string
	DateFrom time.Time
	DateTo   time.Time
	Limit    int
	Offset   int
}

// NewOrder is the insert payload for an order header.
type NewOrder struct {
	UserID     string
	Status     domain.OrderStatus
	TotalPrice decimal.Decimal
	Notes      *string
}

// NewOrderItem is the insert payload for one order line.
type NewOrderItem struct {
	ProductID  string
	Quantity   int
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// OrderPatch holds the order header fields an update may change.
type OrderPatch struct {
	Status     *domain.OrderStatus
	Notes      *string
	TotalPrice *decimal.Decimal
}

// OrderRepository defines persistence operations for orders and their items.
type OrderRepository interface {
	// Get returns the order with its items and their product references.
	Get(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int64, error)
	Create(ctx context.Context, o NewOrder) (*domain.Order, error)
	InsertItems(ctx context.Context, orderID string, items []NewOrderItem) ([]domain.OrderItem, error)
	Update(ctx context.Context, id string, patch OrderPatch) (*domain.Order, error)
	GetItem(ctx context.Context, itemID string) (*domain.OrderItem, error)
	DeleteItem(ctx context.Context, itemID string) error
	DeleteItems(ctx context.Context, orderID string) error
	Delete(ctx context.Context, id string) error
}
