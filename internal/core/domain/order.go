package domain

import "github.com/shopspring/decimal"

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

// validTransitions defines the allowed status moves. Cancelled is terminal.
var validTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCompleted, OrderCancelled},
	OrderProcessing: {OrderPending, OrderCompleted, OrderCancelled},
	OrderCompleted:  {OrderCancelled},
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// HoldsStock reports whether inventory is committed against an order in this
// status. The set is exactly {pending, processing}.
func (s OrderStatus) HoldsStock() bool {
	return s == OrderPending || s == OrderProcessing
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// OrderItem is one product line of an order.
type OrderItem struct {
	ID         string          `json:"id,omitempty"`
	OrderID    string          `json:"order_id,omitempty"`
	ProductID  string          `json:"product_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Product    *ProductRef     `json:"product,omitempty"`
}

// ProductRef is the embedded product projection returned with order rows.
type ProductRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	SKU  string `json:"sku,omitempty"`
	Unit string `json:"unit,omitempty"`
}

// UserRef is the embedded owner projection returned with order rows.
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Order is a purchase order and its items.
type Order struct {
	ID         string          `json:"id,omitempty"`
	UserID     string          `json:"user_id"`
	Status     OrderStatus     `json:"status"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Notes      *string         `json:"notes"`
	Items      []OrderItem     `json:"items,omitempty"`
	User       *UserRef        `json:"user,omitempty"`
	CreatedAt  Timestamp       `json:"created_at"`
	UpdatedAt  Timestamp       `json:"updated_at"`
}

// DisplayName is the entity name used in activity records.
func (o *Order) DisplayName() string {
	if len(o.Items) == 1 && o.Items[0].Product != nil && o.Items[0].Product.Name != "" {
		return o.Items[0].Product.Name
	}
	return "Order"
}
