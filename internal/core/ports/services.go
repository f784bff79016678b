package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/kikipackaging/backoffice/internal/core/domain"
)

// OrderLineInput is one requested line of a new order.
type OrderLineInput struct {
	ProductID string
	Quantity  int
}

// CreateOrderInput is the DTO passed from the transport layer to InventoryService.
type CreateOrderInput struct {
	Items []OrderLineInput
	Notes *string
	// IdempotencyKey, when set, makes a replayed request return the first result.
	IdempotencyKey string
}

// CreateOrderResult is returned by CreateOrder.
type CreateOrderResult struct {
	Order *domain.Order
	// AlreadyExisted is true when the Idempotency-Key matched an earlier order.
	AlreadyExisted bool
}

// ListOrdersResult is returned by ListOrders.
type ListOrdersResult struct {
	Items []domain.Order
	Total int64
}

// InventoryService owns every operation that moves stock.
type InventoryService interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (*CreateOrderResult, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) (*ListOrdersResult, error)
	UpdateOrder(ctx context.Context, id string, notes *string) (*domain.Order, error)
	ChangeStatus(ctx context.Context, id string, next domain.OrderStatus) (*domain.Order, error)
	CancelOrder(ctx context.Context, id string) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id string) error
	DeleteOrderItem(ctx context.Context, itemID string) error
	AdjustStock(ctx context.Context, productID string, delta int) (*domain.Product, error)
}

// CreateProductInput carries the fields for a new catalog entry.
type CreateProductInput struct {
	Name          string
	Description   *string
	SKU           string
	Unit          string
	UnitPrice     decimal.Decimal
	StockQuantity int
	ImageURL      *string
	Category      *string
	IsActive      *bool
}

// CatalogService manages catalog entries. It never changes stock after creation.
type CatalogService interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, in CreateProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, patch ProductPatch) (*domain.Product, error)
	DeactivateProduct(ctx context.Context, id string) error
	ReactivateProduct(ctx context.Context, id string) error
	LowStock(ctx context.Context, threshold int) ([]domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

// SendInvitationInput carries the fields for a new invitation.
type SendInvitationInput struct {
	Email string
	Name  string
	Role  string
}

// AccountService manages users and invitations.
type AccountService interface {
	ListUsers(ctx context.Context) ([]domain.UserProfile, error)
	DeleteUser(ctx context.Context, id string) error
	SendInvitation(ctx context.Context, in SendInvitationInput) (*domain.Invitation, error)
	ValidateInvitation(ctx context.Context, token string) (*domain.Invitation, error)
	AcceptInvitation(ctx context.Context, token, password string) (*domain.UserProfile, error)
	RevokeInvitation(ctx context.Context, id string) error
	ResendInvitation(ctx context.Context, id string) error
	PendingInvitations(ctx context.Context) ([]domain.Invitation, error)
}
