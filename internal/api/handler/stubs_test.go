package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kikipackaging/backoffice/internal/core/domain"
	"github.com/kikipackaging/backoffice/internal/core/ports"
)

// newContext builds an echo context with the package validator installed.
func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

type stubAuthService struct {
	loginFn       func(ctx context.Context, email, password string) (*domain.UserProfile, error)
	authenticated bool
	current       *domain.UserProfile
	logoutCalls   int
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*domain.UserProfile, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) RestoreSession(context.Context) (*domain.UserProfile, error) {
	return s.current, nil
}

func (s *stubAuthService) Logout(context.Context) { s.logoutCalls++ }

func (s *stubAuthService) IsAuthenticated(context.Context) bool { return s.authenticated }

func (s *stubAuthService) Current() (domain.UserProfile, bool) {
	if s.current == nil {
		return domain.UserProfile{}, false
	}
	return *s.current, true
}

type stubInventory struct {
	createFn       func(ctx context.Context, in ports.CreateOrderInput) (*ports.CreateOrderResult, error)
	listFn         func(ctx context.Context, f ports.OrderFilter) (*ports.ListOrdersResult, error)
	changeStatusFn func(ctx context.Context, id string, next domain.OrderStatus) (*domain.Order, error)
	deleteItemFn   func(ctx context.Context, itemID string) error
	adjustFn       func(ctx context.Context, productID string, delta int) (*domain.Product, error)
}

func (s *stubInventory) CreateOrder(ctx context.Context, in ports.CreateOrderInput) (*ports.CreateOrderResult, error) {
	return s.createFn(ctx, in)
}

func (s *stubInventory) GetOrder(context.Context, string) (*domain.Order, error) {
	return nil, domain.ErrNotFound
}

func (s *stubInventory) ListOrders(ctx context.Context, f ports.OrderFilter) (*ports.ListOrdersResult, error) {
	return s.listFn(ctx, f)
}

func (s *stubInventory) UpdateOrder(context.Context, string, *string) (*domain.Order, error) {
	return nil, domain.ErrNotFound
}

func (s *stubInventory) ChangeStatus(ctx context.Context, id string, next domain.OrderStatus) (*domain.Order, error) {
	return s.changeStatusFn(ctx, id, next)
}

func (s *stubInventory) CancelOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.changeStatusFn(ctx, id, domain.OrderCancelled)
}

func (s *stubInventory) DeleteOrder(context.Context, string) error { return nil }

func (s *stubInventory) DeleteOrderItem(ctx context.Context, itemID string) error {
	return s.deleteItemFn(ctx, itemID)
}

func (s *stubInventory) AdjustStock(ctx context.Context, productID string, delta int) (*domain.Product, error) {
	return s.adjustFn(ctx, productID, delta)
}

type stubCatalog struct {
	listFn   func(ctx context.Context, f ports.ProductFilter) ([]domain.Product, error)
	createFn func(ctx context.Context, in ports.CreateProductInput) (*domain.Product, error)
	updateFn func(ctx context.Context, id string, p ports.ProductPatch) (*domain.Product, error)
	lowFn    func(ctx context.Context, threshold int) ([]domain.Product, error)
}

func (s *stubCatalog) ListProducts(ctx context.Context, f ports.ProductFilter) ([]domain.Product, error) {
	return s.listFn(ctx, f)
}

func (s *stubCatalog) GetProduct(context.Context, string) (*domain.Product, error) {
	return nil, domain.ErrNotFound
}

func (s *stubCatalog) CreateProduct(ctx context.Context, in ports.CreateProductInput) (*domain.Product, error) {
	return s.createFn(ctx, in)
}

func (s *stubCatalog) UpdateProduct(ctx context.Context, id string, p ports.ProductPatch) (*domain.Product, error) {
	return s.updateFn(ctx, id, p)
}

func (s *stubCatalog) DeactivateProduct(context.Context, string) error { return nil }
func (s *stubCatalog) ReactivateProduct(context.Context, string) error { return nil }

func (s *stubCatalog) LowStock(ctx context.Context, threshold int) ([]domain.Product, error) {
	return s.lowFn(ctx, threshold)
}

func (s *stubCatalog) Categories(context.Context) ([]string, error) {
	return []string{"boxes"}, nil
}

type stubAccounts struct {
	sendFn   func(ctx context.Context, in ports.SendInvitationInput) (*domain.Invitation, error)
	acceptFn func(ctx context.Context, token, password string) (*domain.UserProfile, error)
	validErr error
}

func (s *stubAccounts) ListUsers(context.Context) ([]domain.UserProfile, error) { return nil, nil }
func (s *stubAccounts) DeleteUser(context.Context, string) error                { return nil }

func (s *stubAccounts) SendInvitation(ctx context.Context, in ports.SendInvitationInput) (*domain.Invitation, error) {
	return s.sendFn(ctx, in)
}

func (s *stubAccounts) ValidateInvitation(_ context.Context, token string) (*domain.Invitation, error) {
	if s.validErr != nil {
		return nil, s.validErr
	}
	return &domain.Invitation{InviteToken: token, Email: "new@kiki.test"}, nil
}

func (s *stubAccounts) AcceptInvitation(ctx context.Context, token, password string) (*domain.UserProfile, error) {
	return s.acceptFn(ctx, token, password)
}

func (s *stubAccounts) RevokeInvitation(context.Context, string) error { return nil }
func (s *stubAccounts) ResendInvitation(context.Context, string) error { return nil }

func (s *stubAccounts) PendingInvitations(context.Context) ([]domain.Invitation, error) {
	return nil, nil
}
