package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"

	"github.com/kikipackaging/backoffice/internal/core/domain"
	"github.com/kikipackaging/backoffice/internal/core/ports"
	"github.com/kikipackaging/backoffice/internal/core/session"
)

// ---------------------------------------------------------------------------
// Credential store / token endpoint
// ---------------------------------------------------------------------------

type stubCredentialStore struct {
	cred    *domain.Credential
	saves   int
	clears  int
	loadErr error
}

func (s *stubCredentialStore) Save(_ context.Context, c domain.Credential) error {
	s.saves++
	s.cred = &c
	return nil
}

func (s *stubCredentialStore) Load(_ context.Context) (*domain.Credential, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.cred == nil {
		return nil, nil
	}
	c := *s.cred
	return &c, nil
}

func (s *stubCredentialStore) Clear(_ context.Context) error {
	s.clears++
	s.cred = nil
	return nil
}

type stubTokenEndpoint struct {
	loginCred   domain.Credential
	loginErr    error
	signUpCred  domain.Credential
	signUpErr   error
	refreshCred domain.Credential
	refreshErr  error
	logoutErr   error

	refreshCalls  int
	refreshCtxErr error // ctx.Err() observed by the last Refresh call
	logoutCalls   int
}

func (e *stubTokenEndpoint) Login(_ context.Context, _, _ string) (domain.Credential, error) {
	return e.loginCred, e.loginErr
}

func (e *stubTokenEndpoint) SignUp(_ context.Context, _ ports.SignUpInput) (domain.Credential, error) {
	return e.signUpCred, e.signUpErr
}

func (e *stubTokenEndpoint) Refresh(ctx context.Context, _ string) (domain.Credential, error) {
	e.refreshCalls++
	e.refreshCtxErr = ctx.Err()
	return e.refreshCred, e.refreshErr
}

func (e *stubTokenEndpoint) Logout(_ context.Context, _ string) error {
	e.logoutCalls++
	return e.logoutErr
}

// signedToken returns an HS256 JWT whose subject is sub.
func signedToken(t *testing.T, sub string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func credentialFor(t *testing.T, sub string, now time.Time) domain.Credential {
	return domain.Credential{
		AccessToken:      signedToken(t, sub),
		AccessExpiresAt:  now.Add(time.Hour),
		RefreshToken:     "refresh-" + sub,
		RefreshExpiresAt: now.Add(24 * time.Hour),
		TokenType:        "bearer",
	}
}

// ---------------------------------------------------------------------------
// Activity
// ---------------------------------------------------------------------------

type stubRecorder struct {
	mu      sync.Mutex
	records []domain.ActivityRecord
}

func (r *stubRecorder) Record(_ context.Context, rec domain.ActivityRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

func (r *stubRecorder) actions() []domain.ActivityAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ActivityAction, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec.Action)
	}
	return out
}

type stubActivityRepo struct {
	lastFilter ports.ActivityFilter
	records    []domain.ActivityRecord
}

func (r *stubActivityRepo) Insert(_ context.Context, rec domain.ActivityRecord) error {
	r.records = append(r.records, rec)
	return nil
}

func (r *stubActivityRepo) List(_ context.Context, f ports.ActivityFilter) ([]domain.ActivityRecord, int64, error) {
	r.lastFilter = f
	return r.records, int64(len(r.records)), nil
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

type stubProductRepo struct {
	products    map[string]*domain.Product
	setStockErr map[string]error
	stockWrites int
	nextID      int
}

func newStubProductRepo(products ...domain.Product) *stubProductRepo {
	r := &stubProductRepo{products: map[string]*domain.Product{}, setStockErr: map[string]error{}}
	for i := range products {
		p := products[i]
		r.products[p.ID] = &p
	}
	return r
}

func product(id string, stock int, price string) domain.Product {
	return domain.Product{
		ID:            id,
		Name:          "Product " + id,
		SKU:           "SKU-" + id,
		Unit:          "box",
		UnitPrice:     decimal.RequireFromString(price),
		StockQuantity: stock,
		IsActive:      true,
	}
}

func (r *stubProductRepo) stock(id string) int { return r.products[id].StockQuantity }

func (r *stubProductRepo) Get(_ context.Context, id string) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProductRepo) FindBySKU(_ context.Context, sku string) (*domain.Product, error) {
	for _, p := range r.products {
		if p.SKU == sku {
			clone := *p
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubProductRepo) List(_ context.Context, f ports.ProductFilter) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range r.products {
		if f.ActiveOnly && !p.IsActive {
			continue
		}
		if f.StockBelow > 0 && p.StockQuantity >= f.StockBelow {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StockQuantity < out[j].StockQuantity })
	return out, nil
}

func (r *stubProductRepo) Create(_ context.Context, in ports.NewProduct) (*domain.Product, error) {
	r.nextID++
	p := domain.Product{
		ID:            fmt.Sprintf("p-%d", r.nextID),
		Name:          in.Name,
		SKU:           in.SKU,
		Unit:          in.Unit,
		UnitPrice:     in.UnitPrice,
		StockQuantity: in.StockQuantity,
		IsActive:      in.IsActive,
	}
	r.products[p.ID] = &p
	clone := p
	return &clone, nil
}

func (r *stubProductRepo) Update(_ context.Context, id string, patch ports.ProductPatch) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.SKU != nil {
		p.SKU = *patch.SKU
	}
	if patch.UnitPrice != nil {
		p.UnitPrice = *patch.UnitPrice
	}
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}
	clone := *p
	return &clone, nil
}

func (r *stubProductRepo) SetStock(_ context.Context, id string, qty int) error {
	if err := r.setStockErr[id]; err != nil {
		return err
	}
	p, ok := r.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.stockWrites++
	p.StockQuantity = qty
	return nil
}

func (r *stubProductRepo) Categories(_ context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, p := range r.products {
		if p.Category != nil && !seen[*p.Category] {
			seen[*p.Category] = true
			out = append(out, *p.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

type stubOrderRepo struct {
	orders    map[string]*domain.Order
	items     map[string]*domain.OrderItem
	createErr error
	nextID    int
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: map[string]*domain.Order{}, items: map[string]*domain.OrderItem{}}
}

func (r *stubOrderRepo) id(prefix string) string {
	r.nextID++
	return fmt.Sprintf("%s-%d", prefix, r.nextID)
}

func (r *stubOrderRepo) Get(_ context.Context, id string) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *o
	clone.Items = nil
	ids := make([]string, 0)
	for itemID, it := range r.items {
		if it.OrderID == id {
			ids = append(ids, itemID)
		}
	}
	sort.Strings(ids)
	for _, itemID := range ids {
		clone.Items = append(clone.Items, *r.items[itemID])
	}
	return &clone, nil
}

func (r *stubOrderRepo) List(_ context.Context, f ports.OrderFilter) ([]domain.Order, int64, error) {
	var out []domain.Order
	for _, o := range r.orders {
		if f.UserID != "" && o.UserID != f.UserID {
			continue
		}
		if f.Status != "" && string(o.Status) != f.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *stubOrderRepo) Create(_ context.Context, in ports.NewOrder) (*domain.Order, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	o := domain.Order{ID: r.id("o"), UserID: in.UserID, Status: in.Status, TotalPrice: in.TotalPrice, Notes: in.Notes}
	r.orders[o.ID] = &o
	clone := o
	return &clone, nil
}

func (r *stubOrderRepo) InsertItems(_ context.Context, orderID string, items []ports.NewOrderItem) ([]domain.OrderItem, error) {
	out := make([]domain.OrderItem, 0, len(items))
	for _, in := range items {
		it := domain.OrderItem{
			ID:         r.id("i"),
			OrderID:    orderID,
			ProductID:  in.ProductID,
			Quantity:   in.Quantity,
			UnitPrice:  in.UnitPrice,
			TotalPrice: in.TotalPrice,
		}
		r.items[it.ID] = &it
		out = append(out, it)
	}
	return out, nil
}

func (r *stubOrderRepo) Update(_ context.Context, id string, patch ports.OrderPatch) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.Status != nil {
		o.Status = *patch.Status
	}
	if patch.Notes != nil {
		o.Notes = patch.Notes
	}
	if patch.TotalPrice != nil {
		o.TotalPrice = *patch.TotalPrice
	}
	clone := *o
	return &clone, nil
}

func (r *stubOrderRepo) GetItem(_ context.Context, itemID string) (*domain.OrderItem, error) {
	it, ok := r.items[itemID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *it
	return &clone, nil
}

func (r *stubOrderRepo) DeleteItem(_ context.Context, itemID string) error {
	delete(r.items, itemID)
	return nil
}

func (r *stubOrderRepo) DeleteItems(_ context.Context, orderID string) error {
	for id, it := range r.items {
		if it.OrderID == orderID {
			delete(r.items, id)
		}
	}
	return nil
}

func (r *stubOrderRepo) Delete(_ context.Context, id string) error {
	delete(r.orders, id)
	return nil
}

// seed stores an order with the given status and items directly.
func (r *stubOrderRepo) seed(userID string, status domain.OrderStatus, total string, items ...domain.OrderItem) string {
	id := r.id("o")
	r.orders[id] = &domain.Order{ID: id, UserID: userID, Status: status, TotalPrice: decimal.RequireFromString(total)}
	for _, it := range items {
		it.ID = r.id("i")
		it.OrderID = id
		clone := it
		r.items[it.ID] = &clone
	}
	return id
}

func (r *stubOrderRepo) itemIDs(orderID string) []string {
	var ids []string
	for id, it := range r.items {
		if it.OrderID == orderID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// ---------------------------------------------------------------------------
// Users / invitations / functions / idempotency
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users     map[string]*domain.UserProfile
	getErr    error
	createErr error
	deleted   []string
	touched   []string
}

func newStubUserRepo(users ...domain.UserProfile) *stubUserRepo {
	r := &stubUserRepo{users: map[string]*domain.UserProfile{}}
	for i := range users {
		u := users[i]
		r.users[u.ID] = &u
	}
	return r
}

func (r *stubUserRepo) Get(_ context.Context, id string) (*domain.UserProfile, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) List(_ context.Context) ([]domain.UserProfile, error) {
	var out []domain.UserProfile
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUserRepo) Create(_ context.Context, in ports.NewUserProfile) (*domain.UserProfile, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	u := domain.UserProfile{ID: in.ID, Name: in.Name, Email: in.Email, Role: in.Role, IsActive: true}
	r.users[u.ID] = &u
	clone := u
	return &clone, nil
}

func (r *stubUserRepo) TouchLastLogin(_ context.Context, id string, _ time.Time) error {
	r.touched = append(r.touched, id)
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.deleted = append(r.deleted, id)
	delete(r.users, id)
	return nil
}

type stubInvitationRepo struct {
	invitations map[string]*domain.Invitation
	nextID      int
}

func newStubInvitationRepo(invs ...domain.Invitation) *stubInvitationRepo {
	r := &stubInvitationRepo{invitations: map[string]*domain.Invitation{}}
	for i := range invs {
		inv := invs[i]
		r.invitations[inv.ID] = &inv
	}
	return r
}

func (r *stubInvitationRepo) FindPendingByEmail(_ context.Context, email string) (*domain.Invitation, error) {
	for _, inv := range r.invitations {
		if inv.Email == email && inv.AcceptedAt.IsZero() {
			clone := *inv
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubInvitationRepo) FindPendingByToken(_ context.Context, token string) (*domain.Invitation, error) {
	for _, inv := range r.invitations {
		if inv.InviteToken == token && inv.AcceptedAt.IsZero() {
			clone := *inv
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubInvitationRepo) ListPending(_ context.Context) ([]domain.Invitation, error) {
	var out []domain.Invitation
	for _, inv := range r.invitations {
		if inv.AcceptedAt.IsZero() {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *stubInvitationRepo) Create(_ context.Context, in ports.NewInvitation) (*domain.Invitation, error) {
	r.nextID++
	inv := domain.Invitation{
		ID:          fmt.Sprintf("inv-%d", r.nextID),
		Email:       in.Email,
		Name:        in.Name,
		Role:        in.Role,
		InvitedBy:   in.InvitedBy,
		InviteToken: fmt.Sprintf("token-%d", r.nextID),
		ExpiresAt:   domain.NewTimestamp(time.Now().Add(domain.InvitationTTL)),
	}
	r.invitations[inv.ID] = &inv
	clone := inv
	return &clone, nil
}

func (r *stubInvitationRepo) MarkAccepted(_ context.Context, id string, at time.Time) error {
	inv, ok := r.invitations[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.AcceptedAt = domain.NewTimestamp(at)
	return nil
}

func (r *stubInvitationRepo) SetExpiry(_ context.Context, id string, expiresAt time.Time) error {
	inv, ok := r.invitations[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.ExpiresAt = domain.NewTimestamp(expiresAt)
	return nil
}

func (r *stubInvitationRepo) Delete(_ context.Context, id string) error {
	delete(r.invitations, id)
	return nil
}

type stubFunctions struct {
	calls []string
	err   error
}

func (f *stubFunctions) Invoke(_ context.Context, name string, _ any) error {
	f.calls = append(f.calls, name)
	return f.err
}

type stubIdempotency struct {
	keys map[string]string
}

func newStubIdempotency() *stubIdempotency { return &stubIdempotency{keys: map[string]string{}} }

func (s *stubIdempotency) Claim(_ context.Context, key string) (string, bool, error) {
	if v, ok := s.keys[key]; ok {
		return v, false, nil
	}
	s.keys[key] = ""
	return "", true, nil
}

func (s *stubIdempotency) Complete(_ context.Context, key, orderID string) error {
	s.keys[key] = orderID
	return nil
}

func (s *stubIdempotency) Release(_ context.Context, key string) error {
	delete(s.keys, key)
	return nil
}

// ---------------------------------------------------------------------------
// Sessions
// ---------------------------------------------------------------------------

func adminSession() *session.Session {
	s := session.New()
	s.Set(domain.UserProfile{ID: "admin-1", Name: "Admin", Role: domain.RoleAdmin, IsActive: true})
	return s
}

func staffSession(id string) *session.Session {
	s := session.New()
	s.Set(domain.UserProfile{ID: id, Name: "Staff " + id, Role: domain.RoleStaff, IsActive: true})
	return s
}
