package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/repository"
)

var (
	customer = domain.NewViewer("user-1", &domain.Profile{UserID: "user-1", FirstName: "Ada"})
	admin    = domain.NewViewer("admin-1", &domain.Profile{UserID: "admin-1", IsAdmin: true})
)

// withParams attaches chi url params and, when given, a viewer.
func withParams(r *http.Request, viewer *domain.Viewer, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	if viewer != nil {
		ctx = WithViewer(ctx, *viewer)
	}
	return r.WithContext(ctx)
}

type mockCatalog struct {
	products map[string]*domain.Product
	options  []domain.DeliveryOption
	state    string
	err      error
}

func (m *mockCatalog) ListProducts(_ context.Context, categoryID string) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, p := range m.products {
		if categoryID == "" || p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, m.err
}

func (m *mockCatalog) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func (m *mockCatalog) ListCategories(context.Context) ([]*domain.Category, error) {
	return nil, m.err
}

func (m *mockCatalog) DeliveryOptionsForState(_ context.Context, state string) ([]domain.DeliveryOption, error) {
	m.state = state
	return m.options, m.err
}

type mockCarts struct {
	cart    *domain.Cart
	err     error
	added   []string
	cleared bool
	readErr error
}

func (m *mockCarts) GetCart(_ context.Context, userID string) (*domain.Cart, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	if m.cart == nil {
		return &domain.Cart{UserID: userID}, nil
	}
	return m.cart, nil
}

func (m *mockCarts) AddItem(_ context.Context, _ string, productID string, _ int) error {
	if m.err != nil {
		return m.err
	}
	m.added = append(m.added, productID)
	return nil
}

func (m *mockCarts) UpdateQuantity(context.Context, string, string, int) error {
	return m.err
}

func (m *mockCarts) RemoveItem(context.Context, string, string) error {
	return m.err
}

func (m *mockCarts) ClearCart(context.Context, string) error {
	if m.err != nil {
		return m.err
	}
	m.cleared = true
	return nil
}

// mockCheckout answers every step with the same summary or error.
type mockCheckout struct {
	summary   *checkout.Summary
	paystack  *checkout.PaystackResult
	err       error
	lastID    string
	reference string
	cancelled bool
	delivery  [2]string
	contact   checkout.ContactDetails
}

func (m *mockCheckout) summaryFor(id string) (*checkout.Summary, error) {
	m.lastID = id
	if m.err != nil {
		return nil, m.err
	}
	if m.summary != nil {
		return m.summary, nil
	}
	return &checkout.Summary{ID: id, Status: domain.CheckoutStatusFormEntry}, nil
}

func (m *mockCheckout) Start(context.Context, domain.Viewer) (*checkout.Summary, error) {
	return m.summaryFor("new-session")
}

func (m *mockCheckout) Summary(_ context.Context, _ domain.Viewer, id string) (*checkout.Summary, error) {
	return m.summaryFor(id)
}

func (m *mockCheckout) UpdateContact(_ context.Context, _ domain.Viewer, id string, c checkout.ContactDetails) (*checkout.Summary, error) {
	m.contact = c
	return m.summaryFor(id)
}

func (m *mockCheckout) SelectCountry(_ context.Context, _ domain.Viewer, id, _ string) (*checkout.Summary, error) {
	return m.summaryFor(id)
}

func (m *mockCheckout) SelectState(_ context.Context, _ domain.Viewer, id, _ string) (*checkout.Summary, error) {
	return m.summaryFor(id)
}

func (m *mockCheckout) SelectDelivery(_ context.Context, _ domain.Viewer, id, location, city string) (*checkout.Summary, error) {
	m.delivery = [2]string{location, city}
	return m.summaryFor(id)
}

func (m *mockCheckout) RemoveItem(_ context.Context, _ domain.Viewer, id, _ string) (*checkout.Summary, error) {
	return m.summaryFor(id)
}

func (m *mockCheckout) Proceed(_ context.Context, _ domain.Viewer, id string) (*checkout.MethodChoice, error) {
	m.lastID = id
	if m.err != nil {
		return nil, m.err
	}
	return &checkout.MethodChoice{}, nil
}

func (m *mockCheckout) StartPaystack(_ context.Context, _ domain.Viewer, id string) (*checkout.PaystackInit, error) {
	m.lastID = id
	if m.err != nil {
		return nil, m.err
	}
	return &checkout.PaystackInit{PublicKey: "pk_test"}, nil
}

func (m *mockCheckout) CompletePaystack(_ context.Context, _ domain.Viewer, id, reference string, cancelled bool) (*checkout.PaystackResult, error) {
	m.lastID, m.reference, m.cancelled = id, reference, cancelled
	if m.err != nil {
		return nil, m.err
	}
	return m.paystack, nil
}

func (m *mockCheckout) StartBankTransfer(_ context.Context, _ domain.Viewer, id string) (*checkout.BankTransferInstructions, error) {
	m.lastID = id
	if m.err != nil {
		return nil, m.err
	}
	return &checkout.BankTransferInstructions{}, nil
}

func (m *mockCheckout) ConfirmBankTransfer(_ context.Context, _ domain.Viewer, id string) (*checkout.BankTransferResult, error) {
	m.lastID = id
	if m.err != nil {
		return nil, m.err
	}
	return &checkout.BankTransferResult{Order: &domain.Order{ID: "order-1"}}, nil
}

type mockOrders struct {
	orders     []*domain.Order
	err        error
	lastStatus domain.OrderStatus
}

func (m *mockOrders) ListOrders(_ context.Context, _ domain.Viewer, status domain.OrderStatus) ([]*domain.Order, error) {
	m.lastStatus = status
	return m.orders, m.err
}

func (m *mockOrders) GetOrder(_ context.Context, _ domain.Viewer, id string) (*domain.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, o := range m.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (m *mockOrders) UpdateStatus(_ context.Context, _ domain.Viewer, id string, status domain.OrderStatus) (*domain.Order, error) {
	m.lastStatus = status
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Order{ID: id, Status: status}, nil
}

type stubResolver map[string]domain.Viewer

func (s stubResolver) Resolve(_ context.Context, userID string) domain.Viewer {
	if v, ok := s[userID]; ok {
		return v
	}
	return domain.NewViewer(userID, nil)
}

func errItemNotFound() error {
	return repository.ErrItemNotFound
}
