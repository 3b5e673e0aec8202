package checkout

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

var fixedNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

// MockCart implements Cart over an in-memory line list
type MockCart struct {
	mu          sync.Mutex
	Lines       []domain.CartLine
	SnapshotErr error
	ClearErr    error
	RemoveErr   error
	ClearCalls  int
	// Calls records the order of Clear relative to order writes
	Calls *[]string
}

func (m *MockCart) Snapshot(_ context.Context) (domain.CartSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SnapshotErr != nil {
		return domain.CartSnapshot{}, m.SnapshotErr
	}
	c := &domain.Cart{Lines: m.Lines}
	return c.Snapshot(fixedNow), nil
}

func (m *MockCart) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls++
	if m.Calls != nil {
		*m.Calls = append(*m.Calls, "clear")
	}
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.Lines = nil
	return nil
}

func (m *MockCart) RemoveItem(_ context.Context, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	kept := m.Lines[:0]
	for _, line := range m.Lines {
		if line.ProductID != productID {
			kept = append(kept, line)
		}
	}
	m.Lines = kept
	return nil
}

// MockCartSource hands out the same cart for every user
type MockCartSource struct {
	Cart *MockCart
}

func (m *MockCartSource) For(_ string) Cart {
	return m.Cart
}

// MockOrderWriter implements OrderWriter for testing
type MockOrderWriter struct {
	Orders []*domain.Order
	Err    error
	Calls  *[]string
}

func (m *MockOrderWriter) CreateOrder(_ context.Context, order *domain.Order) error {
	if m.Calls != nil {
		*m.Calls = append(*m.Calls, "create_order")
	}
	if m.Err != nil {
		return m.Err
	}
	m.Orders = append(m.Orders, order)
	return nil
}

func line(id, name string, price int64, qty int) domain.CartLine {
	return domain.CartLine{
		ProductID: id,
		Name:      name,
		UnitPrice: domain.NewMoney(price),
		Quantity:  qty,
		Currency:  domain.DefaultCurrency,
		Image:     "/img/" + id + ".jpg",
	}
}

func testOptions() []domain.DeliveryOption {
	return []domain.DeliveryOption{
		{Value: "lagos-island", Name: "Lagos Island", Price: domain.NewMoney(1500), Carrier: "GIG Logistics", State: "Lagos"},
		{Value: "pickup", Name: "Store pickup", Price: domain.NewMoney(0)},
		{Value: "oyo-towns", Name: "Oyo towns", Price: domain.NewMoney(2000), CustomCityTriggers: []string{"Ogbomoso", "iseyin"}, State: "Oyo"},
		{Value: "oyo-fallback", Name: "Oyo fallback", Price: domain.NewMoney(3000), CustomCityTriggers: []string{"ogbomoso"}, State: "Oyo"},
	}
}

func validForm() Form {
	return Form{
		FirstName: "Ada",
		LastName:  "Obi",
		Email:     "ada@example.com",
		Phone:     "08031234567",
		Address:   "12 Marina Road",
		Country:   "Nigeria",
		State:     "Lagos",
	}
}

type flowFixture struct {
	flow   *Flow
	cart   *MockCart
	orders *MockOrderWriter
	calls  []string
	ids    int
}

func newFlowFixture(lines ...domain.CartLine) *flowFixture {
	fx := &flowFixture{}
	fx.cart = &MockCart{Lines: lines, Calls: &fx.calls}
	fx.orders = &MockOrderWriter{Calls: &fx.calls}
	fx.flow = NewFlow(Deps{
		Carts:  &MockCartSource{Cart: fx.cart},
		Orders: fx.orders,
		Settings: Settings{
			PaystackPublicKey: "pk_test_123",
			Bank:              BankDetails{BankName: "Test Bank", AccountName: "Glow Skincare", AccountNumber: "0123456789"},
			WhatsAppNumber:    "+234 801 234 5678",
			SupportContact:    "support@glow.test",
		},
		Now: func() time.Time { return fixedNow },
		NewID: func() string {
			fx.ids++
			return "id-" + strconv.Itoa(fx.ids)
		},
	})
	return fx
}

// readySession returns a session with a valid form and a listed option.
func (fx *flowFixture) readySession() *Session {
	s := fx.flow.Start(domain.NewViewer("user-1", nil), testOptions())
	s.Form = validForm()
	if err := s.SelectDelivery("lagos-island", ""); err != nil {
		panic(err)
	}
	return s
}
