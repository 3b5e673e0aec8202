package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
)

// Cart is one user's cart as seen by checkout: a read-only snapshot plus the
// two mutations checkout may request.
type Cart interface {
	Snapshot(ctx context.Context) (domain.CartSnapshot, error)
	Clear(ctx context.Context) error
	RemoveItem(ctx context.Context, productID string) error
}

type CartSource interface {
	For(userID string) Cart
}

type OrderWriter interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
}

type BankDetails struct {
	BankName      string `json:"bank_name" yaml:"bank_name"`
	AccountName   string `json:"account_name" yaml:"account_name"`
	AccountNumber string `json:"account_number" yaml:"account_number"`
}

type Settings struct {
	Currency          string
	PaystackPublicKey string
	MinPhoneLength    int
	Bank              BankDetails
	WhatsAppNumber    string
	SupportContact    string
}

type Deps struct {
	Carts    CartSource
	Orders   OrderWriter
	Settings Settings
	Logger   *zap.Logger
	Now      func() time.Time
	NewID    func() string
}

// Flow drives one checkout session through form entry, method choice and
// payment. It never loads or saves sessions itself.
type Flow struct {
	carts    CartSource
	orders   OrderWriter
	settings Settings
	log      *zap.Logger
	now      func() time.Time
	newID    func() string
}

func NewFlow(deps Deps) *Flow {
	f := &Flow{
		carts:    deps.Carts,
		orders:   deps.Orders,
		settings: deps.Settings,
		log:      deps.Logger,
		now:      deps.Now,
		newID:    deps.NewID,
	}
	if f.log == nil {
		f.log = zap.NewNop()
	}
	if f.now == nil {
		f.now = time.Now
	}
	if f.newID == nil {
		f.newID = uuid.NewString
	}
	if f.settings.Currency == "" {
		f.settings.Currency = domain.DefaultCurrency
	}
	if f.settings.MinPhoneLength <= 0 {
		f.settings.MinPhoneLength = DefaultMinPhoneLength
	}
	return f
}

type PaymentMethodOption struct {
	ID    domain.PaymentMethod `json:"id"`
	Label string               `json:"label"`
}

type MethodChoice struct {
	Methods []PaymentMethodOption `json:"methods"`
	Totals  Totals                `json:"totals"`
}

type Summary struct {
	ID          string                  `json:"id"`
	Status      domain.CheckoutStatus   `json:"status"`
	Form        Form                    `json:"form"`
	Delivery    DeliverySelection       `json:"delivery"`
	Options     []domain.DeliveryOption `json:"options"`
	Cart        domain.CartSnapshot     `json:"cart"`
	Totals      Totals                  `json:"totals"`
	PaymentDone bool                    `json:"payment_done"`
	OrderID     string                  `json:"order_id,omitempty"`
}

// Start opens a session for the viewer over a frozen copy of the delivery
// options. Names and email are prefilled from the profile.
func (f *Flow) Start(viewer domain.Viewer, options []domain.DeliveryOption) *Session {
	now := f.now()
	frozen := make([]domain.DeliveryOption, len(options))
	copy(frozen, options)

	s := &Session{
		ID:        f.newID(),
		UserID:    viewer.UserID,
		Status:    domain.CheckoutStatusFormEntry,
		Options:   frozen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if p := viewer.Profile; p != nil {
		s.Form.FirstName = p.FirstName
		s.Form.LastName = p.LastName
		s.Form.Email = p.Email
	}
	return s
}

// Summary recomputes totals from the pinned cart, or the live cart when
// nothing is pinned yet.
func (f *Flow) Summary(ctx context.Context, s *Session) (*Summary, error) {
	cart, err := f.cartFor(ctx, s)
	if err != nil {
		return nil, err
	}
	return &Summary{
		ID:          s.ID,
		Status:      s.Status,
		Form:        s.Form,
		Delivery:    s.Delivery,
		Options:     s.AvailableOptions(),
		Cart:        cart,
		Totals:      f.totals(s, cart),
		PaymentDone: s.PaymentDone,
		OrderID:     s.OrderID,
	}, nil
}

// Proceed validates the form and opens the method choice. The cart is pinned
// into the session so the order matches the amount shown and charged.
func (f *Flow) Proceed(ctx context.Context, s *Session) (*MethodChoice, error) {
	switch s.Status {
	case domain.CheckoutStatusMethodChoice:
		return f.methodChoice(ctx, s)
	case domain.CheckoutStatusBankTransfer:
		if err := s.transition(domain.CheckoutStatusMethodChoice); err != nil {
			return nil, err
		}
		return f.methodChoice(ctx, s)
	case domain.CheckoutStatusFormEntry:
	default:
		return nil, illegal(s.Status, domain.CheckoutStatusValidated)
	}

	if errs := Validate(s.Form, f.settings.MinPhoneLength); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	snapshot, err := f.carts.For(s.UserID).Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if snapshot.IsEmpty() {
		return nil, ErrEmptyCart
	}

	if err := s.transition(domain.CheckoutStatusValidated); err != nil {
		return nil, err
	}
	if err := s.transition(domain.CheckoutStatusMethodChoice); err != nil {
		return nil, err
	}
	s.Cart = &snapshot
	s.UpdatedAt = f.now()
	return f.methodChoice(ctx, s)
}

// RemoveItem forwards the removal to the cart and sends the session back to
// form entry, since the pinned amount is no longer valid.
func (f *Flow) RemoveItem(ctx context.Context, s *Session, productID string) error {
	if err := s.reopenForm(); err != nil {
		return err
	}
	if err := f.carts.For(s.UserID).RemoveItem(ctx, productID); err != nil {
		return fmt.Errorf("failed to remove item %s: %w", productID, err)
	}
	s.UpdatedAt = f.now()
	return nil
}

func (f *Flow) methodChoice(ctx context.Context, s *Session) (*MethodChoice, error) {
	cart, err := f.cartFor(ctx, s)
	if err != nil {
		return nil, err
	}
	return &MethodChoice{
		Methods: []PaymentMethodOption{
			{ID: domain.PaymentMethodPaystack, Label: "Pay with card (Paystack)"},
			{ID: domain.PaymentMethodBankTransfer, Label: "Bank transfer"},
		},
		Totals: f.totals(s, cart),
	}, nil
}

func (f *Flow) cartFor(ctx context.Context, s *Session) (domain.CartSnapshot, error) {
	if s.Cart != nil {
		return *s.Cart, nil
	}
	snapshot, err := f.carts.For(s.UserID).Snapshot(ctx)
	if err != nil {
		return domain.CartSnapshot{}, fmt.Errorf("failed to get cart: %w", err)
	}
	return snapshot, nil
}

func (f *Flow) totals(s *Session, cart domain.CartSnapshot) Totals {
	currency := cart.Currency
	if currency == "" {
		currency = f.settings.Currency
	}
	return ComputeTotals(cart.Subtotal, s.Delivery.Quote(), currency)
}

// clearCart is issued after the order write returned, whatever its result.
func (f *Flow) clearCart(ctx context.Context, s *Session) {
	if err := f.carts.For(s.UserID).Clear(ctx); err != nil {
		logger.FromContext(ctx, f.log).Error("failed to clear cart",
			zap.String("checkout_id", s.ID),
			zap.String("user_id", s.UserID),
			zap.Error(err))
	}
}
