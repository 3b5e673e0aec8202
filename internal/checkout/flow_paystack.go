package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
)

// ErrPaymentPending is returned when the card widget has not reported back.
var ErrPaymentPending = errors.New("payment outcome not available yet")

type PaystackInit struct {
	PublicKey string         `json:"public_key"`
	Request   PaymentRequest `json:"request"`
}

type PaystackResult struct {
	Cancelled     bool          `json:"cancelled"`
	Reference     string        `json:"reference,omitempty"`
	Order         *domain.Order `json:"order,omitempty"`
	OrderRecorded bool          `json:"order_recorded"`
	Alert         string        `json:"alert,omitempty"`
	MethodChoice  *MethodChoice `json:"method_choice,omitempty"`
}

// StartPaystack returns the widget parameters and moves the session into
// the card payment. Form edits are rejected until the widget reports back.
// Calling it again while the widget is open re-issues the same reference, so
// a payment made in a lost tab still matches this session.
func (f *Flow) StartPaystack(ctx context.Context, s *Session) (*PaystackInit, error) {
	reopen := s.Status == domain.CheckoutStatusPaystack
	if err := s.transition(domain.CheckoutStatusPaystack); err != nil {
		return nil, err
	}
	if !reopen || s.PaymentReference == "" {
		s.PaymentReference = f.newID()
	}
	s.UpdatedAt = f.now()

	req, err := f.paymentRequest(ctx, s)
	if err != nil {
		return nil, err
	}
	return &PaystackInit{PublicKey: f.settings.PaystackPublicKey, Request: req}, nil
}

// CompletePaystack waits for the gateway outcome. On success the order is
// written and the cart cleared even if the write failed; the customer is then
// told to contact support with the reference.
func (f *Flow) CompletePaystack(ctx context.Context, s *Session, gateway PaymentGateway) (*PaystackResult, error) {
	if s.Status != domain.CheckoutStatusPaystack {
		return nil, illegal(s.Status, domain.CheckoutStatusCompleted)
	}
	req, err := f.paymentRequest(ctx, s)
	if err != nil {
		return nil, err
	}

	outcome, err := gateway.AwaitOutcome(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment outcome: %w", err)
	}
	log := logger.FromContext(ctx, f.log).With(zap.String("checkout_id", s.ID))

	if outcome.Kind == OutcomeCancelled {
		if err := s.transition(domain.CheckoutStatusCancelled); err != nil {
			return nil, err
		}
		if err := s.transition(domain.CheckoutStatusMethodChoice); err != nil {
			return nil, err
		}
		s.PaymentReference = ""
		s.UpdatedAt = f.now()
		log.Info("card payment cancelled")

		choice, err := f.methodChoice(ctx, s)
		if err != nil {
			return nil, err
		}
		return &PaystackResult{Cancelled: true, MethodChoice: choice}, nil
	}

	reference := outcome.Reference
	if reference == "" {
		reference = req.Reference
	}
	cart, err := f.cartFor(ctx, s)
	if err != nil {
		return nil, err
	}
	order := BuildOrder(s, cart, domain.PaymentRecord{
		Method:        domain.PaymentMethodPaystack,
		Status:        domain.PaymentStatusCompleted,
		TransactionID: reference,
		Currency:      req.Currency,
	}, f.newID(), f.now())

	result := &PaystackResult{Reference: reference, Order: order, OrderRecorded: true}
	writeErr := f.orders.CreateOrder(ctx, order)
	f.clearCart(ctx, s)

	if writeErr != nil {
		log.Error("paid order was not recorded",
			zap.String("reference", reference),
			zap.String("order_id", order.ID),
			zap.Error(writeErr))
		result.OrderRecorded = false
		result.Alert = f.unrecordedAlert(reference)
	} else {
		s.OrderID = order.ID
		log.Info("order placed", zap.String("order_id", order.ID), zap.String("reference", reference))
	}

	if err := s.transition(domain.CheckoutStatusCompleted); err != nil {
		return nil, err
	}
	s.PaymentDone = true
	s.UpdatedAt = f.now()
	return result, nil
}

func (f *Flow) unrecordedAlert(reference string) string {
	contact := f.settings.SupportContact
	if contact == "" {
		contact = "our support team"
	}
	return fmt.Sprintf("Your payment was received but we could not save your order. Please contact %s with your payment reference %s.", contact, reference)
}

func (f *Flow) paymentRequest(ctx context.Context, s *Session) (PaymentRequest, error) {
	cart, err := f.cartFor(ctx, s)
	if err != nil {
		return PaymentRequest{}, err
	}
	totals := f.totals(s, cart)

	name := strings.TrimSpace(s.Form.FirstName + " " + s.Form.LastName)
	city := s.Form.City
	if s.Delivery.Kind == SelectionOption {
		city = s.Delivery.OptionName
	}
	return PaymentRequest{
		Reference:   s.PaymentReference,
		Email:       strings.TrimSpace(s.Form.Email),
		AmountMinor: totals.Total.MinorUnits(),
		Currency:    totals.Currency,
		Metadata: Metadata{CustomFields: []CustomField{
			{DisplayName: "Customer Name", VariableName: "customer_name", Value: name},
			{DisplayName: "Phone Number", VariableName: "phone", Value: strings.TrimSpace(s.Form.Phone)},
			{DisplayName: "Address", VariableName: "address", Value: strings.TrimSpace(s.Form.Address)},
			{DisplayName: "City", VariableName: "city", Value: city},
			{DisplayName: "State", VariableName: "state", Value: s.Form.State},
			{DisplayName: "Country", VariableName: "country", Value: s.Form.Country},
		}},
	}, nil
}
