package checkout

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/messaging"
)

type BankTransferInstructions struct {
	Bank          BankDetails `json:"bank"`
	Amount        string      `json:"amount"`
	Totals        Totals      `json:"totals"`
	WhatsAppLabel string      `json:"whatsapp_number,omitempty"`
}

type BankTransferResult struct {
	Order        *domain.Order `json:"order"`
	WhatsAppLink string        `json:"whatsapp_link,omitempty"`
}

func (f *Flow) StartBankTransfer(ctx context.Context, s *Session) (*BankTransferInstructions, error) {
	if s.Status != domain.CheckoutStatusBankTransfer {
		if err := s.transition(domain.CheckoutStatusBankTransfer); err != nil {
			return nil, err
		}
	}
	s.UpdatedAt = f.now()

	cart, err := f.cartFor(ctx, s)
	if err != nil {
		return nil, err
	}
	totals := f.totals(s, cart)
	return &BankTransferInstructions{
		Bank:          f.settings.Bank,
		Amount:        totals.TotalDisplay,
		Totals:        totals,
		WhatsAppLabel: f.settings.WhatsAppNumber,
	}, nil
}

// ConfirmBankTransfer records the order as pending on the customer's word.
// If the write fails nothing else changes and the customer can confirm again.
func (f *Flow) ConfirmBankTransfer(ctx context.Context, s *Session) (*BankTransferResult, error) {
	if s.Status != domain.CheckoutStatusBankTransfer {
		return nil, illegal(s.Status, domain.CheckoutStatusCompleted)
	}
	cart, err := f.cartFor(ctx, s)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	order := BuildOrder(s, cart, domain.PaymentRecord{
		Method: domain.PaymentMethodBankTransfer,
		Status: domain.PaymentStatusPending,
	}, f.newID(), f.now())

	if err := f.orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to record order: %w", err)
	}
	f.clearCart(ctx, s)

	if err := s.transition(domain.CheckoutStatusCompleted); err != nil {
		return nil, err
	}
	s.PaymentDone = true
	s.OrderID = order.ID
	s.UpdatedAt = f.now()

	logger.FromContext(ctx, f.log).Info("bank transfer order placed",
		zap.String("checkout_id", s.ID),
		zap.String("order_id", order.ID))

	result := &BankTransferResult{Order: order}
	if f.settings.WhatsAppNumber != "" {
		result.WhatsAppLink = messaging.OrderLink(f.settings.WhatsAppNumber, order)
	}
	return result, nil
}
