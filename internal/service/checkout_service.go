package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
)

type DeliveryOptionSource interface {
	DeliveryOptions(ctx context.Context) ([]domain.DeliveryOption, error)
}

// GatewayFactory turns what the card widget posted back into a gateway the
// flow can await.
type GatewayFactory interface {
	FromCallback(reference string, cancelled bool) checkout.PaymentGateway
}

// CheckoutService loads a session, applies one flow step and saves it.
// Sessions belonging to another user are reported as not found.
type CheckoutService struct {
	flow     *checkout.Flow
	sessions checkout.SessionStore
	options  DeliveryOptionSource
	gateways GatewayFactory
	log      *zap.Logger
}

func NewCheckoutService(flow *checkout.Flow, sessions checkout.SessionStore, options DeliveryOptionSource, gateways GatewayFactory, log *zap.Logger) *CheckoutService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckoutService{flow: flow, sessions: sessions, options: options, gateways: gateways, log: log}
}

func (s *CheckoutService) Start(ctx context.Context, viewer domain.Viewer) (*checkout.Summary, error) {
	options, err := s.options.DeliveryOptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load delivery options: %w", err)
	}
	sess := s.flow.Start(viewer, options)
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}
	logger.FromContext(ctx, s.log).Info("checkout started",
		zap.String("checkout_id", sess.ID),
		zap.String("user_id", viewer.UserID))
	return s.flow.Summary(ctx, sess)
}

func (s *CheckoutService) Summary(ctx context.Context, viewer domain.Viewer, id string) (*checkout.Summary, error) {
	sess, err := s.load(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	return s.flow.Summary(ctx, sess)
}

func (s *CheckoutService) UpdateContact(ctx context.Context, viewer domain.Viewer, id string, c checkout.ContactDetails) (*checkout.Summary, error) {
	return s.edit(ctx, viewer, id, func(sess *checkout.Session) error {
		return sess.UpdateContact(c)
	})
}

func (s *CheckoutService) SelectCountry(ctx context.Context, viewer domain.Viewer, id, country string) (*checkout.Summary, error) {
	return s.edit(ctx, viewer, id, func(sess *checkout.Session) error {
		return sess.SelectCountry(country)
	})
}

func (s *CheckoutService) SelectState(ctx context.Context, viewer domain.Viewer, id, state string) (*checkout.Summary, error) {
	return s.edit(ctx, viewer, id, func(sess *checkout.Session) error {
		return sess.SelectState(state)
	})
}

func (s *CheckoutService) SelectDelivery(ctx context.Context, viewer domain.Viewer, id, location, city string) (*checkout.Summary, error) {
	return s.edit(ctx, viewer, id, func(sess *checkout.Session) error {
		return sess.SelectDelivery(location, city)
	})
}

func (s *CheckoutService) RemoveItem(ctx context.Context, viewer domain.Viewer, id, productID string) (*checkout.Summary, error) {
	return s.edit(ctx, viewer, id, func(sess *checkout.Session) error {
		return s.flow.RemoveItem(ctx, sess, productID)
	})
}

func (s *CheckoutService) Proceed(ctx context.Context, viewer domain.Viewer, id string) (*checkout.MethodChoice, error) {
	return step(ctx, s, viewer, id, func(sess *checkout.Session) (*checkout.MethodChoice, error) {
		return s.flow.Proceed(ctx, sess)
	})
}

func (s *CheckoutService) StartPaystack(ctx context.Context, viewer domain.Viewer, id string) (*checkout.PaystackInit, error) {
	return step(ctx, s, viewer, id, func(sess *checkout.Session) (*checkout.PaystackInit, error) {
		return s.flow.StartPaystack(ctx, sess)
	})
}

func (s *CheckoutService) CompletePaystack(ctx context.Context, viewer domain.Viewer, id, reference string, cancelled bool) (*checkout.PaystackResult, error) {
	gateway := s.gateways.FromCallback(reference, cancelled)
	return step(ctx, s, viewer, id, func(sess *checkout.Session) (*checkout.PaystackResult, error) {
		return s.flow.CompletePaystack(ctx, sess, gateway)
	})
}

func (s *CheckoutService) StartBankTransfer(ctx context.Context, viewer domain.Viewer, id string) (*checkout.BankTransferInstructions, error) {
	return step(ctx, s, viewer, id, func(sess *checkout.Session) (*checkout.BankTransferInstructions, error) {
		return s.flow.StartBankTransfer(ctx, sess)
	})
}

func (s *CheckoutService) ConfirmBankTransfer(ctx context.Context, viewer domain.Viewer, id string) (*checkout.BankTransferResult, error) {
	return step(ctx, s, viewer, id, func(sess *checkout.Session) (*checkout.BankTransferResult, error) {
		return s.flow.ConfirmBankTransfer(ctx, sess)
	})
}

func (s *CheckoutService) load(ctx context.Context, viewer domain.Viewer, id string) (*checkout.Session, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.UserID != viewer.UserID {
		return nil, checkout.ErrSessionNotFound
	}
	return sess, nil
}

func (s *CheckoutService) edit(ctx context.Context, viewer domain.Viewer, id string, fn func(*checkout.Session) error) (*checkout.Summary, error) {
	sess, err := step(ctx, s, viewer, id, func(sess *checkout.Session) (*checkout.Session, error) {
		return sess, fn(sess)
	})
	if err != nil {
		return nil, err
	}
	return s.flow.Summary(ctx, sess)
}

// step saves the session only when fn succeeded.
func step[T any](ctx context.Context, s *CheckoutService, viewer domain.Viewer, id string, fn func(*checkout.Session) (T, error)) (T, error) {
	var zero T
	sess, err := s.load(ctx, viewer, id)
	if err != nil {
		return zero, err
	}
	out, err := fn(sess)
	if err != nil {
		return zero, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return zero, err
	}
	return out, nil
}
