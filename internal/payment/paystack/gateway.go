package paystack

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/logger"
)

const statusSuccess = "success"

type Verifier interface {
	Verify(ctx context.Context, reference string) (*Transaction, error)
}

// CallbackGateways turns widget callbacks into checkout gateways. Without a
// verifier the callback is trusted as reported.
type CallbackGateways struct {
	verifier Verifier
	log      *zap.Logger
}

func NewCallbackGateways(verifier Verifier, log *zap.Logger) *CallbackGateways {
	if log == nil {
		log = zap.NewNop()
	}
	return &CallbackGateways{verifier: verifier, log: log}
}

func (g *CallbackGateways) FromCallback(reference string, cancelled bool) checkout.PaymentGateway {
	return checkout.GatewayFunc(func(ctx context.Context, req checkout.PaymentRequest) (checkout.PaymentOutcome, error) {
		if cancelled {
			return checkout.Cancelled(), nil
		}
		if reference == "" {
			return checkout.PaymentOutcome{}, ErrMissingReference
		}
		if g.verifier == nil {
			logger.FromContext(ctx, g.log).Debug("trusting unverified card callback", zap.String("reference", reference))
			return checkout.Completed(reference), nil
		}

		// a verified reference from another checkout must not complete this one
		if req.Reference != "" && reference != req.Reference {
			return checkout.PaymentOutcome{}, fmt.Errorf("%w: got %q", ErrReferenceMismatch, reference)
		}
		tx, err := g.verifier.Verify(ctx, reference)
		if err != nil {
			return checkout.PaymentOutcome{}, err
		}
		if tx.Reference != "" && tx.Reference != reference {
			return checkout.PaymentOutcome{}, fmt.Errorf("%w: gateway returned %q", ErrReferenceMismatch, tx.Reference)
		}
		if tx.Status != statusSuccess {
			return checkout.PaymentOutcome{}, fmt.Errorf("%w: status %q", ErrVerificationFailed, tx.Status)
		}
		if tx.Amount != req.AmountMinor || (tx.Currency != "" && !strings.EqualFold(tx.Currency, req.Currency)) {
			return checkout.PaymentOutcome{}, fmt.Errorf("%w: paid %d %s, expected %d %s",
				ErrAmountMismatch, tx.Amount, tx.Currency, req.AmountMinor, req.Currency)
		}
		return checkout.Completed(reference), nil
	})
}
