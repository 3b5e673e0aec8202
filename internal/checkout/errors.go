package checkout

import (
	"errors"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

var (
	ErrEmptyCart             = errors.New("cart is empty, nothing to checkout")
	ErrIllegalTransition     = errors.New("illegal transition of checkout status")
	ErrUnknownDeliveryOption = errors.New("unknown delivery option")
	ErrInvalidForm           = errors.New("checkout form is invalid")
	ErrSessionNotFound       = errors.New("checkout session not found")
	ErrSessionConflict       = errors.New("checkout session was modified concurrently")
)

func illegal(from, to domain.CheckoutStatus) error {
	return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
}
