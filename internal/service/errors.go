package service

import (
	"errors"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

var (
	ErrInvalidQuantity    = errors.New("quantity must be between 1 and 99")
	ErrProductUnavailable = errors.New("product is out of stock")
	ErrForbidden          = errors.New("not allowed for this user")
)

const MaxLineQuantity = domain.MaxLineQuantity
