package cache

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// CartCache is a read-through cart cache. Every Delete bumps the user's
// version, and Set only stores a cart read at the current version.
type CartCache interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Version(ctx context.Context, userID string) (int64, error)
	Set(ctx context.Context, userID string, cart *domain.Cart, version int64) error
	Delete(ctx context.Context, userID string) error
}

// OptionsCache holds the delivery options list, which is read on every
// checkout start and changes only when the catalog is seeded.
type OptionsCache interface {
	GetOptions(ctx context.Context) ([]domain.DeliveryOption, error)
	SetOptions(ctx context.Context, options []domain.DeliveryOption) error
}

var (
	ErrCacheMiss = errors.New("cache miss")
	ErrStaleFill = errors.New("cart changed since it was read")
)
