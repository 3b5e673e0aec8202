package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/repository"
)

type ProductReader interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

type CartService struct {
	repo    repository.CartRepository
	cache   cache.CartCache
	catalog ProductReader
	log     *zap.Logger
	sfg     singleflight.Group // Prevents cache stampede
}

func NewCartService(repo repository.CartRepository, cache cache.CartCache, catalog ProductReader, log *zap.Logger) *CartService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CartService{
		repo:    repo,
		cache:   cache,
		catalog: catalog,
		log:     log,
	}
}

func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.FromContext(ctx, s.log).Warn("cache get error", zap.String("user_id", userID), zap.Error(err))
		}

		// taken before the repository read; a write in between makes the fill stale
		version, verr := s.cache.Version(ctx, userID)

		cart, err = s.repo.GetCart(ctx, userID)
		if errors.Is(err, repository.ErrCartNotFound) {
			now := time.Now().UTC()
			return &domain.Cart{UserID: userID, CreatedAt: now, UpdatedAt: now}, nil
		}
		if err != nil {
			return nil, err
		}
		if verr != nil {
			logger.FromContext(ctx, s.log).Warn("cache version error", zap.String("user_id", userID), zap.Error(verr))
			return cart, nil
		}

		setCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		err = s.cache.Set(setCtx, userID, cart, version)
		switch {
		case errors.Is(err, cache.ErrStaleFill):
			logger.FromContext(ctx, s.log).Debug("skipping stale cart fill", zap.String("user_id", userID))
		case err != nil:
			logger.FromContext(ctx, s.log).Warn("cache set error", zap.String("user_id", userID), zap.Error(err))
		}
		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Cart), nil
}

// AddItem copies name, price and image from the catalog into the cart line.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) error {
	if quantity < 1 || quantity > MaxLineQuantity {
		return ErrInvalidQuantity
	}
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if !product.InStock {
		return ErrProductUnavailable
	}

	currency := product.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	line := domain.CartLine{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Quantity:  quantity,
		Currency:  currency,
		Image:     product.ImageURL,
	}
	if err := s.repo.AddItem(ctx, userID, line); err != nil {
		if errors.Is(err, repository.ErrQuantityLimit) {
			return fmt.Errorf("%w: %s already has the maximum quantity", ErrInvalidQuantity, productID)
		}
		return fmt.Errorf("add item: %w", err)
	}

	s.invalidateCache(ctx, userID)
	return nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) error {
	if quantity < 1 || quantity > MaxLineQuantity {
		return ErrInvalidQuantity
	}
	if err := s.repo.UpdateItemQuantity(ctx, userID, productID, quantity); err != nil {
		return err
	}

	s.invalidateCache(ctx, userID)
	return nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) error {
	if err := s.repo.RemoveItem(ctx, userID, productID); err != nil {
		return err
	}

	s.invalidateCache(ctx, userID)
	return nil
}

// ClearCart is idempotent: clearing a cart that does not exist succeeds.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	if err := s.repo.DeleteCart(ctx, userID); err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		return err
	}

	s.invalidateCache(ctx, userID)
	return nil
}

// ClearIfUnchangedSince deletes the cart only when it was last modified at or
// before t. It reports whether the cart is gone afterwards.
func (s *CartService) ClearIfUnchangedSince(ctx context.Context, userID string, t time.Time) (bool, error) {
	cart, err := s.repo.GetCart(ctx, userID)
	if errors.Is(err, repository.ErrCartNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if cart.UpdatedAt.After(t) {
		return false, nil
	}
	if err := s.ClearCart(ctx, userID); err != nil {
		return false, err
	}
	return true, nil
}

// For returns the user's cart as checkout sees it.
func (s *CartService) For(userID string) checkout.Cart {
	return userCart{svc: s, userID: userID}
}

func (s *CartService) invalidateCache(ctx context.Context, userID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		logger.FromContext(ctx, s.log).Warn("cache invalidate error", zap.String("user_id", userID), zap.Error(err))
	}
}

type userCart struct {
	svc    *CartService
	userID string
}

func (c userCart) Snapshot(ctx context.Context) (domain.CartSnapshot, error) {
	cart, err := c.svc.GetCart(ctx, c.userID)
	if err != nil {
		return domain.CartSnapshot{}, err
	}
	return cart.Snapshot(time.Now().UTC()), nil
}

func (c userCart) Clear(ctx context.Context) error {
	return c.svc.ClearCart(ctx, c.userID)
}

func (c userCart) RemoveItem(ctx context.Context, productID string) error {
	return c.svc.RemoveItem(ctx, c.userID, productID)
}
