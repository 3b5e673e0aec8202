package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/repository"
)

const deliveryOptionsKey = "delivery_options"

type CatalogService struct {
	repo  repository.CatalogRepository
	cache cache.OptionsCache
	log   *zap.Logger
	sfg   singleflight.Group
}

func NewCatalogService(repo repository.CatalogRepository, cache cache.OptionsCache, log *zap.Logger) *CatalogService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogService{repo: repo, cache: cache, log: log}
}

func (s *CatalogService) ListProducts(ctx context.Context, categoryID string) ([]*domain.Product, error) {
	return s.repo.ListProducts(ctx, categoryID)
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

// DeliveryOptions returns all options in declaration order, from the cache
// when possible.
func (s *CatalogService) DeliveryOptions(ctx context.Context) ([]domain.DeliveryOption, error) {
	v, err, _ := s.sfg.Do(deliveryOptionsKey, func() (interface{}, error) {
		options, err := s.cache.GetOptions(ctx)
		if err == nil {
			return options, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.FromContext(ctx, s.log).Warn("delivery options cache error", zap.Error(err))
		}

		options, err = s.repo.ListDeliveryOptions(ctx)
		if err != nil {
			return nil, err
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := s.cache.SetOptions(ctx, options); err != nil {
				s.log.Warn("delivery options cache set error", zap.Error(err))
			}
		}()
		return options, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.DeliveryOption), nil
}

// DeliveryOptionsForState keeps options scoped to state plus unscoped ones.
// An empty state returns everything.
func (s *CatalogService) DeliveryOptionsForState(ctx context.Context, state string) ([]domain.DeliveryOption, error) {
	options, err := s.DeliveryOptions(ctx)
	if err != nil {
		return nil, err
	}
	if state == "" {
		return options, nil
	}
	filtered := make([]domain.DeliveryOption, 0, len(options))
	for _, option := range options {
		if option.AvailableIn(state) {
			filtered = append(filtered, option)
		}
	}
	return filtered, nil
}
