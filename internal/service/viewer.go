package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/repository"
)

type ProfileReader interface {
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
}

// ViewerResolver turns a user id into a Viewer once per request.
type ViewerResolver struct {
	profiles ProfileReader
	log      *zap.Logger
}

func NewViewerResolver(profiles ProfileReader, log *zap.Logger) *ViewerResolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &ViewerResolver{profiles: profiles, log: log}
}

// Resolve never fails: a missing profile, or a profile backend error, yields
// a plain customer.
func (r *ViewerResolver) Resolve(ctx context.Context, userID string) domain.Viewer {
	profile, err := r.profiles.GetProfile(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrProfileNotFound) {
			logger.FromContext(ctx, r.log).Warn("profile lookup failed", zap.String("user_id", userID), zap.Error(err))
		}
		return domain.NewViewer(userID, nil)
	}
	return domain.NewViewer(userID, profile)
}
