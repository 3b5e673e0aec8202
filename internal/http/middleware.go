package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
)

// UserIDHeader is set by the upstream auth proxy.
const UserIDHeader = "X-User-ID"

type viewerKey struct{}

type ViewerResolver interface {
	Resolve(ctx context.Context, userID string) domain.Viewer
}

// RequestIDMiddleware copies chi's request id into the logger context and
// echoes it back to the caller.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())
		if requestID == "" {
			requestID = r.Header.Get(middleware.RequestIDHeader)
		}
		if requestID != "" {
			w.Header().Set(middleware.RequestIDHeader, requestID)
		}
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), requestID)))
	})
}

// AuthMiddleware rejects requests without a user id and resolves the
// caller's role once for the whole request.
func AuthMiddleware(resolver ViewerResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get(UserIDHeader)
			if userID == "" {
				respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
				return
			}
			viewer := resolver.Resolve(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), viewer)))
		})
	}
}

// AdminOnly must run after AuthMiddleware.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer, ok := viewerFromContext(r.Context())
		if !ok || !viewer.CanManageOrders() {
			respondError(w, http.StatusForbidden, "permission_denied", "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithViewer(ctx context.Context, viewer domain.Viewer) context.Context {
	return context.WithValue(ctx, viewerKey{}, viewer)
}

func viewerFromContext(ctx context.Context) (domain.Viewer, bool) {
	viewer, ok := ctx.Value(viewerKey{}).(domain.Viewer)
	return viewer, ok && viewer.UserID != ""
}

// requireViewer writes the 401 itself when no viewer is present.
func requireViewer(w http.ResponseWriter, r *http.Request) (domain.Viewer, bool) {
	viewer, ok := viewerFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
	}
	return viewer, ok
}
