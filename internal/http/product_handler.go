package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/messaging"
)

type CatalogReader interface {
	ListProducts(ctx context.Context, categoryID string) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	DeliveryOptionsForState(ctx context.Context, state string) ([]domain.DeliveryOption, error)
}

type ProductHandler struct {
	catalog        CatalogReader
	whatsAppNumber string
	timeout        time.Duration
	log            *zap.Logger
}

func NewProductHandler(catalog CatalogReader, whatsAppNumber string, timeout time.Duration, log *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalog:        catalog,
		whatsAppNumber: whatsAppNumber,
		timeout:        timeout,
		log:            log,
	}
}

type InquiryResponse struct {
	ProductID string `json:"product_id"`
	Link      string `json:"link"`
}

// GET /api/v1/products?category=
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.ListProducts(ctx, r.URL.Query().Get("category"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	if products == nil {
		products = []*domain.Product{}
	}
	respondJSON(w, http.StatusOK, products)
}

// GET /api/v1/products/{product_id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	product, err := h.catalog.GetProduct(ctx, chi.URLParam(r, "product_id"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// GET /api/v1/products/{product_id}/inquiry
func (h *ProductHandler) Inquiry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if h.whatsAppNumber == "" {
		respondError(w, http.StatusNotFound, "not_configured", "no merchant contact configured")
		return
	}
	product, err := h.catalog.GetProduct(ctx, chi.URLParam(r, "product_id"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, InquiryResponse{
		ProductID: product.ID,
		Link:      messaging.InquiryLink(h.whatsAppNumber, product),
	})
}

// GET /api/v1/categories
func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categories, err := h.catalog.ListCategories(ctx)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	if categories == nil {
		categories = []*domain.Category{}
	}
	respondJSON(w, http.StatusOK, categories)
}

// GET /api/v1/delivery-options?state=
func (h *ProductHandler) DeliveryOptions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	options, err := h.catalog.DeliveryOptionsForState(ctx, r.URL.Query().Get("state"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	if options == nil {
		options = []domain.DeliveryOption{}
	}
	respondJSON(w, http.StatusOK, options)
}
