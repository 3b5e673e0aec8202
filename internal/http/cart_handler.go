package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type CartManager interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID, productID string, quantity int) error
	UpdateQuantity(ctx context.Context, userID, productID string, quantity int) error
	RemoveItem(ctx context.Context, userID, productID string) error
	ClearCart(ctx context.Context, userID string) error
}

type CartHandler struct {
	carts   CartManager
	timeout time.Duration
	log     *zap.Logger
}

func NewCartHandler(carts CartManager, timeout time.Duration, log *zap.Logger) *CartHandler {
	return &CartHandler{
		carts:   carts,
		timeout: timeout,
		log:     log,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartResponseDTO struct {
	UserID   string            `json:"user_id"`
	Items    []domain.CartLine `json:"items"`
	Subtotal domain.Money      `json:"subtotal"`
	Display  string            `json:"subtotal_display"`
}

func cartResponse(cart *domain.Cart) CartResponseDTO {
	items := cart.Lines
	if items == nil {
		items = []domain.CartLine{}
	}
	currency := domain.DefaultCurrency
	if len(items) > 0 && items[0].Currency != "" {
		currency = items[0].Currency
	}
	subtotal := cart.Subtotal()
	return CartResponseDTO{
		UserID:   cart.UserID,
		Items:    items,
		Subtotal: subtotal,
		Display:  subtotal.Format(currency),
	}
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	h.respondCart(ctx, w, r, viewer.UserID, http.StatusOK)
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	if err := h.carts.AddItem(ctx, viewer.UserID, req.ProductID, req.Quantity); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	h.respondCart(ctx, w, r, viewer.UserID, http.StatusCreated)
}

// PUT /api/v1/cart/items/{product_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UpdateQuantityRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.carts.UpdateQuantity(ctx, viewer.UserID, chi.URLParam(r, "product_id"), req.Quantity); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	h.respondCart(ctx, w, r, viewer.UserID, http.StatusOK)
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.carts.RemoveItem(ctx, viewer.UserID, chi.URLParam(r, "product_id")); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	h.respondCart(ctx, w, r, viewer.UserID, http.StatusOK)
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.carts.ClearCart(ctx, viewer.UserID); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) respondCart(ctx context.Context, w http.ResponseWriter, r *http.Request, userID string, status int) {
	cart, err := h.carts.GetCart(ctx, userID)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, status, cartResponse(cart))
}
