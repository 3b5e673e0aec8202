package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type OrderManager interface {
	ListOrders(ctx context.Context, viewer domain.Viewer, status domain.OrderStatus) ([]*domain.Order, error)
	GetOrder(ctx context.Context, viewer domain.Viewer, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, viewer domain.Viewer, id string, status domain.OrderStatus) (*domain.Order, error)
}

type OrdersHandler struct {
	orders  OrderManager
	timeout time.Duration
	log     *zap.Logger
}

func NewOrdersHandler(orders OrderManager, timeout time.Duration, log *zap.Logger) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		timeout: timeout,
		log:     log,
	}
}

type UpdateStatusRequestDTO struct {
	Status string `json:"status"`
}

// OrdersResponseDTO tells the client which view it got.
type OrdersResponseDTO struct {
	View   domain.Role     `json:"view"`
	Orders []*domain.Order `json:"orders"`
}

// GET /api/v1/orders?status=
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var status domain.OrderStatus
	if s := r.URL.Query().Get("status"); s != "" {
		parsed, err := domain.ParseOrderStatus(s)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_status", err.Error())
			return
		}
		status = parsed
	}

	orders, err := h.orders.ListOrders(ctx, viewer, status)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	respondJSON(w, http.StatusOK, OrdersResponseDTO{View: viewer.Role, Orders: orders})
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	order, err := h.orders.GetOrder(ctx, viewer, chi.URLParam(r, "order_id"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// PATCH /api/v1/admin/orders/{order_id}
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UpdateStatusRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_status", err.Error())
		return
	}

	order, err := h.orders.UpdateStatus(ctx, viewer, chi.URLParam(r, "order_id"), status)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}
