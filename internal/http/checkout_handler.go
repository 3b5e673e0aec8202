package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
)

type CheckoutManager interface {
	Start(ctx context.Context, viewer domain.Viewer) (*checkout.Summary, error)
	Summary(ctx context.Context, viewer domain.Viewer, id string) (*checkout.Summary, error)
	UpdateContact(ctx context.Context, viewer domain.Viewer, id string, c checkout.ContactDetails) (*checkout.Summary, error)
	SelectCountry(ctx context.Context, viewer domain.Viewer, id, country string) (*checkout.Summary, error)
	SelectState(ctx context.Context, viewer domain.Viewer, id, state string) (*checkout.Summary, error)
	SelectDelivery(ctx context.Context, viewer domain.Viewer, id, location, city string) (*checkout.Summary, error)
	RemoveItem(ctx context.Context, viewer domain.Viewer, id, productID string) (*checkout.Summary, error)
	Proceed(ctx context.Context, viewer domain.Viewer, id string) (*checkout.MethodChoice, error)
	StartPaystack(ctx context.Context, viewer domain.Viewer, id string) (*checkout.PaystackInit, error)
	CompletePaystack(ctx context.Context, viewer domain.Viewer, id, reference string, cancelled bool) (*checkout.PaystackResult, error)
	StartBankTransfer(ctx context.Context, viewer domain.Viewer, id string) (*checkout.BankTransferInstructions, error)
	ConfirmBankTransfer(ctx context.Context, viewer domain.Viewer, id string) (*checkout.BankTransferResult, error)
}

type CheckoutHandler struct {
	checkout CheckoutManager
	timeout  time.Duration
	log      *zap.Logger
}

func NewCheckoutHandler(checkout CheckoutManager, timeout time.Duration, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		timeout:  timeout,
		log:      log,
	}
}

type CountryRequestDTO struct {
	Country string `json:"country"`
}

type StateRequestDTO struct {
	State string `json:"state"`
}

type DeliveryRequestDTO struct {
	Location string `json:"location"`
	City     string `json:"city"`
}

type PaystackCallbackDTO struct {
	Reference string `json:"reference"`
	Cancelled bool   `json:"cancelled"`
}

// sessionStep runs one step against the session named in the path and writes
// its result.
func sessionStep[T any](h *CheckoutHandler, w http.ResponseWriter, r *http.Request, status int,
	fn func(ctx context.Context, viewer domain.Viewer, id string) (T, error)) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	out, err := fn(ctx, viewer, chi.URLParam(r, "checkout_id"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, status, out)
}

// POST /api/v1/checkout/sessions
func (h *CheckoutHandler) Start(w http.ResponseWriter, r *http.Request) {
	sessionStep(h, w, r, http.StatusCreated, func(ctx context.Context, viewer domain.Viewer, _ string) (*checkout.Summary, error) {
		return h.checkout.Start(ctx, viewer)
	})
}

// GET /api/v1/checkout/sessions/{checkout_id}
func (h *CheckoutHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sessionStep(h, w, r, http.StatusOK, h.checkout.Summary)
}

// PUT /api/v1/checkout/sessions/{checkout_id}/form
func (h *CheckoutHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	var req checkout.ContactDetails
	if !decodeJSON(w, r, &req) {
		return
	}
	sessionStep(h, w, r, http.StatusOK, func(ctx context.Context, viewer domain.Viewer, id string) (*checkout.Summary, error) {
		return h.checkout.UpdateContact(ctx, viewer, id, req)
	})
}

// PUT /api/v1/checkout/sessions/{checkout_id}/country
func (h *CheckoutHandler) SelectCountry(w http.ResponseWriter, r *http.Request) {
	var req CountryRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	sessionStep(h, w, r, http.StatusOK, func(ctx context.Context, viewer domain.Viewer, id string) (*checkout.Summary, error) {
		return h.checkout.SelectCountry(ctx, viewer, id, req.Country)
	})
}

// PUT /api/v1/checkout/sessions/{checkout_id}/state
func (h *CheckoutHandler) SelectState(w http.ResponseWriter, r *http.Request) {
	var req StateRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	sessionStep(h, w, r, http.StatusOK, func(ctx context.Context, viewer domain.Viewer, id string) (*checkout.Summary, error) {
		return h.checkout.SelectState(ctx, viewer, id, req.State)
	})
}

// PUT /api/v1/checkout/sessions/{checkout_id}/delivery
func (h *CheckoutHandler) SelectDelivery(w http.ResponseWriter, r *http.Request) {
	var req DeliveryRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	sessionStep(h, w, r, http.StatusOK, func(ctx context.Context, viewer domain.Viewer, id string) (*checkout.Summary, error) {
		return h.checkout.SelectDelivery(ctx, viewer, id, req.Location, req.City)
	})
}

// DELETE /api/v1/checkout/sessions/{checkout_id}/items/{product_id}
func (h *CheckoutHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	sessionStep(h, w, r, http.StatusOK, func(ctx context.Context, viewer domain.Viewer, id string) (*checkout.Summary, error) {
		return h.checkout.RemoveItem(ctx, viewer, id, productID)
	})
}

// POST /api/v1/checkout/sessions/{checkout_id}/proceed
func (h *CheckoutHandler) Proceed(w http.ResponseWriter, r *http.Request) {
	sessionStep(h, w, r, http.StatusOK, h.checkout.Proceed)
}

// POST /api/v1/checkout/sessions/{checkout_id}/paystack
func (h *CheckoutHandler) StartPaystack(w http.ResponseWriter, r *http.Request) {
	sessionStep(h, w, r, http.StatusOK, h.checkout.StartPaystack)
}

// POST /api/v1/checkout/sessions/{checkout_id}/paystack/callback
//
// A paid order that could not be recorded still answers 200, with
// order_recorded=false and the support alert.
func (h *CheckoutHandler) PaystackCallback(w http.ResponseWriter, r *http.Request) {
	var req PaystackCallbackDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	sessionStep(h, w, r, http.StatusOK, func(ctx context.Context, viewer domain.Viewer, id string) (*checkout.PaystackResult, error) {
		return h.checkout.CompletePaystack(ctx, viewer, id, req.Reference, req.Cancelled)
	})
}

// POST /api/v1/checkout/sessions/{checkout_id}/bank-transfer
func (h *CheckoutHandler) StartBankTransfer(w http.ResponseWriter, r *http.Request) {
	sessionStep(h, w, r, http.StatusOK, h.checkout.StartBankTransfer)
}

// POST /api/v1/checkout/sessions/{checkout_id}/bank-transfer/confirm
func (h *CheckoutHandler) ConfirmBankTransfer(w http.ResponseWriter, r *http.Request) {
	sessionStep(h, w, r, http.StatusCreated, h.checkout.ConfirmBankTransfer)
}
