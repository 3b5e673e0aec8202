package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/payment/paystack"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/fjod/go_cart/storefront/internal/service"
)

// handleError maps service and domain errors to HTTP responses. Anything
// unrecognised is logged and returned as a 500 without details.
func handleError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var verr *checkout.ValidationError
	if errors.As(err, &verr) {
		respondJSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{
			ErrorResponse: ErrorResponse{Error: "please correct the highlighted fields", Code: "invalid_form"},
			Fields:        verr.Fields,
			FirstInvalid:  verr.Fields.First(),
		})
		return
	}

	var status int
	var code string
	switch {
	case errors.Is(err, checkout.ErrSessionNotFound),
		errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrItemNotFound),
		errors.Is(err, repository.ErrCartNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, checkout.ErrSessionConflict),
		errors.Is(err, repository.ErrDuplicateOrder):
		status, code = http.StatusConflict, "conflict"
	case errors.Is(err, checkout.ErrIllegalTransition):
		status, code = http.StatusConflict, "illegal_transition"
	case errors.Is(err, checkout.ErrEmptyCart):
		status, code = http.StatusConflict, "empty_cart"
	case errors.Is(err, service.ErrProductUnavailable):
		status, code = http.StatusConflict, "product_unavailable"
	case errors.Is(err, checkout.ErrUnknownDeliveryOption),
		errors.Is(err, checkout.ErrInvalidForm),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, paystack.ErrMissingReference):
		status, code = http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, service.ErrForbidden):
		status, code = http.StatusForbidden, "permission_denied"
	case errors.Is(err, paystack.ErrVerificationFailed),
		errors.Is(err, paystack.ErrAmountMismatch),
		errors.Is(err, paystack.ErrReferenceMismatch),
		errors.Is(err, paystack.ErrTransactionUnknown):
		status, code = http.StatusPaymentRequired, "payment_not_verified"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		status, code = http.StatusServiceUnavailable, "service_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		status, code = http.StatusGatewayTimeout, "timeout"
	default:
		logger.FromContext(r.Context(), log).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondError(w, status, code, err.Error())
}
