package checkout

import "context"

type CustomField struct {
	DisplayName  string `json:"display_name"`
	VariableName string `json:"variable_name"`
	Value        string `json:"value"`
}

type Metadata struct {
	CustomFields []CustomField `json:"custom_fields"`
}

// PaymentRequest is what the hosted card widget is opened with.
type PaymentRequest struct {
	Reference   string   `json:"reference"`
	Email       string   `json:"email"`
	AmountMinor int64    `json:"amount"`
	Currency    string   `json:"currency"`
	Metadata    Metadata `json:"metadata"`
}

type OutcomeKind string

const (
	OutcomeCompleted OutcomeKind = "completed"
	OutcomeCancelled OutcomeKind = "cancelled"
)

type PaymentOutcome struct {
	Kind      OutcomeKind `json:"kind"`
	Reference string      `json:"reference,omitempty"`
}

func Completed(reference string) PaymentOutcome {
	return PaymentOutcome{Kind: OutcomeCompleted, Reference: reference}
}

func Cancelled() PaymentOutcome {
	return PaymentOutcome{Kind: OutcomeCancelled}
}

// PaymentGateway resolves a card payment to its outcome. An error means the
// outcome is unknown; nothing is recorded in that case.
type PaymentGateway interface {
	AwaitOutcome(ctx context.Context, req PaymentRequest) (PaymentOutcome, error)
}

// GatewayFunc adapts a function to PaymentGateway.
type GatewayFunc func(ctx context.Context, req PaymentRequest) (PaymentOutcome, error)

func (f GatewayFunc) AwaitOutcome(ctx context.Context, req PaymentRequest) (PaymentOutcome, error) {
	return f(ctx, req)
}
