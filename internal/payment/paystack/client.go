// Package paystack verifies card payments reported back by the hosted
// Paystack widget.
package paystack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/logger"
)

const (
	DefaultBaseURL = "https://api.paystack.co"
	defaultTimeout = 10 * time.Second
)

var (
	ErrMissingReference   = errors.New("payment reference is required")
	ErrTransactionUnknown = errors.New("transaction not found")
	ErrVerificationFailed = errors.New("transaction was not successful")
	ErrAmountMismatch     = errors.New("transaction amount does not match checkout total")
	ErrReferenceMismatch  = errors.New("transaction reference does not belong to this checkout")
)

type Config struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

// Transaction is the subset of the verify response the storefront checks.
type Transaction struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	PaidAt    string `json:"paid_at"`
}

type verifyResponse struct {
	Status  bool         `json:"status"`
	Message string       `json:"message"`
	Data    *Transaction `json:"data"`
}

// Client calls the transaction verify endpoint behind a circuit breaker.
type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
	cb        *gobreaker.CircuitBreaker[*Transaction]
	log       *zap.Logger
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	c := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		secretKey: cfg.SecretKey,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   cfg.Timeout,
		},
		log: log,
	}
	c.cb = gobreaker.NewCircuitBreaker[*Transaction](gobreaker.Settings{
		Name:        "paystack-verify",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// an unknown reference is an answer, not an outage
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrTransactionUnknown)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return c
}

// Verify looks the transaction up by reference. The returned transaction may
// still be unsuccessful; callers check Status.
func (c *Client) Verify(ctx context.Context, reference string) (*Transaction, error) {
	if reference == "" {
		return nil, ErrMissingReference
	}
	tx, err := c.cb.Execute(func() (*Transaction, error) {
		return c.verify(ctx, reference)
	})
	if err != nil {
		logger.FromContext(ctx, c.log).Warn("paystack verify failed",
			zap.String("reference", reference),
			zap.Error(err))
		return nil, err
	}
	return tx, nil
}

func (c *Client) verify(ctx context.Context, reference string) (*Transaction, error) {
	endpoint := c.baseURL + "/transaction/verify/" + url.PathEscape(reference)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paystack request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest {
		return nil, fmt.Errorf("%w: %s", ErrTransactionUnknown, reference)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("paystack returned status %d", resp.StatusCode)
	}

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode paystack response: %w", err)
	}
	if !body.Status || body.Data == nil {
		return nil, fmt.Errorf("%w: %s", ErrTransactionUnknown, body.Message)
	}
	return body.Data, nil
}
