package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/publisher"
	"github.com/fjod/go_cart/storefront/internal/service"
)

const (
	groupID           = "storefront-cart-cleanup"
	defaultRetryDelay = time.Second
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type CartClearer interface {
	ClearIfUnchangedSince(ctx context.Context, userID string, t time.Time) (bool, error)
}

// CartCleanup empties the buyer's cart for every placed order, catching
// carts whose in-request clear failed. Carts edited after the order are
// left alone.
type CartCleanup struct {
	carts      CartClearer
	reader     MessageReader
	retryDelay time.Duration
	log        *zap.Logger
}

func NewKafkaReader(brokers ...string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    publisher.TopicOrdersPlaced,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
}

func NewCartCleanup(carts CartClearer, reader MessageReader, log *zap.Logger) *CartCleanup {
	if log == nil {
		log = zap.NewNop()
	}
	return &CartCleanup{carts: carts, reader: reader, retryDelay: defaultRetryDelay, log: log}
}

// Run reads until ctx is done, pausing retryDelay after a failed read.
func (c *CartCleanup) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := c.processMessage(ctx); err != nil {
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.retryDelay):
			}
		}
	}
}

func (c *CartCleanup) Close() {
	if err := c.reader.Close(); err != nil {
		c.log.Error("error closing kafka reader", zap.Error(err))
	}
}

// processMessage handles one message. Only a failed read is returned; bad
// messages and clear failures are logged and skipped.
func (c *CartCleanup) processMessage(ctx context.Context) error {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		c.log.Error("error reading message", zap.Error(err))
		return err
	}
	if eventType(m) != service.EventOrderPlaced {
		return nil
	}

	var event service.OrderPlacedEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		c.log.Error("error parsing message", zap.Error(err))
		return nil
	}
	if event.UserID == "" {
		c.log.Warn("order event without user", zap.String("order_id", event.OrderID))
		return nil
	}

	cleared, err := c.carts.ClearIfUnchangedSince(ctx, event.UserID, event.PlacedAt)
	if err != nil {
		c.log.Error("failed to clear cart",
			zap.String("order_id", event.OrderID),
			zap.String("user_id", event.UserID),
			zap.Error(err))
		return nil
	}
	if !cleared {
		c.log.Debug("cart changed after order, kept", zap.String("user_id", event.UserID))
	}
	return nil
}

func eventType(m kafka.Message) string {
	for _, h := range m.Headers {
		if h.Key == "event_type" {
			return string(h.Value)
		}
	}
	return ""
}
