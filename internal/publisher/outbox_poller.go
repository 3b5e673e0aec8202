package publisher

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/repository"
)

const (
	TopicOrdersPlaced = "orders.placed"
	batchSize         = 100
	defaultRetention  = 7 * 24 * time.Hour
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OutboxPoller publishes outbox rows to Kafka in insertion order and prunes
// rows that were published longer than the retention ago.
type OutboxPoller struct {
	eventTick time.Duration
	pruneTick time.Duration
	retention time.Duration
	repo      repository.OutboxRepository
	writer    MessageWriter
	log       *zap.Logger
}

func NewKafkaWriter(brokers ...string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicOrdersPlaced,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
}

func NewOutboxPoller(repo repository.OutboxRepository, writer MessageWriter, log *zap.Logger) *OutboxPoller {
	if log == nil {
		log = zap.NewNop()
	}
	return &OutboxPoller{
		eventTick: time.Second,
		pruneTick: time.Hour,
		retention: defaultRetention,
		repo:      repo,
		writer:    writer,
		log:       log,
	}
}

func (p *OutboxPoller) Run(ctx context.Context) {
	eventTicker := time.NewTicker(p.eventTick)
	pruneTicker := time.NewTicker(p.pruneTick)
	defer eventTicker.Stop()
	defer pruneTicker.Stop()
	for {
		select {
		case <-eventTicker.C:
			p.processUnpublishedEvents(ctx)
		case <-pruneTicker.C:
			p.pruneProcessed(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OutboxPoller) Close() error {
	return p.writer.Close()
}

func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) {
	events, err := p.repo.GetUnprocessedEvents(ctx, batchSize)
	if err != nil {
		p.log.Error("failed to fetch outbox events", zap.Error(err))
		return
	}

	for _, event := range events {
		// stop at the first failure so a later event never overtakes an
		// earlier one for the same order
		if err := p.publish(ctx, event); err != nil {
			p.log.Error("failed to publish event", zap.Int64("event_id", event.ID), zap.Error(err))
			return
		}
		if err := p.repo.MarkEventAsProcessed(ctx, event.ID); err != nil {
			p.log.Error("failed to mark event as processed", zap.Int64("event_id", event.ID), zap.Error(err))
			return
		}
	}
}

func (p *OutboxPoller) pruneProcessed(ctx context.Context) {
	n, err := p.repo.DeleteProcessedBefore(ctx, time.Now().Add(-p.retention))
	if err != nil {
		p.log.Error("failed to prune outbox", zap.Error(err))
		return
	}
	if n > 0 {
		p.log.Info("pruned outbox", zap.Int64("rows", n))
	}
}

func (p *OutboxPoller) publish(ctx context.Context, event *repository.OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.AggregateId), // order id keeps one order on one partition
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}
