package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/repository"
)

const EventOrderPlaced = "order.placed"

// OrderPlacedEvent is the payload published for every recorded order.
type OrderPlacedEvent struct {
	OrderID       string               `json:"order_id"`
	UserID        string               `json:"user_id"`
	Total         domain.Money         `json:"total"`
	Currency      string               `json:"currency"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
	ItemCount     int                  `json:"item_count"`
	PlacedAt      time.Time            `json:"placed_at"`
}

type OrderService struct {
	repo   repository.OrderRepository
	outbox repository.OutboxRepository
	log    *zap.Logger
}

// NewOrderService builds the service. outbox may be nil, in which case no
// events are enqueued.
func NewOrderService(repo repository.OrderRepository, outbox repository.OutboxRepository, log *zap.Logger) *OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderService{repo: repo, outbox: outbox, log: log}
}

// CreateOrder writes the order document. The outbox row is best effort and
// never fails the write.
func (s *OrderService) CreateOrder(ctx context.Context, order *domain.Order) error {
	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return err
	}
	if s.outbox == nil {
		return nil
	}

	payload, err := json.Marshal(OrderPlacedEvent{
		OrderID:       order.ID,
		UserID:        order.UserID,
		Total:         order.Total,
		Currency:      order.Payment.Currency,
		PaymentMethod: order.Payment.Method,
		PaymentStatus: order.Payment.Status,
		ItemCount:     len(order.Items),
		PlacedAt:      order.CreatedAt,
	})
	if err == nil {
		err = s.outbox.InsertOutboxEvent(ctx, order.ID, EventOrderPlaced, payload)
	}
	if err != nil {
		logger.FromContext(ctx, s.log).Error("failed to enqueue order event",
			zap.String("order_id", order.ID),
			zap.Error(err))
	}
	return nil
}

// ListOrders returns the viewer's own orders, or every order for an admin,
// narrowed to status when it is set.
func (s *OrderService) ListOrders(ctx context.Context, viewer domain.Viewer, status domain.OrderStatus) ([]*domain.Order, error) {
	if viewer.CanManageOrders() {
		return s.repo.ListOrders(ctx, status)
	}
	return s.repo.ListOrdersByUserID(ctx, viewer.UserID, status)
}

func (s *OrderService) GetOrder(ctx context.Context, viewer domain.Viewer, id string) (*domain.Order, error) {
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.CanView(order) {
		return nil, ErrForbidden
	}
	return order, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, viewer domain.Viewer, id string, status domain.OrderStatus) (*domain.Order, error) {
	if !viewer.CanManageOrders() {
		return nil, ErrForbidden
	}
	order, err := s.repo.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx, s.log).Info("order status updated",
		zap.String("order_id", id),
		zap.String("status", string(status)),
		zap.String("by", viewer.UserID))
	return order, nil
}
