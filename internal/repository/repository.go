package repository

import (
	"context"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// CartRepository defines the interface for cart data operations
// Consumers define this interface, not the MongoDB implementation
type CartRepository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	UpsertCart(ctx context.Context, cart *domain.Cart) error
	// AddItem merges into an existing line; ErrQuantityLimit when the merged
	// quantity would exceed domain.MaxLineQuantity.
	AddItem(ctx context.Context, userID string, item domain.CartLine) error
	UpdateItemQuantity(ctx context.Context, userID string, productID string, quantity int) error
	RemoveItem(ctx context.Context, userID string, productID string) error
	DeleteCart(ctx context.Context, userID string) error
}

type CatalogRepository interface {
	ListProducts(ctx context.Context, categoryID string) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	ListDeliveryOptions(ctx context.Context) ([]domain.DeliveryOption, error)
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID string, status domain.OrderStatus) ([]*domain.Order, error)
	ListOrders(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
}

type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	UpsertProfile(ctx context.Context, p *domain.Profile) error
}

type OutboxRepository interface {
	InsertOutboxEvent(ctx context.Context, aggregateID, eventType string, payload []byte) error
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
	DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
