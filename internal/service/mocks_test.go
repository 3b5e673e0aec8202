package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/repository"
)

type mockCartRepository struct {
	m        sync.RWMutex
	carts    map[string]*domain.Cart
	err      error
	getCalls atomic.Int32
	gate     chan struct{}
	afterGet func()
}

func newMockCartRepository() *mockCartRepository {
	return &mockCartRepository{carts: map[string]*domain.Cart{}}
}

func (m *mockCartRepository) GetCart(_ context.Context, userID string) (*domain.Cart, error) {
	m.getCalls.Add(1)
	if m.gate != nil {
		<-m.gate
	}
	m.m.RLock()
	if m.err != nil {
		m.m.RUnlock()
		return nil, m.err
	}
	cart, ok := m.carts[userID]
	if !ok {
		m.m.RUnlock()
		return nil, repository.ErrCartNotFound
	}
	copied := *cart
	copied.Lines = append([]domain.CartLine(nil), cart.Lines...)
	m.m.RUnlock()

	if m.afterGet != nil {
		m.afterGet()
	}
	return &copied, nil
}

func (m *mockCartRepository) UpsertCart(_ context.Context, c *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.carts[c.UserID] = c
	return m.err
}

func (m *mockCartRepository) AddItem(_ context.Context, userID string, item domain.CartLine) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	cart, ok := m.carts[userID]
	if !ok {
		cart = &domain.Cart{UserID: userID}
		m.carts[userID] = cart
	}
	for i := range cart.Lines {
		if cart.Lines[i].ProductID == item.ProductID {
			if cart.Lines[i].Quantity+item.Quantity > domain.MaxLineQuantity {
				return repository.ErrQuantityLimit
			}
			cart.Lines[i].Quantity += item.Quantity
			return nil
		}
	}
	cart.Lines = append(cart.Lines, item)
	return nil
}

func (m *mockCartRepository) UpdateItemQuantity(_ context.Context, userID string, productID string, quantity int) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if cart, ok := m.carts[userID]; ok {
		for i := range cart.Lines {
			if cart.Lines[i].ProductID == productID {
				cart.Lines[i].Quantity = quantity
				return nil
			}
		}
	}
	return repository.ErrItemNotFound
}

func (m *mockCartRepository) RemoveItem(_ context.Context, userID string, productID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	cart, ok := m.carts[userID]
	if !ok {
		return repository.ErrCartNotFound
	}
	for i, line := range cart.Lines {
		if line.ProductID == productID {
			cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
			break
		}
	}
	return nil
}

func (m *mockCartRepository) DeleteCart(_ context.Context, userID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.carts[userID]; !ok {
		return repository.ErrCartNotFound
	}
	delete(m.carts, userID)
	return nil
}

type mockCache struct {
	m        sync.RWMutex
	carts    map[string]*domain.Cart
	versions map[string]int64
	options  []domain.DeliveryOption
	err      error
}

func newMockCache() *mockCache {
	return &mockCache{carts: map[string]*domain.Cart{}, versions: map[string]int64{}}
}

func (m *mockCache) Get(_ context.Context, userID string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	cart, ok := m.carts[userID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return cart, nil
}

func (m *mockCache) Version(_ context.Context, userID string) (int64, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.versions[userID], m.err
}

func (m *mockCache) Set(_ context.Context, userID string, cart *domain.Cart, version int64) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.versions[userID] != version {
		return cache.ErrStaleFill
	}
	m.carts[userID] = cart
	return nil
}

func (m *mockCache) Delete(_ context.Context, userID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.versions[userID]++
	delete(m.carts, userID)
	return m.err
}

func (m *mockCache) GetOptions(context.Context) ([]domain.DeliveryOption, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.options == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.options, nil
}

func (m *mockCache) SetOptions(_ context.Context, options []domain.DeliveryOption) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.options = options
	return nil
}

func (m *mockCache) cached(userID string) bool {
	m.m.RLock()
	defer m.m.RUnlock()
	_, ok := m.carts[userID]
	return ok
}

func (m *mockCache) cachedOptions() bool {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.options != nil
}

type mockCatalogRepository struct {
	products    map[string]*domain.Product
	options     []domain.DeliveryOption
	err         error
	optionCalls atomic.Int32
}

func (m *mockCatalogRepository) ListProducts(_ context.Context, categoryID string) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, p := range m.products {
		if categoryID == "" || p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, m.err
}

func (m *mockCatalogRepository) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func (m *mockCatalogRepository) ListCategories(context.Context) ([]*domain.Category, error) {
	return nil, m.err
}

func (m *mockCatalogRepository) ListDeliveryOptions(context.Context) ([]domain.DeliveryOption, error) {
	m.optionCalls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return m.options, nil
}

type mockOrderRepository struct {
	m      sync.Mutex
	orders []*domain.Order
	err    error
}

func (m *mockOrderRepository) CreateOrder(_ context.Context, order *domain.Order) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.orders = append(m.orders, order)
	return nil
}

func (m *mockOrderRepository) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	for _, o := range m.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (m *mockOrderRepository) ListOrdersByUserID(_ context.Context, userID string, status domain.OrderStatus) ([]*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	var out []*domain.Order
	for _, o := range m.orders {
		if o.UserID == userID && (status == "" || o.Status == status) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOrderRepository) ListOrders(_ context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	var out []*domain.Order
	for _, o := range m.orders {
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOrderRepository) UpdateOrderStatus(_ context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	for _, o := range m.orders {
		if o.ID == id {
			o.Status = status
			return o, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

type outboxRow struct {
	aggregateID string
	eventType   string
	payload     []byte
}

type mockOutbox struct {
	rows []outboxRow
	err  error
}

func (m *mockOutbox) InsertOutboxEvent(_ context.Context, aggregateID, eventType string, payload []byte) error {
	if m.err != nil {
		return m.err
	}
	m.rows = append(m.rows, outboxRow{aggregateID, eventType, payload})
	return nil
}

func (m *mockOutbox) GetUnprocessedEvents(context.Context, int) ([]*repository.OutboxEvent, error) {
	return nil, nil
}

func (m *mockOutbox) MarkEventAsProcessed(context.Context, int64) error {
	return nil
}

func (m *mockOutbox) DeleteProcessedBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type mockProfiles struct {
	profiles map[string]*domain.Profile
	err      error
}

func (m *mockProfiles) GetProfile(_ context.Context, userID string) (*domain.Profile, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.profiles[userID]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	return p, nil
}

// memorySessionStore implements checkout.SessionStore with the same version
// check as the Redis store
type memorySessionStore struct {
	m        sync.Mutex
	sessions map[string][]byte
	saves    int
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: map[string][]byte{}}
}

func (m *memorySessionStore) Create(_ context.Context, s *checkout.Session) error {
	m.m.Lock()
	defer m.m.Unlock()
	s.Version = 1
	m.sessions[s.ID] = mustJSON(s)
	return nil
}

func (m *memorySessionStore) Get(_ context.Context, id string) (*checkout.Session, error) {
	m.m.Lock()
	defer m.m.Unlock()
	data, ok := m.sessions[id]
	if !ok {
		return nil, checkout.ErrSessionNotFound
	}
	var s checkout.Session
	mustUnmarshal(data, &s)
	return &s, nil
}

func (m *memorySessionStore) Save(_ context.Context, s *checkout.Session) error {
	m.m.Lock()
	defer m.m.Unlock()
	data, ok := m.sessions[s.ID]
	if !ok {
		return checkout.ErrSessionNotFound
	}
	var stored checkout.Session
	mustUnmarshal(data, &stored)
	if stored.Version != s.Version {
		return checkout.ErrSessionConflict
	}
	s.Version++
	m.sessions[s.ID] = mustJSON(s)
	m.saves++
	return nil
}

type mockGateways struct {
	reference string
	cancelled bool
}

func (m *mockGateways) FromCallback(reference string, cancelled bool) checkout.PaymentGateway {
	m.reference, m.cancelled = reference, cancelled
	return checkout.GatewayFunc(func(context.Context, checkout.PaymentRequest) (checkout.PaymentOutcome, error) {
		if cancelled {
			return checkout.Cancelled(), nil
		}
		return checkout.Completed(reference), nil
	})
}
