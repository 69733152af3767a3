package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/example/mv-checkout/internal/domain/coupon"
	"github.com/example/mv-checkout/internal/domain/customer"
	"github.com/example/mv-checkout/internal/domain/order"
	"github.com/example/mv-checkout/internal/domain/store"
	"github.com/example/mv-checkout/internal/storage"
)

// MockRepository is an in-memory implementation of storage.Repository for
// tests. It records mutating calls and lets tests inject errors per method.
type MockRepository struct {
	mu sync.RWMutex

	Customers map[string]*customer.Customer // keyed by id
	Stores    map[string]*store.Store
	Stock     map[string]int
	Coupons   map[string]*coupon.Coupon // keyed by storeID+"/"+code
	Orders    map[string]*order.Order
	Items     map[string][]order.Item // keyed by order id

	// Recorded calls.
	CreateOrderCalls    []string // order ids
	DecrementCalls      []DecrementCall
	StatusUpdates       []StatusUpdate
	CreateCustomerCalls int
	UpdateCustomerCalls int

	// Injectable errors.
	CreateOrderErr       error
	CreateOrderItemsErr  error
	DecrementErr         error
	UpdateOrderStatusErr error
	FindOrdersErr        error
	GetCouponErr         error
	FindCustomerErr      error
}

type DecrementCall struct {
	ProductID string
	Quantity  int
}

type StatusUpdate struct {
	OrderID      string
	Status       order.Status
	DeliveryCode string
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		Customers: make(map[string]*customer.Customer),
		Stores:    make(map[string]*store.Store),
		Stock:     make(map[string]int),
		Coupons:   make(map[string]*coupon.Coupon),
		Orders:    make(map[string]*order.Order),
		Items:     make(map[string][]order.Item),
	}
}

// Seed helpers

func (m *MockRepository) SeedStore(s store.Store) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stores[s.ID] = &s
}

func (m *MockRepository) SeedStock(productID string, qty int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stock[productID] = qty
}

func (m *MockRepository) SeedCoupon(c coupon.Coupon) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Coupons[c.StoreID+"/"+c.Code] = &c
}

func (m *MockRepository) SeedOrder(o order.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Orders[o.ID] = &o
}

func (m *MockRepository) SeedCustomer(c customer.Customer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Customers[c.ID] = &c
}

// Customers

func (m *MockRepository) FindCustomerByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FindCustomerErr != nil {
		return nil, m.FindCustomerErr
	}
	for _, c := range m.Customers {
		if c.Email == email {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) FindCustomerByID(ctx context.Context, id string) (*customer.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.Customers[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (m *MockRepository) CreateCustomer(ctx context.Context, c *customer.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	cp := *c
	m.Customers[c.ID] = &cp
	m.CreateCustomerCalls++
	return nil
}

func (m *MockRepository) UpdateCustomer(ctx context.Context, c *customer.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.Customers[c.ID] = &cp
	m.UpdateCustomerCalls++
	return nil
}

// Orders

func (m *MockRepository) CreateOrder(ctx context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateOrderErr != nil {
		return m.CreateOrderErr
	}
	cp := *o
	m.Orders[o.ID] = &cp
	m.CreateOrderCalls = append(m.CreateOrderCalls, o.ID)
	return nil
}

func (m *MockRepository) CreateOrderItems(ctx context.Context, items []order.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateOrderItemsErr != nil {
		return m.CreateOrderItemsErr
	}
	for _, it := range items {
		m.Items[it.OrderID] = append(m.Items[it.OrderID], it)
	}
	return nil
}

func (m *MockRepository) GetOrderByID(ctx context.Context, id string) (*order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.Orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *MockRepository) FindOrdersByEscrowTransactionID(ctx context.Context, id string) ([]order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FindOrdersErr != nil {
		return nil, m.FindOrdersErr
	}
	var matched []order.Order
	for _, o := range m.Orders {
		if o.EscrowTransactionID == id {
			matched = append(matched, *o)
		}
	}
	return matched, nil
}

func (m *MockRepository) UpdateOrderStatus(ctx context.Context, orderID string, status order.Status, deliveryCode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateOrderStatusErr != nil {
		return m.UpdateOrderStatusErr
	}
	o, ok := m.Orders[orderID]
	if !ok {
		return order.ErrOrderNotFound
	}
	o.Status = status
	if deliveryCode != "" {
		o.DeliveryCode = deliveryCode
	}
	m.StatusUpdates = append(m.StatusUpdates, StatusUpdate{
		OrderID:      orderID,
		Status:       status,
		DeliveryCode: deliveryCode,
	})
	return nil
}

// Stock

func (m *MockRepository) GetProductStock(ctx context.Context, productID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stock, ok := m.Stock[productID]
	if !ok {
		return 0, storage.ErrProductNotFound
	}
	return stock, nil
}

func (m *MockRepository) DecrementStock(ctx context.Context, productID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DecrementErr != nil {
		return m.DecrementErr
	}
	stock, ok := m.Stock[productID]
	if !ok {
		return storage.ErrProductNotFound
	}
	if stock < quantity {
		return storage.ErrInsufficientStock
	}
	m.Stock[productID] = stock - quantity
	m.DecrementCalls = append(m.DecrementCalls, DecrementCall{ProductID: productID, Quantity: quantity})
	return nil
}

// Stores and coupons

func (m *MockRepository) GetStoreByID(ctx context.Context, storeID string) (*store.Store, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.Stores[storeID]
	if !ok {
		return nil, storage.ErrStoreNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MockRepository) GetCoupon(ctx context.Context, code, storeID string) (*coupon.Coupon, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetCouponErr != nil {
		return nil, m.GetCouponErr
	}
	c, ok := m.Coupons[storeID+"/"+code]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}
