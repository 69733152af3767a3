package storage

import (
	"context"
	"errors"

	"github.com/example/mv-checkout/internal/domain/coupon"
	"github.com/example/mv-checkout/internal/domain/customer"
	"github.com/example/mv-checkout/internal/domain/order"
	"github.com/example/mv-checkout/internal/domain/store"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrStoreNotFound     = errors.New("store not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Repository is the persistence API consumed by the checkout pipeline, the
// webhook reconciler and the read endpoints. The checkout core never talks
// to the database directly.
type Repository interface {
	// Customers (email is the natural key).
	FindCustomerByEmail(ctx context.Context, email string) (*customer.Customer, error)
	FindCustomerByID(ctx context.Context, id string) (*customer.Customer, error)
	CreateCustomer(ctx context.Context, c *customer.Customer) error
	UpdateCustomer(ctx context.Context, c *customer.Customer) error

	// Orders.
	CreateOrder(ctx context.Context, o *order.Order) error
	CreateOrderItems(ctx context.Context, items []order.Item) error
	GetOrderByID(ctx context.Context, id string) (*order.Order, error)
	// FindOrdersByEscrowTransactionID matches on the escrow transaction id
	// column for either identifier the provider echoes back.
	FindOrdersByEscrowTransactionID(ctx context.Context, id string) ([]order.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status order.Status, deliveryCode string) error

	// Stock. GetProductStock is the read-only pre-flight check;
	// DecrementStock is a single conditional update that only succeeds
	// when current stock covers the quantity, so stock can never go
	// negative even across racing checkouts.
	GetProductStock(ctx context.Context, productID string) (int, error)
	DecrementStock(ctx context.Context, productID string, quantity int) error

	// Stores and coupons.
	GetStoreByID(ctx context.Context, storeID string) (*store.Store, error)
	GetCoupon(ctx context.Context, code, storeID string) (*coupon.Coupon, error)
}
