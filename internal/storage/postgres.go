package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/example/mv-checkout/internal/domain/coupon"
	"github.com/example/mv-checkout/internal/domain/customer"
	"github.com/example/mv-checkout/internal/domain/order"
	"github.com/example/mv-checkout/internal/domain/store"
)

// PostgresRepository implements Repository on PostgreSQL.
type PostgresRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// ConnectPostgres opens and pings a PostgreSQL connection.
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func NewPostgresRepository(db *sql.DB, log zerolog.Logger) *PostgresRepository {
	return &PostgresRepository{
		db:  db,
		log: log.With().Str("component", "storage").Logger(),
	}
}

// Customers

func (r *PostgresRepository) FindCustomerByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	return r.scanCustomer(r.db.QueryRowContext(ctx, `
		SELECT id, email, name, phone, address, last_order_at, created_at
		FROM customers WHERE email = $1
	`, email))
}

func (r *PostgresRepository) FindCustomerByID(ctx context.Context, id string) (*customer.Customer, error) {
	return r.scanCustomer(r.db.QueryRowContext(ctx, `
		SELECT id, email, name, phone, address, last_order_at, created_at
		FROM customers WHERE id = $1
	`, id))
}

func (r *PostgresRepository) scanCustomer(row *sql.Row) (*customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(&c.ID, &c.Email, &c.Name, &c.Phone, &c.Address, &c.LastOrderAt, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PostgresRepository) CreateCustomer(ctx context.Context, c *customer.Customer) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now()
	c.CreatedAt = now
	c.LastOrderAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO customers (id, email, name, phone, address, last_order_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.ID, c.Email, c.Name, c.Phone, c.Address, c.LastOrderAt, c.CreatedAt)
	return err
}

func (r *PostgresRepository) UpdateCustomer(ctx context.Context, c *customer.Customer) error {
	c.LastOrderAt = time.Now()
	_, err := r.db.ExecContext(ctx, `
		UPDATE customers
		SET name = $2, phone = $3, address = $4, last_order_at = $5
		WHERE id = $1
	`, c.ID, c.Name, c.Phone, c.Address, c.LastOrderAt)
	return err
}

// Orders

func (r *PostgresRepository) CreateOrder(ctx context.Context, o *order.Order) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO orders (
			id, store_id, customer_id, total_amount, delivery_cost, service_fee,
			status, shipping_address, pickup_address, delivery_tier, payment_method,
			escrow_transaction_id, delivery_code, customer_specification, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, o.ID, o.StoreID, o.CustomerID, o.TotalAmount, o.DeliveryCost, o.ServiceFee,
		o.Status, o.ShippingAddress, nullString(o.PickupAddress), o.DeliveryTier,
		o.PaymentMethod, o.EscrowTransactionID, nullString(o.DeliveryCode),
		nullString(o.CustomerSpecification), o.CreatedAt)
	return err
}

func (r *PostgresRepository) CreateOrderItems(ctx context.Context, items []order.Item) error {
	if len(items) == 0 {
		return nil
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	stmt, err := txn.PrepareContext(ctx, pq.CopyIn(
		"order_items", "order_id", "product_id", "name", "quantity", "price_per_unit", "image_url"))
	if err != nil {
		return err
	}
	for _, it := range items {
		if _, err := stmt.ExecContext(ctx, it.OrderID, it.ProductID, it.Name,
			it.Quantity, it.PricePerUnit, nullString(it.ImageURL)); err != nil {
			stmt.Close()
			return err
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return err
	}
	if err := stmt.Close(); err != nil {
		return err
	}
	return txn.Commit()
}

func (r *PostgresRepository) GetOrderByID(ctx context.Context, id string) (*order.Order, error) {
	o, err := r.scanOrder(r.db.QueryRowContext(ctx, orderSelect+` WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, order.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

const orderSelect = `
	SELECT id, store_id, customer_id, total_amount, delivery_cost, service_fee,
	       status, shipping_address, pickup_address, delivery_tier, payment_method,
	       escrow_transaction_id, delivery_code, customer_specification, created_at
	FROM orders`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) scanOrder(row rowScanner) (*order.Order, error) {
	var (
		o                                  order.Order
		pickupAddr, deliveryCode, custSpec sql.NullString
		total, delivery, fee               string
	)
	err := row.Scan(&o.ID, &o.StoreID, &o.CustomerID, &total, &delivery, &fee,
		&o.Status, &o.ShippingAddress, &pickupAddr, &o.DeliveryTier, &o.PaymentMethod,
		&o.EscrowTransactionID, &deliveryCode, &custSpec, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	if o.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return nil, err
	}
	if o.DeliveryCost, err = decimal.NewFromString(delivery); err != nil {
		return nil, err
	}
	if o.ServiceFee, err = decimal.NewFromString(fee); err != nil {
		return nil, err
	}
	o.PickupAddress = pickupAddr.String
	o.DeliveryCode = deliveryCode.String
	o.CustomerSpecification = custSpec.String
	return &o, nil
}

func (r *PostgresRepository) FindOrdersByEscrowTransactionID(ctx context.Context, id string) ([]order.Order, error) {
	rows, err := r.db.QueryContext(ctx, orderSelect+` WHERE escrow_transaction_id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []order.Order
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *PostgresRepository) UpdateOrderStatus(ctx context.Context, orderID string, status order.Status, deliveryCode string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $2, delivery_code = COALESCE($3, delivery_code)
		WHERE id = $1
	`, orderID, status, nullString(deliveryCode))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

// Stock

func (r *PostgresRepository) GetProductStock(ctx context.Context, productID string) (int, error) {
	var stock int
	err := r.db.QueryRowContext(ctx,
		`SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock)
	if err == sql.ErrNoRows {
		return 0, ErrProductNotFound
	}
	if err != nil {
		return 0, err
	}
	return stock, nil
}

// DecrementStock atomically takes quantity units off a product's stock.
// The WHERE clause makes the check and the write one statement: a
// concurrent checkout that would drive stock negative simply matches no
// row and gets ErrInsufficientStock.
func (r *PostgresRepository) DecrementStock(ctx context.Context, productID string, quantity int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products SET stock = stock - $2
		WHERE id = $1 AND stock >= $2
	`, productID, quantity)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish a missing product from a stock shortfall.
		if _, err := r.GetProductStock(ctx, productID); err != nil {
			return err
		}
		return ErrInsufficientStock
	}
	return nil
}

// Stores and coupons

func (r *PostgresRepository) GetStoreByID(ctx context.Context, storeID string) (*store.Store, error) {
	var s store.Store
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, pickup_address, pickup_lat, pickup_lng, payout_phone
		FROM stores WHERE id = $1
	`, storeID).Scan(&s.ID, &s.Name, &s.PickupAddress, &s.PickupLat, &s.PickupLng, &s.PayoutPhone)
	if err == sql.ErrNoRows {
		return nil, ErrStoreNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PostgresRepository) GetCoupon(ctx context.Context, code, storeID string) (*coupon.Coupon, error) {
	var (
		c               coupon.Coupon
		value, minSpend string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, code, store_id, discount_type, discount_value, min_spend
		FROM coupons WHERE code = $1 AND store_id = $2
	`, code, storeID).Scan(&c.ID, &c.Code, &c.StoreID, &c.DiscountType, &value, &minSpend)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if c.DiscountValue, err = decimal.NewFromString(value); err != nil {
		return nil, err
	}
	if c.MinSpend, err = decimal.NewFromString(minSpend); err != nil {
		return nil, err
	}
	return &c, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
