package order

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the payment/fulfilment state of an order.
type Status string

const (
	StatusPendingPayment      Status = "pending_payment"
	StatusPaidPendingDelivery Status = "paid_pending_delivery"
	StatusPaymentFailed       Status = "payment_failed"
	StatusOnHold              Status = "on_hold"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// validTransitions defines allowed state transitions. Paid and failed are
// terminal: a late webhook may not move an order backward out of either.
// on_hold is revisitable and can still settle either way.
var validTransitions = map[Status][]Status{
	StatusPendingPayment:      {StatusPaidPendingDelivery, StatusPaymentFailed, StatusOnHold},
	StatusOnHold:              {StatusPaidPendingDelivery, StatusPaymentFailed},
	StatusPaidPendingDelivery: {},
	StatusPaymentFailed:       {},
}

// CanTransitionTo checks if an order in status s may move to target.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Order is one persisted per-store order produced by the commit pipeline.
type Order struct {
	ID                    string          `json:"id"`
	StoreID               string          `json:"store_id"`
	CustomerID            string          `json:"customer_id"`
	TotalAmount           decimal.Decimal `json:"total_amount"`
	DeliveryCost          decimal.Decimal `json:"delivery_cost"`
	ServiceFee            decimal.Decimal `json:"service_fee"`
	Status                Status          `json:"status"`
	ShippingAddress       string          `json:"shipping_address"`
	PickupAddress         string          `json:"pickup_address,omitempty"`
	DeliveryTier          string          `json:"delivery_tier"`
	PaymentMethod         string          `json:"payment_method"`
	EscrowTransactionID   string          `json:"escrow_transaction_id"`
	DeliveryCode          string          `json:"delivery_code,omitempty"`
	CustomerSpecification string          `json:"customer_specification,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
}

// Item is an immutable snapshot of a cart line taken at commit time. It
// never follows later product changes.
type Item struct {
	OrderID      string          `json:"order_id"`
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	ImageURL     string          `json:"image_url,omitempty"`
}

// NewDeliveryCode builds the code handed to the courier after payment is
// confirmed: DLV-<first 4 chars of storeID, uppercased>-<tail of epoch
// millis>-<4 random digits>.
func NewDeliveryCode(storeID string) string {
	prefix := strings.ToUpper(storeID)
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	millis := fmt.Sprintf("%d", time.Now().UnixMilli())
	if len(millis) > 6 {
		millis = millis[len(millis)-6:]
	}
	return fmt.Sprintf("DLV-%s-%s-%04d", prefix, millis, rand.Intn(10000))
}
