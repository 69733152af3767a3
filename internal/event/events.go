package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Event types published to the events topic.
const (
	TypeOrderCreated     = "order.created"
	TypePaymentConfirmed = "payment.confirmed"
	TypePaymentFailed    = "payment.failed"
)

// Publisher sends domain events. Publishing is best effort everywhere it is
// used: a broker outage must never fail a checkout or a webhook.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Envelope wraps every published event.
type Envelope struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// NewEnvelope wraps a payload; marshalling errors surface on publish.
func NewEnvelope(eventType string, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: eventType, OccurredAt: time.Now(), Data: raw}, nil
}

// OrderCreated is emitted once per persisted order after a successful
// payment initiation.
type OrderCreated struct {
	OrderID       string          `json:"order_id"`
	StoreID       string          `json:"store_id"`
	StoreName     string          `json:"store_name"`
	CustomerEmail string          `json:"customer_email"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Items         []OrderLine     `json:"items"`
	CreatedAt     time.Time       `json:"created_at"`
}

// OrderLine is the receipt view of one order item, carried on the event so
// consumers need no database access to render notifications.
type OrderLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// PaymentConfirmed is emitted by the webhook reconciler when an order
// settles as paid.
type PaymentConfirmed struct {
	OrderID       string `json:"order_id"`
	StoreID       string `json:"store_id"`
	DeliveryCode  string `json:"delivery_code"`
	CustomerEmail string `json:"customer_email"`
}

// PaymentFailed is emitted by the webhook reconciler when an order settles
// as failed.
type PaymentFailed struct {
	OrderID       string `json:"order_id"`
	StoreID       string `json:"store_id"`
	CustomerEmail string `json:"customer_email"`
}
