package notification

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/example/mv-checkout/internal/email"
	"github.com/example/mv-checkout/internal/event"
)

// Mailer is the slice of the email service the notifier needs.
type Mailer interface {
	SendOrderConfirmation(to, orderID string, total decimal.Decimal, items []email.OrderItem) error
	SendPaymentConfirmed(to, orderID, deliveryCode string) error
}

// Handler turns checkout events into customer emails. Every failure is
// logged and swallowed: a broken notification must never stall the
// consumer group behind an unprocessable message.
type Handler struct {
	mailer Mailer
	log    zerolog.Logger
}

func NewHandler(mailer Mailer, log zerolog.Logger) *Handler {
	return &Handler{
		mailer: mailer,
		log:    log.With().Str("component", "notifier").Logger(),
	}
}

// HandleEvent processes one message from the events topic.
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var env event.Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		h.log.Error().Err(err).Str("key", string(key)).Msg("unmarshal event envelope")
		return nil
	}

	switch env.Type {
	case event.TypeOrderCreated:
		h.handleOrderCreated(env.Data)
	case event.TypePaymentConfirmed:
		h.handlePaymentConfirmed(env.Data)
	default:
		// payment.failed and anything newer are not customer-facing yet.
	}
	return nil
}

func (h *Handler) handleOrderCreated(data json.RawMessage) {
	var e event.OrderCreated
	if err := json.Unmarshal(data, &e); err != nil {
		h.log.Error().Err(err).Msg("unmarshal order.created")
		return
	}
	if e.CustomerEmail == "" {
		h.log.Warn().Str("order_id", e.OrderID).Msg("order.created without customer email")
		return
	}

	items := make([]email.OrderItem, len(e.Items))
	for i, line := range e.Items {
		items[i] = email.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			Price:     line.Price,
		}
	}

	if err := h.mailer.SendOrderConfirmation(e.CustomerEmail, e.OrderID, e.TotalAmount, items); err != nil {
		h.log.Error().Err(err).Str("order_id", e.OrderID).Msg("send order confirmation")
		return
	}
	h.log.Info().Str("order_id", e.OrderID).Msg("order confirmation sent")
}

func (h *Handler) handlePaymentConfirmed(data json.RawMessage) {
	var e event.PaymentConfirmed
	if err := json.Unmarshal(data, &e); err != nil {
		h.log.Error().Err(err).Msg("unmarshal payment.confirmed")
		return
	}
	if e.CustomerEmail == "" {
		h.log.Warn().Str("order_id", e.OrderID).Msg("payment.confirmed without customer email")
		return
	}

	if err := h.mailer.SendPaymentConfirmed(e.CustomerEmail, e.OrderID, e.DeliveryCode); err != nil {
		h.log.Error().Err(err).Str("order_id", e.OrderID).Msg("send payment confirmation")
		return
	}
	h.log.Info().Str("order_id", e.OrderID).Msg("delivery code sent")
}
