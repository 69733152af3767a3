package reconcile

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/example/mv-checkout/internal/domain/order"
	"github.com/example/mv-checkout/internal/event"
	"github.com/example/mv-checkout/internal/storage"
)

// Reconciler applies asynchronous payment-provider callbacks to order
// state. It is the only component that moves an order out of
// pending_payment.
type Reconciler struct {
	repo      storage.Repository
	publisher event.Publisher
	log       zerolog.Logger
}

func NewReconciler(repo storage.Repository, publisher event.Publisher, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		repo:      repo,
		publisher: publisher,
		log:       log.With().Str("component", "reconcile").Logger(),
	}
}

// targetStatus maps a normalized provider status to an order status. A
// false second return means the status is not actionable and the webhook
// is a no-op.
func targetStatus(providerStatus string) (order.Status, bool) {
	switch providerStatus {
	case "successful":
		return order.StatusPaidPendingDelivery, true
	case "failed":
		return order.StatusPaymentFailed, true
	case "on_hold", "fraud_alert":
		return order.StatusOnHold, true
	default:
		return "", false
	}
}

// Process locates every order matching the payload's transaction id or
// reference and applies the status transition to each, idempotently and
// concurrently. Unactionable statuses succeed without touching anything.
func (r *Reconciler) Process(ctx context.Context, p Payload) error {
	orders, err := r.findOrders(ctx, p)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		return order.ErrOrderNotFound
	}

	target, actionable := targetStatus(p.Status)
	if !actionable {
		r.log.Info().Str("status", p.Status).Msg("ignoring unactionable webhook status")
		return nil
	}

	// Matched orders are independent; one failed update must not block the
	// rest, so the group carries no shared cancellation. A database-layer
	// error still propagates to the caller once every attempt finished.
	var g errgroup.Group
	for _, o := range orders {
		o := o
		g.Go(func() error {
			return r.transition(ctx, o, target)
		})
	}
	return g.Wait()
}

// findOrders matches on the escrow transaction id using whichever
// identifier the provider echoed back: the transaction id first, then the
// reference. Integrations differ on which one round-trips.
func (r *Reconciler) findOrders(ctx context.Context, p Payload) ([]order.Order, error) {
	if p.TransactionID != "" {
		orders, err := r.repo.FindOrdersByEscrowTransactionID(ctx, p.TransactionID)
		if err != nil || len(orders) > 0 {
			return orders, err
		}
	}
	if p.Reference != "" && p.Reference != p.TransactionID {
		return r.repo.FindOrdersByEscrowTransactionID(ctx, p.Reference)
	}
	return nil, nil
}

func (r *Reconciler) transition(ctx context.Context, o order.Order, target order.Status) error {
	// Idempotent replay: already at the target means nothing to do, and in
	// particular no second delivery code.
	if o.Status == target {
		r.log.Debug().Str("order_id", o.ID).Str("status", string(target)).Msg("webhook replay, no-op")
		return nil
	}

	// Terminal guard: a late contradictory webhook (say a "failed" after a
	// "successful") is logged and dropped, never applied backward.
	if !o.Status.CanTransitionTo(target) {
		r.log.Warn().Str("order_id", o.ID).
			Str("from", string(o.Status)).Str("to", string(target)).
			Msg("ignoring webhook transition out of terminal status")
		return nil
	}

	deliveryCode := ""
	if target == order.StatusPaidPendingDelivery {
		deliveryCode = order.NewDeliveryCode(o.StoreID)
	}

	if err := r.repo.UpdateOrderStatus(ctx, o.ID, target, deliveryCode); err != nil {
		r.log.Error().Err(err).Str("order_id", o.ID).Msg("update order status")
		return err
	}
	r.log.Info().Str("order_id", o.ID).Str("status", string(target)).Msg("order status updated")

	r.publishOutcome(ctx, o, target, deliveryCode)
	return nil
}

func (r *Reconciler) publishOutcome(ctx context.Context, o order.Order, target order.Status, deliveryCode string) {
	if r.publisher == nil {
		return
	}

	email := ""
	if cust, err := r.repo.FindCustomerByID(ctx, o.CustomerID); err == nil && cust != nil {
		email = cust.Email
	}

	var (
		env event.Envelope
		err error
	)
	switch target {
	case order.StatusPaidPendingDelivery:
		env, err = event.NewEnvelope(event.TypePaymentConfirmed, event.PaymentConfirmed{
			OrderID:       o.ID,
			StoreID:       o.StoreID,
			DeliveryCode:  deliveryCode,
			CustomerEmail: email,
		})
	case order.StatusPaymentFailed:
		env, err = event.NewEnvelope(event.TypePaymentFailed, event.PaymentFailed{
			OrderID:       o.ID,
			StoreID:       o.StoreID,
			CustomerEmail: email,
		})
	default:
		return
	}
	if err == nil {
		err = r.publisher.Publish(ctx, o.ID, env)
	}
	if err != nil {
		r.log.Warn().Err(err).Str("order_id", o.ID).Msg("publish payment outcome")
	}
}
