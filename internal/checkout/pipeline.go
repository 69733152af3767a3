package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/mv-checkout/internal/delivery"
	"github.com/example/mv-checkout/internal/domain/cart"
	"github.com/example/mv-checkout/internal/domain/coupon"
	"github.com/example/mv-checkout/internal/domain/customer"
	"github.com/example/mv-checkout/internal/domain/order"
	"github.com/example/mv-checkout/internal/event"
	"github.com/example/mv-checkout/internal/storage"
)

// PlaceOrder runs the order commit pipeline: validate, partition the cart
// by store, pre-flight every item's stock, upsert the customer, then
// process each store independently (delivery cost, coupon, payment,
// persistence, stock decrement), folding per-store outcomes into a
// partial-success result.
//
// Stock problems block the whole commit before any mutation. Payment and
// persistence problems are scoped to their store and never sink the others.
func (s *Service) PlaceOrder(ctx context.Context, form Form, items []cart.Item, coupons []coupon.Coupon) (*Result, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	if !form.DeliveryTier.Valid() {
		return nil, ErrInvalidTier
	}
	if form.DeliveryTier != delivery.TierPickup && (form.Location == nil || !form.Location.Valid()) {
		return nil, ErrInvalidLocation
	}

	groups := cart.PartitionByStore(items)

	// Pre-flight stock validation across every item of every store. All
	// failures are collected; any failure aborts the commit with nothing
	// created and nothing decremented.
	if stockErrs := s.preflightStock(ctx, items); len(stockErrs) > 0 {
		return &Result{Success: false, Errors: stockErrs}, nil
	}

	cust, err := s.upsertCustomer(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("resolve customer: %w", err)
	}

	// At most one coupon per store; a later coupon for the same store
	// replaces the earlier one, it never stacks.
	couponByStore := make(map[string]coupon.Coupon, len(coupons))
	for _, c := range coupons {
		couponByStore[c.StoreID] = c
	}

	result := &Result{}
	for _, group := range groups {
		s.commitStore(ctx, form, cust, group, couponByStore, result)
	}

	result.Success = len(result.OrderIDs) > 0 && len(result.Errors) == 0
	return result, nil
}

// preflightStock checks availability for every cart line, collecting every
// failure instead of stopping at the first.
func (s *Service) preflightStock(ctx context.Context, items []cart.Item) []StoreError {
	var errs []StoreError
	for _, item := range items {
		stock, err := s.repo.GetProductStock(ctx, item.ProductID)
		switch {
		case errors.Is(err, storage.ErrProductNotFound):
			errs = append(errs, StoreError{
				StoreID:   item.StoreID,
				StoreName: item.StoreName,
				Message:   fmt.Sprintf("%s is no longer available", item.Name),
			})
		case err != nil:
			errs = append(errs, StoreError{
				StoreID:   item.StoreID,
				StoreName: item.StoreName,
				Message:   fmt.Sprintf("could not check stock for %s", item.Name),
			})
		case stock < item.Quantity:
			errs = append(errs, StoreError{
				StoreID:   item.StoreID,
				StoreName: item.StoreName,
				Message:   fmt.Sprintf("only %d of %s left (requested %d)", stock, item.Name, item.Quantity),
			})
		}
	}
	return errs
}

// upsertCustomer resolves the customer record by email: update contact
// details on a match, create on a miss.
func (s *Service) upsertCustomer(ctx context.Context, form Form) (*customer.Customer, error) {
	existing, err := s.repo.FindCustomerByEmail(ctx, form.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.Name = form.Name
		existing.Phone = form.Phone
		existing.Address = form.ShippingAddress
		if err := s.repo.UpdateCustomer(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	created := &customer.Customer{
		Email:   form.Email,
		Name:    form.Name,
		Phone:   form.Phone,
		Address: form.ShippingAddress,
	}
	if err := s.repo.CreateCustomer(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}

// commitStore runs one store's sub-order: authoritative delivery cost,
// totals, payment, order + item persistence, stock decrement. Failures are
// recorded on result and never abort the remaining stores.
func (s *Service) commitStore(ctx context.Context, form Form, cust *customer.Customer,
	group cart.StoreGroup, couponByStore map[string]coupon.Coupon, result *Result) {

	fail := func(msg string) {
		result.Errors = append(result.Errors, StoreError{
			StoreID:   group.StoreID,
			StoreName: group.StoreName,
			Message:   msg,
		})
	}

	st, err := s.repo.GetStoreByID(ctx, group.StoreID)
	if err != nil {
		s.log.Error().Err(err).Str("store_id", group.StoreID).Msg("load store")
		fail("store could not be loaded")
		return
	}

	// Recompute this store's own delivery cost; the blended checkout quote
	// is an estimate, this value is the one persisted on the order.
	deliveryCost := decimal.Zero
	if form.DeliveryTier != delivery.TierPickup {
		km := delivery.Distance(st.PickupLat, st.PickupLng, form.Location.Latitude, form.Location.Longitude)
		deliveryCost = delivery.Cost(decimal.NewFromFloat(km), form.DeliveryTier)
	}

	subtotal := group.Subtotal()
	discount := decimal.Zero
	if c, ok := couponByStore[group.StoreID]; ok {
		discount = c.Discount(subtotal)
	}

	total := subtotal.Add(serviceFee).Add(deliveryCost).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	reference := paymentReference(group.StoreID)
	pay := s.payer.Collect(ctx, form.PaymentPhone, total, reference)
	if !pay.Success {
		s.log.Warn().Str("store_id", group.StoreID).Str("reference", reference).
			Str("reason", pay.Message).Msg("payment declined")
		fail("payment failed: " + pay.Message)
		return
	}

	o := &order.Order{
		ID:                    uuid.New().String(),
		StoreID:               group.StoreID,
		CustomerID:            cust.ID,
		TotalAmount:           total,
		DeliveryCost:          deliveryCost,
		ServiceFee:            serviceFee,
		Status:                order.StatusPendingPayment,
		ShippingAddress:       form.ShippingAddress,
		DeliveryTier:          string(form.DeliveryTier),
		PaymentMethod:         form.PaymentMethod,
		EscrowTransactionID:   pay.TransactionID,
		CustomerSpecification: form.CustomerSpecification,
		CreatedAt:             time.Now(),
	}
	if form.DeliveryTier == delivery.TierPickup {
		o.PickupAddress = st.PickupAddress
	}

	if err := s.repo.CreateOrder(ctx, o); err != nil {
		// Payment already went through; this inconsistency is reconciled
		// manually, never rolled back here.
		s.log.Error().Err(err).Str("store_id", group.StoreID).
			Str("escrow_transaction_id", pay.TransactionID).Msg("create order after successful payment")
		fail("order could not be saved")
		return
	}
	result.OrderIDs = append(result.OrderIDs, o.ID)

	orderItems := make([]order.Item, 0, len(group.Items))
	for _, it := range group.Items {
		snapshot := order.Item{
			OrderID:      o.ID,
			ProductID:    it.ProductID,
			Name:         it.Name,
			Quantity:     it.Quantity,
			PricePerUnit: it.Price,
		}
		if len(it.ImageURLs) > 0 {
			snapshot.ImageURL = it.ImageURLs[0]
		}
		orderItems = append(orderItems, snapshot)
	}
	if err := s.repo.CreateOrderItems(ctx, orderItems); err != nil {
		s.log.Error().Err(err).Str("order_id", o.ID).Msg("create order items")
		fail("order items could not be saved")
	}

	// Conditional decrement against current stock, not the pre-flight
	// snapshot. A shortfall here means another checkout won the race.
	for _, it := range group.Items {
		if err := s.repo.DecrementStock(ctx, it.ProductID, it.Quantity); err != nil {
			s.log.Error().Err(err).Str("order_id", o.ID).
				Str("product_id", it.ProductID).Msg("decrement stock")
			fail(fmt.Sprintf("stock update failed for %s", it.Name))
		}
	}

	s.publishOrderCreated(ctx, o, group, cust.Email)
}

func (s *Service) publishOrderCreated(ctx context.Context, o *order.Order, group cart.StoreGroup, email string) {
	if s.publisher == nil {
		return
	}
	lines := make([]event.OrderLine, 0, len(group.Items))
	for _, it := range group.Items {
		lines = append(lines, event.OrderLine{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	env, err := event.NewEnvelope(event.TypeOrderCreated, event.OrderCreated{
		OrderID:       o.ID,
		StoreID:       o.StoreID,
		StoreName:     group.StoreName,
		CustomerEmail: email,
		TotalAmount:   o.TotalAmount,
		Items:         lines,
		CreatedAt:     o.CreatedAt,
	})
	if err == nil {
		err = s.publisher.Publish(ctx, o.ID, env)
	}
	if err != nil {
		s.log.Warn().Err(err).Str("order_id", o.ID).Msg("publish order.created")
	}
}

// paymentReference builds a reference unique per store per attempt so
// retried submissions never collide with earlier ones.
func paymentReference(storeID string) string {
	short := uuid.New().String()[:8]
	return fmt.Sprintf("%s-%d-%s", storeID, time.Now().UnixMilli(), short)
}
