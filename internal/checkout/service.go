package checkout

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/example/mv-checkout/internal/delivery"
	"github.com/example/mv-checkout/internal/domain/cart"
	"github.com/example/mv-checkout/internal/domain/coupon"
	"github.com/example/mv-checkout/internal/event"
	"github.com/example/mv-checkout/internal/payment"
	"github.com/example/mv-checkout/internal/storage"
)

// serviceFee is the flat per-order platform charge.
var serviceFee = decimal.NewFromFloat(20.00)

// Payer initiates a mobile-money collection.
type Payer interface {
	Collect(ctx context.Context, phone string, amount decimal.Decimal, reference string) payment.Result
}

// Service owns the checkout workflow: delivery quotes, coupon verification
// and the order commit pipeline.
type Service struct {
	repo      storage.Repository
	payer     Payer
	publisher event.Publisher
	log       zerolog.Logger
}

func NewService(repo storage.Repository, payer Payer, publisher event.Publisher, log zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		payer:     payer,
		publisher: publisher,
		log:       log.With().Str("component", "checkout").Logger(),
	}
}

// QuoteDelivery prices every delivery tier for the whole cart: the total
// distance from each distinct store's pickup point to the customer, fed
// through the cost model. Per-store authoritative costs are recomputed at
// commit time; this blended quote is for display.
func (s *Service) QuoteDelivery(ctx context.Context, loc Location, items []cart.Item) (map[delivery.Tier]decimal.Decimal, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	if !loc.Valid() {
		return nil, ErrInvalidLocation
	}

	total := 0.0
	for _, storeID := range cart.StoreIDs(items) {
		st, err := s.repo.GetStoreByID(ctx, storeID)
		if err != nil {
			return nil, err
		}
		total += delivery.Distance(st.PickupLat, st.PickupLng, loc.Latitude, loc.Longitude)
	}

	return delivery.QuoteAll(decimal.NewFromFloat(total)), nil
}

// VerifyCoupon resolves a code against every candidate store and returns
// the first match. A miss is always coupon.ErrNotApplicable: the response
// never reveals whether the code exists for some store outside the cart.
func (s *Service) VerifyCoupon(ctx context.Context, code string, storeIDs []string) (*coupon.Coupon, error) {
	for _, storeID := range storeIDs {
		c, err := s.repo.GetCoupon(ctx, code, storeID)
		if err != nil {
			return nil, err
		}
		if c != nil {
			return c, nil
		}
	}
	return nil, coupon.ErrNotApplicable
}
