package checkout

import (
	"errors"
	"math"

	"github.com/example/mv-checkout/internal/delivery"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidLocation = errors.New("delivery location is missing or malformed")
	ErrInvalidTier     = errors.New("unknown delivery tier")
)

// Location is a customer position in decimal degrees.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid rejects NaN/Inf and out-of-range coordinates before they reach the
// distance calculator, which would otherwise propagate NaN into prices.
func (l Location) Valid() bool {
	if math.IsNaN(l.Latitude) || math.IsInf(l.Latitude, 0) ||
		math.IsNaN(l.Longitude) || math.IsInf(l.Longitude, 0) {
		return false
	}
	return l.Latitude >= -90 && l.Latitude <= 90 &&
		l.Longitude >= -180 && l.Longitude <= 180
}

// Form carries the validated checkout submission.
type Form struct {
	Email                 string        `json:"email"`
	Name                  string        `json:"name"`
	Phone                 string        `json:"phone"`
	ShippingAddress       string        `json:"shipping_address"`
	Location              *Location     `json:"location,omitempty"`
	DeliveryTier          delivery.Tier `json:"delivery_tier"`
	PaymentMethod         string        `json:"payment_method"`
	PaymentPhone          string        `json:"payment_phone"`
	CustomerSpecification string        `json:"customer_specification,omitempty"`
}

// StoreError is a per-store failure surfaced alongside any partial success.
type StoreError struct {
	StoreID   string `json:"store_id"`
	StoreName string `json:"store_name,omitempty"`
	Message   string `json:"message"`
}

// Result aggregates the commit pipeline outcome. Success is true only when
// at least one order was created and no store failed.
type Result struct {
	Success  bool         `json:"success"`
	OrderIDs []string     `json:"order_ids,omitempty"`
	Errors   []StoreError `json:"errors,omitempty"`
}
