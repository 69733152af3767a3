package store

// Store is a vendor on the marketplace. PickupLat/PickupLng are the
// coordinates delivery distance is measured from.
type Store struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	PickupAddress string  `json:"pickup_address"`
	PickupLat     float64 `json:"pickup_lat"`
	PickupLng     float64 `json:"pickup_lng"`
	PayoutPhone   string  `json:"payout_phone"`
}
