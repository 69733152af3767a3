package delivery

import "github.com/shopspring/decimal"

// Tier is a delivery service level chosen at checkout.
type Tier string

const (
	TierPickup  Tier = "pickup"
	TierEconomy Tier = "economy"
	TierNormal  Tier = "normal"
	TierExpress Tier = "express"
)

var (
	// baseFee applies to every delivered (non-pickup) order.
	baseFee = decimal.NewFromFloat(15.00)

	// ratePerKm by tier.
	ratePerKm = map[Tier]decimal.Decimal{
		TierEconomy: decimal.NewFromFloat(2.00),
		TierNormal:  decimal.NewFromFloat(3.50),
		TierExpress: decimal.NewFromFloat(5.00),
	}
)

// Valid reports whether t is a known delivery tier.
func (t Tier) Valid() bool {
	switch t {
	case TierPickup, TierEconomy, TierNormal, TierExpress:
		return true
	}
	return false
}

// Cost returns the delivery price for a distance in kilometers and a tier.
// Pickup is always free, regardless of distance. Other tiers pay the base
// fee plus a per-kilometer rate, rounded to the nearest 0.5 currency unit.
// Distance is assumed non-negative; the caller validates coordinates.
func Cost(distanceKm decimal.Decimal, tier Tier) decimal.Decimal {
	if tier == TierPickup {
		return decimal.Zero
	}

	rate, ok := ratePerKm[tier]
	if !ok {
		rate = ratePerKm[TierNormal]
	}

	cost := baseFee.Add(distanceKm.Mul(rate))
	return roundToHalf(cost)
}

// QuoteAll prices every tier for the given distance.
func QuoteAll(distanceKm decimal.Decimal) map[Tier]decimal.Decimal {
	return map[Tier]decimal.Decimal{
		TierPickup:  Cost(distanceKm, TierPickup),
		TierEconomy: Cost(distanceKm, TierEconomy),
		TierNormal:  Cost(distanceKm, TierNormal),
		TierExpress: Cost(distanceKm, TierExpress),
	}
}

// roundToHalf rounds to the nearest 0.5, half up: round(cost*2)/2.
func roundToHalf(d decimal.Decimal) decimal.Decimal {
	two := decimal.NewFromInt(2)
	return d.Mul(two).Round(0).Div(two)
}
