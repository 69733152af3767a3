package delivery

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDistance_SamePointIsZero(t *testing.T) {
	d := Distance(-15.4167, 28.2833, -15.4167, 28.2833)
	assert.InDelta(t, 0, d, 1e-9)
}

func TestDistance_Symmetry(t *testing.T) {
	tests := []struct {
		name                   string
		aLat, aLng, bLat, bLng float64
	}{
		{"lusaka to ndola", -15.4167, 28.2833, -12.9587, 28.6366},
		{"lusaka to livingstone", -15.4167, 28.2833, -17.8419, 25.8543},
		{"equator crossing", -1.0, 30.0, 1.0, 30.0},
		{"antimeridian-ish", 10.0, 179.5, 10.0, -179.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ab := Distance(tt.aLat, tt.aLng, tt.bLat, tt.bLng)
			ba := Distance(tt.bLat, tt.bLng, tt.aLat, tt.aLng)
			assert.InDelta(t, ab, ba, 1e-9)
			assert.GreaterOrEqual(t, ab, 0.0)
		})
	}
}

func TestDistance_KnownValue(t *testing.T) {
	// Lusaka to Ndola is roughly 275 km as the crow flies.
	d := Distance(-15.4167, 28.2833, -12.9587, 28.6366)
	assert.InDelta(t, 275, d, 5)
}

func TestDistance_OneDegreeLatitude(t *testing.T) {
	// One degree of latitude is about 111.19 km on a 6371 km sphere.
	d := Distance(0, 0, 1, 0)
	assert.InDelta(t, 111.19, d, 0.05)
}

func TestDistance_AntipodalPointsNeverNaN(t *testing.T) {
	// Near-antipodal pairs can push the Haversine intermediate just past 1
	// through floating error; the result must stay a real distance close to
	// half the Earth's circumference (~20015 km), never NaN.
	tests := []struct {
		name                   string
		aLat, aLng, bLat, bLng float64
	}{
		{"exact antipodes on equator", 0, 0, 0, 180},
		{"exact antipodes off equator", -45, 10, 45, -170},
		{"near-antipodal high latitude", -89.5, 0, 89.49999995, 180},
		{"near-antipodal mid latitude", -30.000001, 60, 30, -120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Distance(tt.aLat, tt.aLng, tt.bLat, tt.bLng)
			assert.False(t, math.IsNaN(d))
			assert.InDelta(t, 20015, d, 120)
		})
	}
}

func TestDistance_AntipodalFeedsCostModel(t *testing.T) {
	// The distance flows straight into decimal.NewFromFloat at pricing,
	// which panics on NaN; an antipodal cart location must still price.
	d := Distance(-89.5, 0, 89.49999995, 180)

	cost := Cost(decimal.NewFromFloat(d), TierNormal)
	assert.True(t, cost.GreaterThan(decimal.Zero))
}
