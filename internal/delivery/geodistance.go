package delivery

import "math"

// earthRadiusKm is the mean Earth radius used by the Haversine formula.
const earthRadiusKm = 6371.0

// Distance returns the great-circle distance in kilometers between two
// points given in decimal degrees. Inputs are not validated; NaN inputs
// propagate to the result and must be rejected by the caller.
func Distance(aLat, aLng, bLat, bLng float64) float64 {
	dLat := toRadians(bLat - aLat)
	dLng := toRadians(bLng - aLng)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat +
		math.Cos(toRadians(aLat))*math.Cos(toRadians(bLat))*sinLng*sinLng

	// Floating error can push h just past 1 for near-antipodal points,
	// which would make Sqrt(1-h) NaN.
	if h > 1 {
		h = 1
	}

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
