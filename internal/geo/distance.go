// Package geo holds the proximity search used by the nearby-listings feed.
package geo

import "math"

const EarthRadiusKm = 6371.0

// Coordinate is a point in degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the point is inside the latitude/longitude ranges.
// DistanceKm and FindWithinRadius do not call it.
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// DistanceKm returns the great-circle distance between a and b using the
// haversine formula. Non-finite input yields NaN.
func DistanceKm(a, b Coordinate) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	deltaLat := toRadians(b.Latitude - a.Latitude)
	deltaLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	// rounding can push near-antipodal h just past 1
	h = math.Min(1, math.Max(0, h))

	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
