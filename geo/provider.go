// Package geo resolves the location features of a listing: coordinates,
// travel distances and nearby places.
package geo

import (
	"context"
	"math"
)

// Search parameters used when the model was trained.
const (
	SearchRadiusMeters = 1000
	CategorySchool     = "school"
	CategoryRestaurant = "restaurant"
)

// CBD is the Central Business District reference point (Raffles Place).
var CBD = Coordinates{Latitude: 1.284184, Longitude: 103.85151}

// Provider is the set of external lookups the enricher depends on. Every
// method returns an error when the lookup cannot produce a value.
type Provider interface {
	// Geocode resolves an address to coordinates.
	Geocode(ctx context.Context, address string) (Coordinates, error)

	// Distance returns the travel distance in meters between two points.
	Distance(ctx context.Context, from, to Coordinates) (int, error)

	// Nearby lists places of a category within radiusMeters, best match first.
	Nearby(ctx context.Context, center Coordinates, radiusMeters int, category string) ([]Place, error)
}

// Coordinates represents geographical coordinates
type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Place is one proximity search result. Rating is nil when the place has none.
type Place struct {
	Name     string      `json:"name"`
	Location Coordinates `json:"location"`
	Rating   *float64    `json:"rating,omitempty"`
}

// Haversine returns the great-circle distance between two points in meters.
func Haversine(from, to Coordinates) float64 {
	const earthRadiusM = 6371000.0

	lat1 := toRadians(from.Latitude)
	lat2 := toRadians(to.Latitude)
	dLat := toRadians(to.Latitude - from.Latitude)
	dLon := toRadians(to.Longitude - from.Longitude)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return earthRadiusM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
