package geo

import "context"

// Fixed values returned by StaticProvider. They match the placeholders the
// estimator form has always shown when live lookups are switched off.
var (
	StaticLocation      = Coordinates{Latitude: 1.35, Longitude: 103.8}
	StaticSchool        = Place{Name: "School", Location: Coordinates{Latitude: 1.35, Longitude: 103.8}}
	StaticRating        = 4.0
	StaticMetersToCBD   = 10750
	StaticMetersToPlace = 450
)

// StaticProvider answers every lookup with fixed values. It needs no network
// access or API key.
type StaticProvider struct{}

func NewStaticProvider() *StaticProvider {
	return &StaticProvider{}
}

func (StaticProvider) Geocode(_ context.Context, _ string) (Coordinates, error) {
	return StaticLocation, nil
}

// Distance returns StaticMetersToCBD when to is the CBD and StaticMetersToPlace otherwise.
func (StaticProvider) Distance(_ context.Context, _, to Coordinates) (int, error) {
	if to == CBD {
		return StaticMetersToCBD, nil
	}
	return StaticMetersToPlace, nil
}

// Nearby returns the fixed place of the category when it lies within
// radiusMeters of center.
func (StaticProvider) Nearby(_ context.Context, center Coordinates, radiusMeters int, category string) ([]Place, error) {
	var candidates []Place
	switch category {
	case CategorySchool:
		candidates = []Place{StaticSchool}
	case CategoryRestaurant:
		rating := StaticRating
		candidates = []Place{{Name: "Restaurant", Location: StaticLocation, Rating: &rating}}
	}

	places := []Place{}
	for _, p := range candidates {
		if Haversine(center, p.Location) <= float64(radiusMeters) {
			places = append(places, p)
		}
	}
	return places, nil
}
