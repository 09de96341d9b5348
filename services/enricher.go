package services

import (
	"context"
	"errors"
	"strings"

	"rental-estimator/geo"
	"rental-estimator/models"
	"rental-estimator/utils"
)

// Enricher derives the geospatial and description features of a listing.
// Every lookup may fail on its own; a failure leaves only the features that
// depend on it missing.
type Enricher struct {
	provider geo.Provider
	logger   *utils.Logger
}

// NewEnricher creates an Enricher backed by provider.
func NewEnricher(provider geo.Provider, logger *utils.Logger) *Enricher {
	return &Enricher{provider: provider, logger: logger}
}

// Enrich returns a new EnrichedRecord for rec. rec is not modified and no
// error is returned: failed lookups are logged and their features left nil.
func (e *Enricher) Enrich(ctx context.Context, rec models.ListingRecord) models.EnrichedRecord {
	out := models.EnrichedRecord{ListingRecord: rec}

	flags := DetectFlags(rec.AgentDescription)
	out.HighFloor = flags.HighFloor
	out.New = flags.New
	out.Renovated = flags.Renovated
	out.View = flags.View
	out.Penthouse = flags.Penthouse

	home, ok := e.geocode(ctx, rec.Address)
	if !ok {
		return out
	}
	out.Latitude = models.FloatPtr(home.Latitude)
	out.Longitude = models.FloatPtr(home.Longitude)

	if meters, ok := e.distance(ctx, "cbd distance", home, geo.CBD); ok {
		out.MetersToCBD = models.IntPtr(meters)
	}

	if school, ok := e.nearestSchool(ctx, home); ok {
		out.SchoolLatitude = models.FloatPtr(school.Latitude)
		out.SchoolLongitude = models.FloatPtr(school.Longitude)
		if meters, ok := e.distance(ctx, "school distance", home, school); ok {
			out.MetersToSchool = models.IntPtr(meters)
		}
	}

	out.RestaurantsRating = e.restaurantsRating(ctx, home)
	return out
}

func (e *Enricher) geocode(ctx context.Context, address string) (geo.Coordinates, bool) {
	if strings.TrimSpace(address) == "" {
		return geo.Coordinates{}, false
	}
	coords, err := e.provider.Geocode(ctx, address)
	if err != nil {
		e.unavailable("geocode", err)
		return geo.Coordinates{}, false
	}
	return coords, true
}

func (e *Enricher) distance(ctx context.Context, lookup string, from, to geo.Coordinates) (int, bool) {
	meters, err := e.provider.Distance(ctx, from, to)
	if err != nil {
		e.unavailable(lookup, err)
		return 0, false
	}
	return meters, true
}

// nearestSchool takes the first ranked school within the search radius.
func (e *Enricher) nearestSchool(ctx context.Context, home geo.Coordinates) (geo.Coordinates, bool) {
	schools, err := e.provider.Nearby(ctx, home, geo.SearchRadiusMeters, geo.CategorySchool)
	if err != nil {
		e.unavailable("school search", err)
		return geo.Coordinates{}, false
	}
	if len(schools) == 0 {
		return geo.Coordinates{}, false
	}
	return schools[0].Location, true
}

// restaurantsRating averages the ratings of nearby restaurants, skipping
// unrated ones. It is nil when no restaurant carries a rating.
func (e *Enricher) restaurantsRating(ctx context.Context, home geo.Coordinates) *float64 {
	places, err := e.provider.Nearby(ctx, home, geo.SearchRadiusMeters, geo.CategoryRestaurant)
	if err != nil {
		e.unavailable("restaurant search", err)
		return nil
	}

	var sum float64
	var n int
	for _, p := range places {
		if p.Rating == nil {
			continue
		}
		sum += *p.Rating
		n++
	}
	if n == 0 {
		return nil
	}
	return models.FloatPtr(sum / float64(n))
}

func (e *Enricher) unavailable(lookup string, err error) {
	if errors.Is(err, context.Canceled) {
		e.logger.Debug("[enricher] %s cancelled", lookup)
		return
	}
	e.logger.Warn("[enricher] %v", &models.LookupUnavailableError{Lookup: lookup, Err: err})
}
