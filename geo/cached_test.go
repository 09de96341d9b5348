package geo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-estimator/cache"
)

type countingProvider struct {
	geocodes  int
	distances int
	nearby    int
	fail      bool
}

func (p *countingProvider) Geocode(_ context.Context, _ string) (Coordinates, error) {
	p.geocodes++
	if p.fail {
		return Coordinates{}, errors.New("quota exceeded")
	}
	return Coordinates{Latitude: 1.3, Longitude: 103.8}, nil
}

func (p *countingProvider) Distance(_ context.Context, _, _ Coordinates) (int, error) {
	p.distances++
	return 1200, nil
}

func (p *countingProvider) Nearby(_ context.Context, _ Coordinates, _ int, _ string) ([]Place, error) {
	p.nearby++
	rating := 3.5
	return []Place{{Name: "A", Rating: &rating}, {Name: "B"}}, nil
}

func TestCachedProviderMemoisesLookups(t *testing.T) {
	next := &countingProvider{}
	provider := NewCachedProvider(next, cache.NewMemoryCache(16, time.Minute), 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		coords, err := provider.Geocode(ctx, "  Tampines Ave 5 ")
		require.NoError(t, err)
		assert.Equal(t, 1.3, coords.Latitude)
	}
	_, err := provider.Geocode(ctx, "tampines ave 5")
	require.NoError(t, err)
	assert.Equal(t, 1, next.geocodes)

	for i := 0; i < 2; i++ {
		meters, err := provider.Distance(ctx, CBD, StaticLocation)
		require.NoError(t, err)
		assert.Equal(t, 1200, meters)
	}
	assert.Equal(t, 1, next.distances)

	for i := 0; i < 2; i++ {
		places, err := provider.Nearby(ctx, CBD, SearchRadiusMeters, CategoryRestaurant)
		require.NoError(t, err)
		require.Len(t, places, 2)
		require.NotNil(t, places[0].Rating)
		assert.Equal(t, 3.5, *places[0].Rating)
		assert.Nil(t, places[1].Rating)
	}
	assert.Equal(t, 1, next.nearby)

	_, err = provider.Nearby(ctx, CBD, SearchRadiusMeters, CategorySchool)
	require.NoError(t, err)
	assert.Equal(t, 2, next.nearby)
}

func TestCachedProviderDoesNotCacheFailures(t *testing.T) {
	next := &countingProvider{fail: true}
	provider := NewCachedProvider(next, cache.NewMemoryCache(16, time.Minute), time.Hour)
	ctx := context.Background()

	_, err := provider.Geocode(ctx, "Bishan")
	require.Error(t, err)
	_, err = provider.Geocode(ctx, "Bishan")
	require.Error(t, err)
	assert.Equal(t, 2, next.geocodes)
}

func TestStaticProvider(t *testing.T) {
	provider := NewStaticProvider()
	ctx := context.Background()

	coords, err := provider.Geocode(ctx, "anything")
	require.NoError(t, err)
	assert.Equal(t, StaticLocation, coords)

	toCBD, err := provider.Distance(ctx, coords, CBD)
	require.NoError(t, err)
	assert.Equal(t, 10750, toCBD)

	schools, err := provider.Nearby(ctx, coords, SearchRadiusMeters, CategorySchool)
	require.NoError(t, err)
	require.Len(t, schools, 1)

	toSchool, err := provider.Distance(ctx, coords, schools[0].Location)
	require.NoError(t, err)
	assert.Equal(t, 450, toSchool)

	far, err := provider.Nearby(ctx, CBD, SearchRadiusMeters, CategorySchool)
	require.NoError(t, err)
	assert.Empty(t, far)

	restaurants, err := provider.Nearby(ctx, coords, SearchRadiusMeters, CategoryRestaurant)
	require.NoError(t, err)
	require.Len(t, restaurants, 1)
	assert.Equal(t, 4.0, *restaurants[0].Rating)
}
