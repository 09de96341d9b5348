package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-estimator/models"
)

var absent = models.Field{}

func TestParseRooms(t *testing.T) {
	tests := []struct {
		name          string
		rooms         models.Field
		beds, baths   models.Field
		wantBedrooms  string
		wantBathrooms *int
	}{
		{"absent block", absent, models.Has("3"), models.Has("2"), "", nil},
		{"room ignores sub-labels", models.Has("Room 1 Bath"), absent, models.Has("1"), "Room", nil},
		{"studio ignores sub-labels", models.Has("Studio 1 Bath"), absent, models.Has("1"), "Studio", nil},
		{"beds and baths", models.Has("3 Beds 2 Baths"), models.Has("3"), models.Has("2"), "3", models.IntPtr(2)},
		{"no bath label", models.Has("2 Beds"), models.Has("2"), absent, "2", nil},
		{"no bed label", models.Has("1 Bath"), absent, models.Has("1"), "", models.IntPtr(1)},
		{"seven plus", models.Has("7+ Beds 6 Baths"), models.Has("7+"), models.Has("6"), "7+", models.IntPtr(6)},
		{"more than seven", models.Has("9 Beds"), models.Has("9"), absent, "7+", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bedrooms, bathrooms := ParseRooms(tt.rooms, tt.beds, tt.baths)
			assert.Equal(t, tt.wantBedrooms, bedrooms)
			assert.Equal(t, tt.wantBathrooms, bathrooms)
		})
	}
}

func TestParseSizeOnlyAcceptsSqft(t *testing.T) {
	assert.Equal(t, models.IntPtr(1023), ParseSize([]string{"S$ 3.42 psf", "1,023 sqft"}))
	assert.Nil(t, ParseSize([]string{"S$ 3.42 psf"}))
	assert.Nil(t, ParseSize([]string{"95 sqm"}))
	assert.Nil(t, ParseSize([]string{"S$ 3.42 / sqft"}))
	assert.Nil(t, ParseSize([]string{"S$ 3.42 sqft"}))
	assert.Equal(t, models.IntPtr(850), ParseSize([]string{"S$ 3.42 / sqft", "Floor area: 850 SQFT"}))
	assert.Nil(t, ParseSize(nil))
}

func TestParseDescription(t *testing.T) {
	got, err := ParseDescription(`Listed by John Lim "Brand new unit with stunning view"`)
	require.NoError(t, err)
	assert.Equal(t, "Brand new unit with stunning view", got)

	got, err = ParseDescription(`Listed by A "first" and "second"`)
	require.NoError(t, err)
	assert.Equal(t, "first", got)

	got, err = ParseDescription(`Listed by A ""`)
	require.NoError(t, err)
	assert.Equal(t, "", got)

	for _, bad := range []string{`Listed by A`, `Listed by A "unterminated`} {
		_, err := ParseDescription(bad)
		var malformed *models.MalformedDescriptionError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, bad, malformed.Text)
	}
}

func TestParseMRTDistance(t *testing.T) {
	assert.Nil(t, ParseMRTDistance(absent))
	assert.Equal(t, models.IntPtr(400), ParseMRTDistance(models.Has("4 mins (400 m) from NS22 Orchard MRT")))
	assert.Equal(t, models.IntPtr(1200), ParseMRTDistance(models.Has("1.2 km from EW12 Bugis MRT")))
	assert.Nil(t, ParseMRTDistance(models.Has("near MRT")))
}

func TestParseDetails(t *testing.T) {
	propertyType, furnishing, year := ParseDetails([]string{"Condominium", " Fully  Furnished ", "Built: 2015", "Pets allowed"})
	assert.Equal(t, "Condominium", propertyType)
	assert.Equal(t, "Fully Furnished", furnishing)
	assert.Equal(t, models.IntPtr(2015), year)

	propertyType, furnishing, year = ParseDetails([]string{"Apartment"})
	assert.Equal(t, "Apartment", propertyType)
	assert.Empty(t, furnishing)
	assert.Nil(t, year)
}

func TestExtractorExtract(t *testing.T) {
	e := NewExtractor(newTestLogger())
	rec, err := e.Extract(models.Fragments{
		Name:             models.Has(" Parc Esta "),
		Address:          models.Has("900 Sims Avenue"),
		Price:            models.Has("S$ 4,200 /mo"),
		Sizes:            []string{"1,001 sqft", "S$ 4.20 psf"},
		Rooms:            models.Has("3 Beds 2 Baths"),
		Beds:             models.Has("3"),
		Baths:            models.Has("2"),
		Details:          []string{"Condominium", "Partially Furnished", "Built: 2022"},
		MRT:              models.Has("5 mins (350 m) from EW8 Eunos MRT"),
		AgentDescription: models.Has(`Listed by Mary "Renovated high floor unit"`),
		URL:              "https://www.propertyguru.com.sg/listing/for-rent-parc-esta-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "Parc Esta", rec.Name)
	assert.Equal(t, models.IntPtr(1001), rec.SizeSqft)
	assert.Equal(t, "3", rec.Bedrooms)
	assert.Equal(t, models.IntPtr(2), rec.Bathrooms)
	assert.Equal(t, "Condominium", rec.PropertyType)
	assert.Equal(t, "Partially Furnished", rec.Furnishing)
	assert.Equal(t, models.IntPtr(2022), rec.BuiltYear)
	assert.Equal(t, models.IntPtr(350), rec.MetersToMRT)
	assert.Equal(t, "Renovated high floor unit", rec.AgentDescription)
}

func TestExtractBatchSkipsMalformed(t *testing.T) {
	e := NewExtractor(newTestLogger())
	batch := []models.Fragments{
		{Name: models.Has("Good"), AgentDescription: models.Has(`Listed by A "ok"`)},
		{Name: models.Has("Bad"), AgentDescription: models.Has(`Listed by B without quotes`)},
		{Name: models.Has("No agent")},
	}

	records, failed := e.ExtractBatch(batch)
	assert.Equal(t, 1, failed)
	require.Len(t, records, 2)
	assert.Equal(t, "Good", records[0].Name)
	assert.Equal(t, "No agent", records[1].Name)
}

func TestFromRawRoundTrip(t *testing.T) {
	raw := models.RawListing{
		Name:                       "Parc Esta",
		Size:                       JoinFragments([]string{"1,001 sqft", "S$ 4.20 psf"}),
		Bedrooms:                   "3",
		Bathrooms:                  "2",
		PropertyTypeFurnishingYear: JoinFragments([]string{"Condominium", "Unfurnished", "Built: 2022"}),
		AgentDescription:           `Listed by Mary "Penthouse"`,
	}

	rec, err := NewExtractor(newTestLogger()).Extract(FromRaw(raw))
	require.NoError(t, err)
	assert.Equal(t, models.IntPtr(1001), rec.SizeSqft)
	assert.Equal(t, "3", rec.Bedrooms)
	assert.Equal(t, models.IntPtr(2), rec.Bathrooms)
	assert.Equal(t, "Unfurnished", rec.Furnishing)
	assert.Equal(t, models.IntPtr(2022), rec.BuiltYear)
	assert.Nil(t, rec.MetersToMRT)
	assert.Equal(t, "Penthouse", rec.AgentDescription)

	studio, err := NewExtractor(newTestLogger()).Extract(FromRaw(models.RawListing{Name: "S", Bedrooms: "Studio", Bathrooms: "1"}))
	require.NoError(t, err)
	assert.Equal(t, "Studio", studio.Bedrooms)
	assert.Nil(t, studio.Bathrooms)
}
