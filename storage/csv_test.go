package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-estimator/models"
)

func sampleRaw(url string) *models.RawListing {
	return &models.RawListing{
		Name:                       "The Sail @ Marina Bay",
		Address:                    "2 Marina Boulevard",
		Price:                      "S$ 6,500 /mo",
		Size:                       "1,023 sqft",
		Bedrooms:                   "2",
		Bathrooms:                  "2",
		PropertyTypeFurnishingYear: "Condominium, Fully Furnished, Built: 2008",
		MRTDistance:                "5 min (350 m) from DT17 Downtown MRT",
		AgentDescription:           `"High floor unit with sea view"`,
		URL:                        url,
		RunID:                      "run-1",
		ScrapedAt:                  time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC),
	}
}

func TestCSVWriterAppendsWithSingleHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "listings.csv")

	w, err := NewCSVWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteRaw([]*models.RawListing{sampleRaw("https://example.com/a")}))
	require.NoError(t, w.Close())

	w, err = NewCSVWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteRaw([]*models.RawListing{sampleRaw("https://example.com/b")}))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "property_type_furnishing_year"))

	got, err := ReadRaw(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "https://example.com/a", got[0].URL)
	assert.Equal(t, "https://example.com/b", got[1].URL)
}

func TestReadRawRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.csv")
	want := sampleRaw("https://example.com/a")

	w, err := NewCSVWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteRaw([]*models.RawListing{want}))
	require.NoError(t, w.Close())

	got, err := ReadRaw(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, *want, got[0])
}

func TestReadRawAcceptsListingColumnsOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.csv")
	content := "\ufeffname,address,price,size,bedrooms,bathrooms,property_type_furnishing_year,mrt_distance,agent_description\n" +
		"Room in Tampines,10 Tampines St,S$ 900 /mo,,Room,1,HDB,,\"\"\"Near MRT\"\"\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	got, err := ReadRaw(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Room in Tampines", got[0].Name)
	assert.Equal(t, "Room", got[0].Bedrooms)
	assert.Equal(t, `"Near MRT"`, got[0].AgentDescription)
	assert.Empty(t, got[0].URL)
	assert.True(t, got[0].ScrapedAt.IsZero())
}

func TestReadRawMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,address\nA,B\n"), 0644))

	_, err := ReadRaw(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing column "price"`)
}

func TestReadRawEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	got, err := ReadRaw(path)
	require.NoError(t, err)
	assert.Empty(t, got)
}
