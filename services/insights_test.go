package services

import (
	"testing"

	"rental-estimator/models"
)

func sampleRecords() []models.EnrichedRecord {
	lat, lng := 1.3, 103.8
	return []models.EnrichedRecord{
		{
			ListingRecord: models.ListingRecord{Name: "Condo A", Price: "S$ 4,000 /mo", SizeSqft: models.IntPtr(1000), Bedrooms: "2", PropertyType: "Condominium"},
			Latitude:      &lat, Longitude: &lng, View: true,
		},
		{
			ListingRecord: models.ListingRecord{Name: "HDB B", Price: "S$ 600 /wk", SizeSqft: models.IntPtr(800), Bedrooms: "3", PropertyType: "HDB Flat"},
			New:           true, Renovated: true,
		},
		{
			ListingRecord: models.ListingRecord{Name: "Penthouse C", Price: "S$ 12,000 /mo", Bedrooms: "4", PropertyType: "Condominium"},
			Latitude:      &lat, Longitude: &lng, Penthouse: true, View: true,
		},
		{
			ListingRecord: models.ListingRecord{Name: "Room D", Price: "", Bedrooms: "Room", PropertyType: "HDB Flat"},
		},
	}
}

func TestInsightCounts(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(sampleRecords(), 2)
	if r.TotalListings != 4 {
		t.Errorf("TotalListings: got %d, want 4", r.TotalListings)
	}
	if r.ExtractionFailures != 2 {
		t.Errorf("ExtractionFailures: got %d, want 2", r.ExtractionFailures)
	}
	if r.Geocoded != 2 {
		t.Errorf("Geocoded: got %d, want 2", r.Geocoded)
	}
	if r.AverageSizeSqft != 900 {
		t.Errorf("AverageSizeSqft: got %.2f, want 900", r.AverageSizeSqft)
	}
}

func TestInsightRents(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(sampleRecords(), 0)
	wantAvg := 6200.0
	if r.AverageMonthlyRent != wantAvg {
		t.Errorf("AverageMonthlyRent: got %.2f, want %.2f", r.AverageMonthlyRent, wantAvg)
	}
	if r.MinMonthlyRent != 2600 {
		t.Errorf("MinMonthlyRent: got %.2f, want 2600", r.MinMonthlyRent)
	}
	if r.MaxMonthlyRent != 12000 {
		t.Errorf("MaxMonthlyRent: got %.2f, want 12000", r.MaxMonthlyRent)
	}
}

func TestInsightMostExpensive(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(sampleRecords(), 0)
	if r.MostExpensive == nil {
		t.Fatal("MostExpensive should not be nil")
	}
	if r.MostExpensive.Name != "Penthouse C" {
		t.Errorf("MostExpensive: got %q, want %q", r.MostExpensive.Name, "Penthouse C")
	}
}

func TestInsightGrouping(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(sampleRecords(), 0)
	if r.ByPropertyType["Condominium"] != 2 {
		t.Errorf("Condominium count: got %d, want 2", r.ByPropertyType["Condominium"])
	}
	if r.ByBedrooms["Room"] != 1 {
		t.Errorf("Room count: got %d, want 1", r.ByBedrooms["Room"])
	}
	if r.FlagCounts["view"] != 2 {
		t.Errorf("view flag count: got %d, want 2", r.FlagCounts["view"])
	}
	if _, ok := r.FlagCounts["high_floor"]; ok {
		t.Errorf("unset flags should not be counted")
	}
}

func TestInsightEmptyInput(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(nil, 0)
	if r.TotalListings != 0 {
		t.Errorf("expected 0 total listings for empty input")
	}
	if r.MostExpensive != nil {
		t.Errorf("expected no most expensive listing for empty input")
	}
}

func TestTruncateKeepsWholeRunes(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"Short name", 26, "Short name"},
		{"The Sail @ Marina Bay Tower 2", 12, "The Sail ..."},
		{"滨海湾金沙公寓高层海景单位出租", 8, "滨海湾金沙..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q; want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
