package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"rental-estimator/models"
)

// ReadRaw loads every row of a raw listings file. Columns are matched by
// header name, so files holding only the nine listing columns are accepted.
func ReadRaw(path string) ([]models.RawListing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, required := range RawColumns[:9] {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("csv: %q: missing column %q", path, required)
		}
	}

	var listings []models.RawListing
	line := 1
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("csv: %q line %d: %w", path, line, err)
		}

		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}

		l := models.RawListing{
			Name:                       get("name"),
			Address:                    get("address"),
			Price:                      get("price"),
			Size:                       get("size"),
			Bedrooms:                   get("bedrooms"),
			Bathrooms:                  get("bathrooms"),
			PropertyTypeFurnishingYear: get("property_type_furnishing_year"),
			MRTDistance:                get("mrt_distance"),
			AgentDescription:           get("agent_description"),
			URL:                        get("url"),
			RunID:                      get("run_id"),
		}
		if ts := get("scraped_at"); ts != "" {
			if t, err := time.Parse(time.RFC3339, ts); err == nil {
				l.ScrapedAt = t
			}
		}
		listings = append(listings, l)
	}
	return listings, nil
}
