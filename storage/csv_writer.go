package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"rental-estimator/models"
)

// RawColumns is the header of the raw listings file. The first nine columns
// are the listing text; the rest identify the scrape.
var RawColumns = []string{
	"name", "address", "price", "size", "bedrooms", "bathrooms",
	"property_type_furnishing_year", "mrt_distance", "agent_description",
	"url", "run_id", "scraped_at",
}

// CSVWriter appends raw (uncleaned) listings to a CSV file across runs.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter opens the CSV file at path for appending, creating it and any
// intermediate directories when needed. The header row is written only when
// the file is new or empty.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("csv: open file %q: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: stat %q: %w", path, err)
	}

	w := csv.NewWriter(f)

	if info.Size() == 0 {
		if err := w.Write(RawColumns); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("csv: write header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("csv: write header: %w", err)
		}
	}

	return &CSVWriter{file: f, writer: w}, nil
}

// WriteRaw appends one row per listing.
func (c *CSVWriter) WriteRaw(listings []*models.RawListing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range listings {
		scrapedAt := ""
		if !l.ScrapedAt.IsZero() {
			scrapedAt = l.ScrapedAt.Format(time.RFC3339)
		}
		row := []string{
			l.Name,
			l.Address,
			l.Price,
			l.Size,
			l.Bedrooms,
			l.Bathrooms,
			l.PropertyTypeFurnishingYear,
			l.MRTDistance,
			l.AgentDescription,
			l.URL,
			l.RunID,
			scrapedAt,
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
