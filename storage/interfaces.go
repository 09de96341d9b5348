package storage

import (
	"context"

	"rental-estimator/models"
)

// RawListingWriter is the interface for persisting unprocessed scraped data.
type RawListingWriter interface {
	WriteRaw(listings []*models.RawListing) error
	Close() error
}

// FeatureWriter is the interface any feature storage backend must satisfy.
type FeatureWriter interface {
	WriteFeatures(ctx context.Context, rows []FeatureRow) error
	Close() error
}

var (
	_ RawListingWriter = (*CSVWriter)(nil)
	_ RawListingWriter = (*QueuePublisher)(nil)
	_ FeatureWriter    = (*PostgresWriter)(nil)
)

// FeatureRow is one processed listing as stored: the enriched record and the
// imputed vector the model saw.
type FeatureRow struct {
	ID       string
	RunID    string
	Enriched models.EnrichedRecord
	Features models.FeatureVector
}

// EnrichedRecords returns the enriched record of each row.
func EnrichedRecords(rows []FeatureRow) []models.EnrichedRecord {
	out := make([]models.EnrichedRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Enriched)
	}
	return out
}
