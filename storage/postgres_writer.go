package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"rental-estimator/models"
)

const featuresTable = "listing_features"

var dialect = goqu.Dialect("postgres")

// featureColumns is the select list of FetchAll, in scan order.
var featureColumns = []any{
	"id", "run_id", "url", "name", "address", "price", "size", "bedrooms", "bathrooms",
	"latitude", "longitude", "meters_to_cbd", "school_latitude", "school_longitude",
	"meters_to_school", "restaurants_rating", "property_type", "furnishing", "built_year",
	"meters_to_mrt", "high_floor", "new", "renovated", "view", "penthouse", "agent_description",
}

// PostgresWriter persists processed listing features to PostgreSQL, one row
// per listing URL.
type PostgresWriter struct {
	db   *sql.DB
	goqu *goqu.Database
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(ctx context.Context, dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, fmt.Errorf("postgres: ping: %w", ctx.Err())
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := newPostgresWriter(db)
	if err := pw.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func newPostgresWriter(db *sql.DB) *PostgresWriter {
	return &PostgresWriter{db: db, goqu: goqu.New("postgres", db)}
}

func (pw *PostgresWriter) migrate(ctx context.Context) error {
	_, err := pw.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS listing_features (
			id                 UUID         PRIMARY KEY,
			run_id             TEXT         NOT NULL DEFAULT '',
			url                TEXT         UNIQUE NOT NULL,
			name               TEXT         NOT NULL DEFAULT '',
			address            TEXT         NOT NULL DEFAULT '',
			price              TEXT         NOT NULL DEFAULT '',
			size               INTEGER,
			bedrooms           VARCHAR(10)  NOT NULL,
			bathrooms          INTEGER      NOT NULL,
			latitude           DOUBLE PRECISION,
			longitude          DOUBLE PRECISION,
			meters_to_cbd      INTEGER,
			school_latitude    DOUBLE PRECISION,
			school_longitude   DOUBLE PRECISION,
			meters_to_school   INTEGER      NOT NULL,
			restaurants_rating DOUBLE PRECISION,
			property_type      VARCHAR(50)  NOT NULL DEFAULT '',
			furnishing         VARCHAR(30)  NOT NULL,
			built_year         INTEGER      NOT NULL,
			meters_to_mrt      INTEGER      NOT NULL,
			high_floor         BOOLEAN      NOT NULL DEFAULT FALSE,
			"new"              BOOLEAN      NOT NULL DEFAULT FALSE,
			renovated          BOOLEAN      NOT NULL DEFAULT FALSE,
			"view"             BOOLEAN      NOT NULL DEFAULT FALSE,
			penthouse          BOOLEAN      NOT NULL DEFAULT FALSE,
			agent_description  TEXT         NOT NULL DEFAULT '',
			created_at         TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			updated_at         TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_listing_features_property_type ON listing_features(property_type);
		CREATE INDEX IF NOT EXISTS idx_listing_features_bedrooms      ON listing_features(bedrooms);
		CREATE INDEX IF NOT EXISTS idx_listing_features_run_id        ON listing_features(run_id);
	`)
	return err
}

// WriteFeatures upserts rows in batches, keyed by listing URL. Rows without a
// URL are skipped; of repeated URLs the last row wins.
func (pw *PostgresWriter) WriteFeatures(ctx context.Context, rows []FeatureRow) error {
	const batchSize = 50
	rows = dedupeByURL(rows)
	for i := 0; i < len(rows); i += batchSize {
		end := i + batchSize
		if end > len(rows) {
			end = len(rows)
		}

		query, args, err := buildUpsert(rows[i:end])
		if err != nil {
			return fmt.Errorf("postgres: build upsert: %w", err)
		}
		if query == "" {
			continue
		}
		if _, err := pw.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("postgres: upsert features: %w", err)
		}
	}
	return nil
}

// buildUpsert renders the insert for one batch. It returns an empty query
// when no row carries a URL.
func buildUpsert(batch []FeatureRow) (string, []any, error) {
	batch = dedupeByURL(batch)
	records := make([]any, 0, len(batch))
	for _, r := range batch {
		records = append(records, featureRecord(r))
	}
	if len(records) == 0 {
		return "", nil, nil
	}

	update := goqu.Record{"updated_at": goqu.L("NOW()")}
	for _, col := range featureColumns {
		name := col.(string)
		if name == "id" || name == "url" {
			continue
		}
		update[name] = goqu.L(`EXCLUDED."` + name + `"`)
	}

	return dialect.Insert(featuresTable).
		Rows(records...).
		OnConflict(goqu.DoUpdate("url", update)).
		ToSQL()
}

// dedupeByURL drops rows without a URL and keeps the last row of each URL at
// the position of its first occurrence. A single upsert statement may not
// touch the same row twice.
func dedupeByURL(rows []FeatureRow) []FeatureRow {
	index := make(map[string]int, len(rows))
	out := make([]FeatureRow, 0, len(rows))
	for _, r := range rows {
		url := r.Enriched.URL
		if url == "" {
			continue
		}
		if i, seen := index[url]; seen {
			out[i] = r
			continue
		}
		index[url] = len(out)
		out = append(out, r)
	}
	return out
}

func featureRecord(r FeatureRow) goqu.Record {
	id := r.ID
	if id == "" {
		id = uuid.NewString()
	}
	e, v := r.Enriched, r.Features

	return goqu.Record{
		"id":                 id,
		"run_id":             r.RunID,
		"url":                e.URL,
		"name":               e.Name,
		"address":            e.Address,
		"price":              e.Price,
		"size":               nullInt(v.Size),
		"bedrooms":           v.Bedrooms,
		"bathrooms":          v.Bathrooms,
		"latitude":           nullFloat(v.Latitude),
		"longitude":          nullFloat(v.Longitude),
		"meters_to_cbd":      nullInt(v.MetersToCBD),
		"school_latitude":    nullFloat(e.SchoolLatitude),
		"school_longitude":   nullFloat(e.SchoolLongitude),
		"meters_to_school":   v.MetersToSchool,
		"restaurants_rating": nullFloat(v.RestaurantsRating),
		"property_type":      v.PropertyType,
		"furnishing":         v.Furnishing,
		"built_year":         v.BuiltYear,
		"meters_to_mrt":      v.MetersToMRT,
		"high_floor":         v.HighFloor,
		"new":                v.New,
		"renovated":          v.Renovated,
		"view":               v.View,
		"penthouse":          v.Penthouse,
		"agent_description":  e.AgentDescription,
	}
}

// FetchAll retrieves all stored feature rows, oldest first.
func (pw *PostgresWriter) FetchAll(ctx context.Context) ([]FeatureRow, error) {
	query, args, err := pw.goqu.Select(featureColumns...).
		From(featuresTable).
		Order(goqu.I("created_at").Asc(), goqu.I("url").Asc()).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("postgres: build select: %w", err)
	}

	rows, err := pw.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var out []FeatureRow
	for rows.Next() {
		var (
			r                                    FeatureRow
			size, cbd                            sql.NullInt64
			lat, lng, schoolLat, schoolLng, rate sql.NullFloat64
		)
		e, v := &r.Enriched, &r.Features
		if err := rows.Scan(
			&r.ID, &r.RunID, &e.URL, &e.Name, &e.Address, &e.Price, &size, &v.Bedrooms, &v.Bathrooms,
			&lat, &lng, &cbd, &schoolLat, &schoolLng,
			&v.MetersToSchool, &rate, &v.PropertyType, &v.Furnishing, &v.BuiltYear,
			&v.MetersToMRT, &v.HighFloor, &v.New, &v.Renovated, &v.View, &v.Penthouse, &e.AgentDescription,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}

		v.Size = intPtr(size)
		v.Latitude = floatPtr(lat)
		v.Longitude = floatPtr(lng)
		v.MetersToCBD = intPtr(cbd)
		v.RestaurantsRating = floatPtr(rate)

		e.SizeSqft = v.Size
		e.Bedrooms = v.Bedrooms
		e.Bathrooms = models.IntPtr(v.Bathrooms)
		e.PropertyType = v.PropertyType
		e.Furnishing = v.Furnishing
		e.BuiltYear = models.IntPtr(v.BuiltYear)
		e.MetersToMRT = models.IntPtr(v.MetersToMRT)
		e.Latitude = v.Latitude
		e.Longitude = v.Longitude
		e.MetersToCBD = v.MetersToCBD
		e.SchoolLatitude = floatPtr(schoolLat)
		e.SchoolLongitude = floatPtr(schoolLng)
		e.MetersToSchool = models.IntPtr(v.MetersToSchool)
		e.RestaurantsRating = v.RestaurantsRating
		e.HighFloor, e.New, e.Renovated, e.View, e.Penthouse = v.HighFloor, v.New, v.Renovated, v.View, v.Penthouse

		out = append(out, r)
	}
	return out, rows.Err()
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	return models.IntPtr(int(n.Int64))
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	return models.FloatPtr(n.Float64)
}
