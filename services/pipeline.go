package services

import (
	"context"

	"rental-estimator/models"
	"rental-estimator/utils"
)

// Processed is the outcome of running one listing through the pipeline.
// Err is set when the record could not be imputed.
type Processed struct {
	Enriched models.EnrichedRecord
	Features models.FeatureVector
	Err      error
}

// Pipeline enriches and imputes listing records. Batch and form input go
// through the same steps.
type Pipeline struct {
	enricher *Enricher
	imputer  *Imputer
	pool     func() *utils.WorkerPool
	logger   *utils.Logger
}

// NewPipeline creates a Pipeline. Batches run up to maxWorkers records at a
// time with starts spaced rateLimitMs apart.
func NewPipeline(enricher *Enricher, imputer *Imputer, maxWorkers, rateLimitMs int, logger *utils.Logger) *Pipeline {
	return &Pipeline{
		enricher: enricher,
		imputer:  imputer,
		pool: func() *utils.WorkerPool {
			return utils.NewWorkerPool(maxWorkers, rateLimitMs)
		},
		logger: logger,
	}
}

// Process enriches and imputes one record.
func (p *Pipeline) Process(ctx context.Context, rec models.ListingRecord) (models.FeatureVector, models.EnrichedRecord, error) {
	enriched := p.enricher.Enrich(ctx, rec)
	features, err := p.imputer.Impute(enriched)
	if err != nil {
		return models.FeatureVector{}, enriched, err
	}
	return features, enriched, nil
}

// ProcessBatch processes records in parallel. Results keep the input order;
// records not started before ctx ended carry ctx's error.
func (p *Pipeline) ProcessBatch(ctx context.Context, records []models.ListingRecord) []Processed {
	results := make([]Processed, len(records))
	pool := p.pool()

	for i, rec := range records {
		i, rec := i, rec
		err := pool.Submit(ctx, func(ctx context.Context) {
			features, enriched, err := p.Process(ctx, rec)
			results[i] = Processed{Enriched: enriched, Features: features, Err: err}
		})
		if err != nil {
			for j := i; j < len(records); j++ {
				results[j] = Processed{Enriched: models.EnrichedRecord{ListingRecord: records[j]}, Err: err}
			}
			break
		}
	}
	pool.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			p.logger.Warn("[pipeline] Skipping %q: %v", r.Enriched.Name, r.Err)
		}
	}
	p.logger.Info("[pipeline] Processed %d records (%d failed)", len(records), failed)
	return results
}
