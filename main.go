package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"rental-estimator/api"
	"rental-estimator/cache"
	"rental-estimator/config"
	"rental-estimator/estimator"
	"rental-estimator/geo"
	"rental-estimator/models"
	"rental-estimator/scraper/propertyguru"
	"rental-estimator/services"
	"rental-estimator/storage"
	"rental-estimator/utils"
)

const usage = `Usage: rental-estimator <command> [flags]

Commands:
  scrape     scrape listing pages and append them to the raw CSV
  enrich     extract, enrich and impute a raw CSV file (-in)
  serve      start the estimation web server
  estimate   estimate the rent of one listing from flags
  insights   summarise the feature rows stored in PostgreSQL
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	logger := utils.NewLoggerWith(os.Stdout, cfg.LogFormat, cfg.LogLevel).With("command", os.Args[1])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "scrape":
		err = runScrape(ctx, cfg, logger)
	case "enrich":
		err = runEnrich(ctx, cfg, logger, os.Args[2:])
	case "serve":
		err = runServe(ctx, cfg, logger)
	case "estimate":
		err = runEstimate(ctx, cfg, logger, os.Args[2:])
	case "insights":
		err = runInsights(ctx, cfg, logger)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		logger.Error("%s failed: %v", os.Args[1], err)
		stop()
		os.Exit(1)
	}
}

func runScrape(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	logger.Info("=== Rental listing scrape starting ===")
	logger.Info("Config: pages %d-%d | concurrency: %d | rate: %dms | fetcher: %s",
		cfg.StartPage, cfg.EndPage, cfg.MaxConcurrency, cfg.RateLimitMs, cfg.Fetcher)

	selectors, err := config.LoadSelectors(cfg.SelectorsFile)
	if err != nil {
		return err
	}

	var fetcher propertyguru.Fetcher
	switch cfg.Fetcher {
	case "chrome":
		chrome, err := propertyguru.NewChromeFetcher(cfg.ChromeBin)
		if err != nil {
			return err
		}
		defer chrome.Close()
		fetcher = chrome
	default:
		fetcher = propertyguru.NewHTTPFetcher(&http.Client{Timeout: 30 * time.Second})
	}

	scraper := propertyguru.New(fetcher, selectors, cfg, logger)
	if _, err := scraper.Summary(ctx); err != nil {
		logger.Warn("[main] Could not read search summary: %v", err)
	}

	result, err := scraper.Scrape(ctx)
	if err != nil {
		return err
	}

	cleaned := services.NewCleaner(logger).Clean(result.Raw())
	if len(cleaned) == 0 {
		return errors.New("no listings were scraped")
	}

	writers := []storage.RawListingWriter{}
	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		return err
	}
	writers = append(writers, csvWriter)

	if cfg.RabbitMQURL != "" {
		publisher, err := storage.NewQueuePublisher(cfg.RabbitMQURL, cfg.RabbitMQQueue)
		if err != nil {
			logger.Error("[main] Queue unavailable, listings go to CSV only: %v", err)
		} else {
			writers = append(writers, publisher)
		}
	}

	for _, w := range writers {
		if err := w.WriteRaw(cleaned); err != nil {
			logger.Error("[main] Raw write failed: %v", err)
		}
		if err := w.Close(); err != nil {
			logger.Warn("[main] Close failed: %v", err)
		}
	}
	logger.Info("Raw listings of run %s appended to %s", result.RunID, cfg.CSVOutputPath)

	kept := make(map[string]bool, len(cleaned))
	runIDs := make(map[string]string, len(cleaned))
	for _, l := range cleaned {
		kept[l.URL] = true
		if l.URL != "" {
			runIDs[l.URL] = l.RunID
		}
	}

	// The live fragments carry the rooms block sub-labels the CSV row flattens.
	fragments := make([]models.Fragments, 0, len(cleaned))
	for _, f := range result.Fragments() {
		if strings.TrimSpace(f.Name.Text) == "" || !kept[strings.TrimSpace(f.URL)] {
			continue
		}
		fragments = append(fragments, f)
	}
	return processFragments(ctx, cfg, logger, fragments, runIDs)
}

func runEnrich(ctx context.Context, cfg *config.Config, logger *utils.Logger, args []string) error {
	fs := flag.NewFlagSet("enrich", flag.ExitOnError)
	in := fs.String("in", cfg.CSVOutputPath, "raw listings CSV to process")
	_ = fs.Parse(args)

	listings, err := storage.ReadRaw(*in)
	if err != nil {
		return err
	}
	if len(listings) == 0 {
		return fmt.Errorf("no listings in %s", *in)
	}
	logger.Info("Loaded %d raw listings from %s", len(listings), *in)

	fragments := make([]models.Fragments, 0, len(listings))
	runIDs := make(map[string]string, len(listings))
	for _, l := range listings {
		fragments = append(fragments, services.FromRaw(l))
		if l.URL != "" {
			runIDs[l.URL] = l.RunID
		}
	}
	return processFragments(ctx, cfg, logger, fragments, runIDs)
}

// processFragments runs listings through extraction, enrichment and
// imputation, optionally stores the features, and prints the batch summary.
func processFragments(ctx context.Context, cfg *config.Config, logger *utils.Logger, fragments []models.Fragments, runIDs map[string]string) error {
	records, failed := services.NewExtractor(logger).ExtractBatch(fragments)
	if len(records) == 0 {
		return errors.New("every listing failed extraction")
	}

	provider, closeProvider, err := newGeoProvider(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeProvider()

	results := newPipeline(cfg, provider, logger).ProcessBatch(ctx, records)

	enriched := make([]models.EnrichedRecord, 0, len(results))
	rows := make([]storage.FeatureRow, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		enriched = append(enriched, r.Enriched)
		rows = append(rows, storage.FeatureRow{
			RunID:    runIDs[r.Enriched.URL],
			Enriched: r.Enriched,
			Features: r.Features,
		})
	}

	if cfg.StorePostgres {
		if err := storeFeatures(ctx, cfg, rows); err != nil {
			logger.Error("[main] PostgreSQL write failed: %v", err)
		} else {
			logger.Info("Stored %d feature rows in PostgreSQL (table: listing_features)", len(rows))
		}
	}

	insights := services.NewInsightService(logger)
	insights.Print(insights.Generate(enriched, failed))
	return nil
}

func storeFeatures(ctx context.Context, cfg *config.Config, rows []storage.FeatureRow) error {
	writer, err := storage.NewPostgresWriter(ctx, cfg.DSN())
	if err != nil {
		return err
	}
	defer writer.Close()
	return writer.WriteFeatures(ctx, rows)
}

func runInsights(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	pgWriter, err := storage.NewPostgresWriter(ctx, cfg.DSN())
	if err != nil {
		logger.Error("Make sure PostgreSQL is running: docker compose up -d")
		return err
	}
	defer pgWriter.Close()

	rows, err := pgWriter.FetchAll(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return errors.New("no feature rows stored yet; run enrich with STORE_POSTGRES=true first")
	}
	logger.Info("Loaded %d feature rows from PostgreSQL", len(rows))

	insights := services.NewInsightService(logger)
	insights.Print(insights.Generate(storage.EnrichedRecords(rows), 0))
	return nil
}

func runServe(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	provider, closeProvider, err := newGeoProvider(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeProvider()

	server := api.NewServer(newPipeline(cfg, provider, logger), newPredictor(cfg, logger), logger)
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("[server] Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("[server] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runEstimate(ctx context.Context, cfg *config.Config, logger *utils.Logger, args []string) error {
	fs := flag.NewFlagSet("estimate", flag.ExitOnError)
	address := fs.String("address", "", "street address of the unit")
	size := fs.Int("size", 0, "floor area in sqft")
	bedrooms := fs.String("bedrooms", "", "Room, Studio, 1-6 or 7+")
	bathrooms := fs.Int("bathrooms", 0, "number of bathrooms")
	propertyType := fs.String("property-type", "", "property type, e.g. Condominium")
	furnishing := fs.String("furnishing", "", "Unfurnished, Partially Furnished or Fully Furnished")
	builtYear := fs.Int("built-year", 0, "year the building was completed")
	mrt := fs.Int("mrt", 0, "walking distance to the nearest MRT in meters")
	description := fs.String("description", "", "agent description")
	_ = fs.Parse(args)

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	optional := func(name string, v int) *int {
		if !set[name] {
			return nil
		}
		return models.IntPtr(v)
	}

	req := api.EstimateRequest{
		Size:             optional("size", *size),
		Bedrooms:         *bedrooms,
		Bathrooms:        optional("bathrooms", *bathrooms),
		Address:          *address,
		PropertyType:     *propertyType,
		Furnishing:       *furnishing,
		BuiltYear:        optional("built-year", *builtYear),
		MetersToMRT:      optional("mrt", *mrt),
		AgentDescription: *description,
	}

	rec, err := req.Record()
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			names := make([]string, 0, len(verr.Fields))
			for name := range verr.Fields {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(os.Stderr, "  -%s: %s\n", name, verr.Fields[name])
			}
		}
		return err
	}

	provider, closeProvider, err := newGeoProvider(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeProvider()

	server := api.NewServer(newPipeline(cfg, provider, logger), newPredictor(cfg, logger), logger)
	estimate, err := server.Estimate(ctx, rec)
	if err != nil {
		return err
	}

	fmt.Printf("\n  Predicted rental price: S$ %.2f /mo\n\n", estimate.Prediction)
	return nil
}

// newGeoProvider builds the configured lookup provider behind a read-through
// cache. The returned func releases the cache connection.
func newGeoProvider(ctx context.Context, cfg *config.Config, logger *utils.Logger) (geo.Provider, func(), error) {
	var next geo.Provider
	switch cfg.GeoProvider {
	case "google":
		if cfg.GoogleMapsAPIKey == "" {
			return nil, nil, errors.New("GEO_PROVIDER=google requires GOOGLE_MAPS_API_KEY")
		}
		next = geo.NewGoogleProvider(cfg.GoogleMapsAPIKey)
	case "static", "":
		logger.Warn("[main] Using static geo lookups; location features are placeholders")
		return geo.NewStaticProvider(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown GEO_PROVIDER %q", cfg.GeoProvider)
	}

	ttl := time.Duration(cfg.GeoCacheTTLHours) * time.Hour
	if addr := cfg.RedisAddr(); addr != "" {
		redisCache, err := cache.NewRedisCache(ctx, addr, cfg.RedisPassword, cfg.RedisDB)
		if err == nil {
			logger.Info("[main] Caching geo lookups in Redis at %s", addr)
			return geo.NewCachedProvider(next, redisCache, ttl), func() { _ = redisCache.Close() }, nil
		}
		logger.Warn("[main] Redis unavailable, caching geo lookups in memory: %v", err)
	}

	return geo.NewCachedProvider(next, cache.NewMemoryCache(4096, ttl), ttl), func() {}, nil
}

func newPipeline(cfg *config.Config, provider geo.Provider, logger *utils.Logger) *services.Pipeline {
	return services.NewPipeline(
		services.NewEnricher(provider, logger),
		services.NewImputer(),
		cfg.MaxConcurrency,
		0,
		logger,
	)
}

func newPredictor(cfg *config.Config, logger *utils.Logger) estimator.Predictor {
	if cfg.ModelEndpoint == "" {
		logger.Warn("[main] MODEL_ENDPOINT not set, predictions use the fixed development value")
		return estimator.NewFixedPredictor()
	}
	return estimator.NewHTTPPredictor(cfg.ModelEndpoint, time.Duration(cfg.ModelTimeoutSeconds)*time.Second, nil)
}
