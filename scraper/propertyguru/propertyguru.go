// Package propertyguru scrapes rental listing cards from the PropertyGuru
// search results pages.
package propertyguru

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"rental-estimator/config"
	"rental-estimator/models"
	"rental-estimator/utils"
)

// Result is the output of one scrape run.
type Result struct {
	RunID       string
	Cards       []Card
	PagesOK     int
	PagesFailed int
}

// Raw returns the raw rows of the run's cards.
func (r *Result) Raw() []*models.RawListing {
	out := make([]*models.RawListing, 0, len(r.Cards))
	for i := range r.Cards {
		out = append(out, &r.Cards[i].Raw)
	}
	return out
}

// Fragments returns the extractor input of the run's cards.
func (r *Result) Fragments() []models.Fragments {
	out := make([]models.Fragments, 0, len(r.Cards))
	for _, c := range r.Cards {
		out = append(out, c.Fragments)
	}
	return out
}

// Scraper drives pagination over a page range. It holds no global state:
// the fetcher, and therefore the HTTP client or browser, is passed in per run.
type Scraper struct {
	fetcher   Fetcher
	selectors config.Selectors
	searchURL string
	startPage int
	endPage   int
	logger    *utils.Logger
	pool      *utils.WorkerPool
	retry     *utils.RetryConfig
	now       func() time.Time
}

// New creates a Scraper for the page range and limits in cfg.
func New(fetcher Fetcher, selectors config.Selectors, cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{
		fetcher:   fetcher,
		selectors: selectors,
		searchURL: strings.TrimSuffix(cfg.SearchURL, "/"),
		startPage: cfg.StartPage,
		endPage:   cfg.EndPage,
		logger:    logger,
		pool:      utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			MaxDelay:    30 * time.Second,
			Logger:      logger,
		},
		now: time.Now,
	}
}

// Summary fetches the first results page and reads the property and page counts.
func (s *Scraper) Summary(ctx context.Context) (SearchSummary, error) {
	var summary SearchSummary
	err := s.retry.Do(ctx, "fetch-summary", func(ctx context.Context) error {
		body, err := s.fetcher.Fetch(ctx, s.searchURL+"?market=residential")
		if err != nil {
			return err
		}
		summary, err = ParseSummary(body, s.selectors)
		return err
	})
	if err != nil {
		return SearchSummary{}, err
	}

	s.logger.Info("[propertyguru] %d properties across %d pages", summary.TotalProperties, summary.Pages)
	return summary, nil
}

// Scrape collects the cards of every page in the configured range. A page
// that keeps failing is logged and skipped; duplicate URLs across pages are
// dropped. Cards keep page order.
func (s *Scraper) Scrape(ctx context.Context) (*Result, error) {
	if s.endPage < s.startPage {
		return nil, fmt.Errorf("invalid page range %d-%d", s.startPage, s.endPage)
	}

	runID := uuid.NewString()
	scrapedAt := s.now().UTC()
	s.logger.Info("[propertyguru] Run %s: scraping pages %d-%d", runID, s.startPage, s.endPage)

	pages := make([][]Card, s.endPage-s.startPage+1)
	errs := make([]error, len(pages))
	var mu sync.Mutex
	done := 0

	for page := s.startPage; page <= s.endPage; page++ {
		page := page
		idx := page - s.startPage
		err := s.pool.Submit(ctx, func(ctx context.Context) {
			cards, err := s.scrapePage(ctx, page)
			pages[idx], errs[idx] = cards, err

			mu.Lock()
			done++
			s.logger.Debug("[propertyguru] Page %d finished (%d/%d)", page, done, len(pages))
			mu.Unlock()
		})
		if err != nil {
			for j := idx; j < len(errs); j++ {
				errs[j] = err
			}
			break
		}
	}
	s.pool.Wait()

	result := &Result{RunID: runID}
	visited := utils.NewURLSet()
	for i, cards := range pages {
		if errs[i] != nil {
			result.PagesFailed++
			s.logger.Error("[propertyguru] Page %d failed: %v", s.startPage+i, errs[i])
			continue
		}
		result.PagesOK++

		for _, c := range cards {
			if !visited.Add(c.Fragments.URL) {
				s.logger.Debug("[propertyguru] Skipping duplicate: %s", c.Fragments.URL)
				continue
			}
			c.Raw.RunID = runID
			c.Raw.ScrapedAt = scrapedAt
			result.Cards = append(result.Cards, c)
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	if result.PagesOK == 0 {
		return result, fmt.Errorf("all %d pages failed", len(pages))
	}

	s.logger.Info("[propertyguru] Scrape complete: %d cards from %d pages (%d failed)",
		len(result.Cards), result.PagesOK, result.PagesFailed)
	return result, nil
}

func (s *Scraper) scrapePage(ctx context.Context, page int) ([]Card, error) {
	pageURL := fmt.Sprintf("%s/%d", s.searchURL, page)

	var cards []Card
	err := s.retry.Do(ctx, fmt.Sprintf("scrape-page-%d", page), func(ctx context.Context) error {
		body, err := s.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			return err
		}
		cards, err = ParsePage(body, s.selectors, pageURL)
		return err
	})
	if err != nil {
		return nil, err
	}

	if len(cards) == 0 {
		s.logger.Warn("[propertyguru] Page %d returned 0 cards", page)
	} else {
		s.logger.Debug("[propertyguru] Page %d: %d cards", page, len(cards))
	}
	return cards, nil
}
