package services

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"rental-estimator/models"
	"rental-estimator/utils"
)

var (
	// priceRegexp captures numeric price values
	priceRegexp = regexp.MustCompile(`[\d,]+(?:\.\d+)?`)
	// weeklyRegexp marks prices quoted per week instead of per month
	weeklyRegexp = regexp.MustCompile(`/\s*(wk|week)\b`)
)

// weeksPerMonth converts weekly asking rents to monthly.
const weeksPerMonth = 52.0 / 12.0

// Cleaner normalises the text of raw scraped listings and drops duplicates
// before they are appended to the raw CSV.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean collapses whitespace in every column and drops cards without a name
// or repeated URLs.
func (c *Cleaner) Clean(raw []*models.RawListing) []*models.RawListing {
	seen := make(map[string]struct{})
	result := make([]*models.RawListing, 0, len(raw))

	for _, r := range raw {
		name := normaliseText(r.Name)
		if name == "" {
			c.logger.Warn("[cleaner] Dropping card without a name: %s", r.URL)
			continue
		}

		if url := strings.TrimSpace(r.URL); url != "" {
			if _, dup := seen[url]; dup {
				c.logger.Debug("[cleaner] Duplicate URL skipped: %s", url)
				continue
			}
			seen[url] = struct{}{}
		}

		cleaned := *r
		cleaned.Name = name
		cleaned.Address = normaliseText(r.Address)
		cleaned.Price = normaliseText(r.Price)
		cleaned.Size = normaliseText(r.Size)
		cleaned.Bedrooms = normaliseText(r.Bedrooms)
		cleaned.Bathrooms = normaliseText(r.Bathrooms)
		cleaned.PropertyTypeFurnishingYear = normaliseText(r.PropertyTypeFurnishingYear)
		cleaned.MRTDistance = normaliseText(r.MRTDistance)
		cleaned.AgentDescription = normaliseText(r.AgentDescription)
		cleaned.URL = strings.TrimSpace(r.URL)

		result = append(result, &cleaned)
	}

	c.logger.Info("[cleaner] Cleaned %d → %d listings (dropped %d)",
		len(raw), len(result), len(raw)-len(result))
	return result
}

// ParseMonthlyRent extracts the asking rent and converts weekly quotes to a
// monthly figure. Examples:
//
//	"S$ 2,500 /mo" → 2500
//	"S$ 600 /wk"   → 2600
func ParseMonthlyRent(raw string) float64 {
	raw = strings.ToLower(raw)

	cleaned := strings.ReplaceAll(raw, ",", "")
	match := priceRegexp.FindString(cleaned)
	if match == "" {
		return 0
	}

	price, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}

	if weeklyRegexp.MatchString(raw) {
		return round2(price * weeksPerMonth)
	}
	return price
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
