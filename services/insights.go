package services

import (
	"fmt"
	"sort"
	"strings"

	"rental-estimator/models"
	"rental-estimator/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate summarises a processed batch. extractionFailures is the number of
// cards dropped before enrichment.
func (s *InsightService) Generate(records []models.EnrichedRecord, extractionFailures int) *models.BatchSummary {
	summary := &models.BatchSummary{
		ExtractionFailures: extractionFailures,
		ByPropertyType:     make(map[string]int),
		ByBedrooms:         make(map[string]int),
		FlagCounts:         make(map[string]int),
	}

	if len(records) == 0 {
		return summary
	}

	summary.TotalListings = len(records)

	var sizeTotal, sizeCount int
	var rentTotal float64
	var rentCount int

	for i := range records {
		r := &records[i]

		if r.Latitude != nil && r.Longitude != nil {
			summary.Geocoded++
		}
		if r.PropertyType != "" {
			summary.ByPropertyType[r.PropertyType]++
		}
		if r.Bedrooms != "" {
			summary.ByBedrooms[r.Bedrooms]++
		}
		if r.SizeSqft != nil {
			sizeTotal += *r.SizeSqft
			sizeCount++
		}

		countFlag(summary.FlagCounts, "high_floor", r.HighFloor)
		countFlag(summary.FlagCounts, "new", r.New)
		countFlag(summary.FlagCounts, "renovated", r.Renovated)
		countFlag(summary.FlagCounts, "view", r.View)
		countFlag(summary.FlagCounts, "penthouse", r.Penthouse)

		rent := ParseMonthlyRent(r.Price)
		if rent <= 0 {
			continue
		}
		if rentCount == 0 || rent < summary.MinMonthlyRent {
			summary.MinMonthlyRent = rent
		}
		if rentCount == 0 || rent > summary.MaxMonthlyRent {
			summary.MaxMonthlyRent = rent
			listing := r.ListingRecord
			summary.MostExpensive = &listing
		}
		rentTotal += rent
		rentCount++
	}

	if sizeCount > 0 {
		summary.AverageSizeSqft = round2(float64(sizeTotal) / float64(sizeCount))
	}
	if rentCount > 0 {
		summary.AverageMonthlyRent = round2(rentTotal / float64(rentCount))
		summary.MinMonthlyRent = round2(summary.MinMonthlyRent)
		summary.MaxMonthlyRent = round2(summary.MaxMonthlyRent)
	}

	s.logger.Debug("[insights] Summarised %d records", summary.TotalListings)
	return summary
}

func countFlag(counts map[string]int, name string, set bool) {
	if set {
		counts[name]++
	}
}

func (s *InsightService) Print(r *models.BatchSummary) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 RENTAL LISTING INSIGHTS\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Listings processed   : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Printf("  Extraction failures  : \033[1m%d\033[0m\n", r.ExtractionFailures)
	if r.TotalListings > 0 {
		fmt.Printf("  Geocoded             : \033[1m%d\033[0m (%.0f%%)\n",
			r.Geocoded, 100*float64(r.Geocoded)/float64(r.TotalListings))
	}
	if r.AverageSizeSqft > 0 {
		fmt.Printf("  Average size         : \033[1m%.0f sqft\033[0m\n", r.AverageSizeSqft)
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Rent Statistics (per month)\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if r.AverageMonthlyRent > 0 {
		fmt.Printf("  Average rent : \033[1;32mS$%.2f\033[0m\n", r.AverageMonthlyRent)
		fmt.Printf("  Minimum rent : \033[1;32mS$%.2f\033[0m\n", r.MinMonthlyRent)
		fmt.Printf("  Maximum rent : \033[1;32mS$%.2f\033[0m\n", r.MaxMonthlyRent)
	} else {
		fmt.Printf("  No price data available\n")
	}
	fmt.Println()

	if r.MostExpensive != nil {
		fmt.Printf("\033[1;33m  Most Expensive Listing\033[0m\n")
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  %s\n", truncate(r.MostExpensive.Name, 50))
		fmt.Printf("  Address : %s\n", r.MostExpensive.Address)
		fmt.Printf("  Price   : \033[1;31m%s\033[0m\n", r.MostExpensive.Price)
		fmt.Println()
	}

	printCounts("Listings by Property Type", thin, r.ByPropertyType)
	printCounts("Listings by Bedrooms", thin, r.ByBedrooms)
	printCounts("Description Flags", thin, r.FlagCounts)

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func printCounts(title, thin string, counts map[string]int) {
	fmt.Printf("\033[1;33m  %s\033[0m\n", title)
	fmt.Printf("  %s\n", thin)
	if len(counts) == 0 {
		fmt.Printf("  No data\n\n")
		return
	}

	type keyCount struct {
		key   string
		count int
	}
	var rows []keyCount
	for k, c := range counts {
		rows = append(rows, keyCount{k, c})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].key < rows[j].key
	})
	for _, row := range rows {
		bar := strings.Repeat("█", min(row.count, 40))
		fmt.Printf("  %-28s %s (%d)\n", truncate(row.key, 26), bar, row.count)
	}
	fmt.Println()
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
