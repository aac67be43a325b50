package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"maps-scraper/models"
	"maps-scraper/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(results models.ResultSet) *models.InsightReport {
	report := &models.InsightReport{
		PlacesByLocation: make(map[string]int),
		PlacesByCategory: make(map[string]int),
	}

	places := results.Flatten()
	if len(places) == 0 {
		return report
	}

	report.TotalPlaces = len(places)

	var ratedPlaces []*models.Place
	var ratingTotal float64

	for location, group := range results {
		report.PlacesByLocation[location] = len(group)
	}

	for _, p := range places {
		if p.Website != models.NotAvailable && p.Website != models.NoWebsite {
			report.WithWebsite++
		}
		if p.Email != models.NotAvailable {
			report.WithEmail++
		}
		if p.Category != models.NotAvailable && p.Category != "" {
			report.PlacesByCategory[p.Category]++
		}
		if rating, ok := parseRating(p.ReviewsAverage); ok {
			ratingTotal += rating
			ratedPlaces = append(ratedPlaces, p)
		}
	}

	if len(ratedPlaces) > 0 {
		report.AverageReviews = round2(ratingTotal / float64(len(ratedPlaces)))
	}

	// Top 5 by rating
	sort.Slice(ratedPlaces, func(i, j int) bool {
		ri, _ := parseRating(ratedPlaces[i].ReviewsAverage)
		rj, _ := parseRating(ratedPlaces[j].ReviewsAverage)
		return ri > rj
	})
	if len(ratedPlaces) > 5 {
		report.TopReviewed = ratedPlaces[:5]
	} else {
		report.TopReviewed = ratedPlaces
	}

	return report
}

func (s *InsightService) Print(r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 MAPS SCRAPE INSIGHTS\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Total places scraped : \033[1m%d\033[0m\n", r.TotalPlaces)
	fmt.Printf("  With website         : \033[1m%d\033[0m\n", r.WithWebsite)
	fmt.Printf("  With email           : \033[1m%d\033[0m\n", r.WithEmail)
	if r.AverageReviews > 0 {
		fmt.Printf("  Average rating       : \033[1;32m%.2f ★\033[0m\n", r.AverageReviews)
	}
	fmt.Println()

	// Top 5 by rating
	fmt.Printf("\033[1;33m  Top 5 Highest Rated Places\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.TopReviewed) == 0 {
		fmt.Printf("  No rated places found\n")
	} else {
		for i, p := range r.TopReviewed {
			name := truncate(p.Name, 38)
			fmt.Printf("  \033[1m%d.\033[0m %-40s \033[1;32m%s ★\033[0m (%s reviews)\n",
				i+1, name, p.ReviewsAverage, p.ReviewsCount)
		}
	}
	fmt.Println()

	printCountSection("Places by Location", r.PlacesByLocation, thin)
	printCountSection("Places by Category", r.PlacesByCategory, thin)

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func printCountSection(title string, counts map[string]int, thin string) {
	fmt.Printf("\033[1;33m  %s\033[0m\n", title)
	fmt.Printf("  %s\n", thin)
	if len(counts) == 0 {
		fmt.Printf("  No data\n")
		fmt.Println()
		return
	}

	type keyCount struct {
		key   string
		count int
	}
	var sorted []keyCount
	for k, c := range counts {
		if k != "" {
			sorted = append(sorted, keyCount{k, c})
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].key < sorted[j].key
	})
	for _, kc := range sorted {
		bar := strings.Repeat("█", kc.count)
		fmt.Printf("  %-30s %s (%d)\n", truncate(kc.key, 28), bar, kc.count)
	}
	fmt.Println()
}

func parseRating(raw string) (float64, bool) {
	if raw == models.NotAvailable || raw == "" {
		return 0, false
	}
	rating, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return rating, true
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
