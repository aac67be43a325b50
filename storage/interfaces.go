package storage

import (
	"sort"

	"maps-scraper/models"
)

// PlaceWriter is the interface any export backend must satisfy.
type PlaceWriter interface {
	Write(results models.ResultSet) error
	Close() error
}

// columns is the shared export column order.
var columns = []string{
	"name", "maps_url", "email", "website", "address", "phone_number",
	"reviews_count", "reviews_average", "place_type", "work_time",
	"introduction", "social_media_urls", "category", "latitude",
	"longitude", "weekly_hours", "tags", "location",
}

// placeRow renders one place in export column order, with the location the
// place was collected under appended last.
func placeRow(p *models.Place, location string) []string {
	return []string{
		p.Name, p.MapsURL, p.Email, p.Website, p.Address, p.PhoneNumber,
		p.ReviewsCount, p.ReviewsAverage, p.PlaceType, p.WorkTime,
		p.Introduction, p.SocialMediaURLs, p.Category, p.Latitude,
		p.Longitude, p.WeeklyHours, p.Tags, location,
	}
}

// sortedLocations returns the result-set keys in stable order, so exports
// are deterministic.
func sortedLocations(results models.ResultSet) []string {
	keys := make([]string, 0, len(results))
	for k := range results {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
