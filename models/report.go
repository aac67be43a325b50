package models

// InsightReport holds the computed analytics across the final merged set.
type InsightReport struct {
	TotalPlaces      int
	WithWebsite      int
	WithEmail        int
	AverageReviews   float64
	TopReviewed      []*Place
	PlacesByLocation map[string]int
	PlacesByCategory map[string]int
}
