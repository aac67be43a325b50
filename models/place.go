package models

import "strings"

// Sentinel values for fields that were looked up but yielded nothing.
// NoWebsite is distinct from NotAvailable: a URL was found, but it belongs
// in SocialMediaURLs rather than Website.
const (
	NotAvailable = "No info available"
	NoWebsite    = "No website"
)

// Place is one scraped business entity. Every field is either an extracted
// value or a sentinel, never an empty string standing in for absence.
// ReviewsCount and ReviewsAverage hold canonical numeric text ("1234", "4.7")
// or NotAvailable; parsing lives in the extractor.
type Place struct {
	Name            string `json:"name"`
	MapsURL         string `json:"maps_url"`
	Email           string `json:"email"`
	Website         string `json:"website"`
	Address         string `json:"address"`
	PhoneNumber     string `json:"phone_number"`
	ReviewsCount    string `json:"reviews_count"`
	ReviewsAverage  string `json:"reviews_average"`
	PlaceType       string `json:"place_type"`
	WorkTime        string `json:"work_time"`
	Introduction    string `json:"introduction"`
	SocialMediaURLs string `json:"social_media_urls"`
	Category        string `json:"category"`
	Latitude        string `json:"latitude"`
	Longitude       string `json:"longitude"`
	WeeklyHours     string `json:"weekly_hours"`
	Tags            string `json:"tags"`
}

// NewPlace returns a Place with every extracted field preset to NotAvailable.
// Category is assigned by the owning job after extraction, not here.
func NewPlace() *Place {
	return &Place{
		Name:            NotAvailable,
		MapsURL:         NotAvailable,
		Email:           NotAvailable,
		Website:         NotAvailable,
		Address:         NotAvailable,
		PhoneNumber:     NotAvailable,
		ReviewsCount:    NotAvailable,
		ReviewsAverage:  NotAvailable,
		PlaceType:       NotAvailable,
		WorkTime:        NotAvailable,
		Introduction:    NotAvailable,
		SocialMediaURLs: NotAvailable,
		Latitude:        NotAvailable,
		Longitude:       NotAvailable,
		WeeklyHours:     NotAvailable,
		Tags:            NotAvailable,
	}
}

// Key identifies a place for deduplication: trimmed name plus trimmed
// address. A place without a usable name has no key.
func (p *Place) Key() string {
	name := strings.TrimSpace(p.Name)
	if name == "" || name == NotAvailable {
		return ""
	}
	return name + "\x1f" + strings.TrimSpace(p.Address)
}

// ResultSet maps a location key to the places collected for it, in
// extraction order, across every category searched there.
type ResultSet map[string][]*Place

// Merge appends places under the given location key.
func (rs ResultSet) Merge(location string, places []*Place) {
	rs[location] = append(rs[location], places...)
}

// Total returns the number of places across all locations.
func (rs ResultSet) Total() int {
	n := 0
	for _, places := range rs {
		n += len(places)
	}
	return n
}

// Flatten returns all places as a single slice, location by location.
func (rs ResultSet) Flatten() []*Place {
	out := make([]*Place, 0, rs.Total())
	for _, places := range rs {
		out = append(out, places...)
	}
	return out
}
