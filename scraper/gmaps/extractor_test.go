package gmaps

import (
	"context"
	"strings"
	"testing"

	"maps-scraper/models"
	"maps-scraper/utils"
)

func newTestExtractor() *Extractor {
	return NewExtractor(DefaultSelectors(), nil, utils.NewLogger(false))
}

func TestBuildPlaceSocialWebsiteSeparation(t *testing.T) {
	e := newTestExtractor()

	raw := &rawDetail{
		Name:        "Cafe Bleu",
		WebsiteHref: "https://www.facebook.com/cafebleu",
		PaneLinks: []string{
			"https://www.instagram.com/cafebleu",
			"https://www.facebook.com/cafebleu",
			"https://cafebleu.example.com",
		},
	}
	p := e.buildPlace(raw, "")

	if p.Website != models.NoWebsite {
		t.Errorf("expected website %q, got %q", models.NoWebsite, p.Website)
	}
	if !strings.Contains(p.SocialMediaURLs, "facebook.com/cafebleu") {
		t.Errorf("expected facebook link in social URLs, got %q", p.SocialMediaURLs)
	}
	if !strings.Contains(p.SocialMediaURLs, "instagram.com/cafebleu") {
		t.Errorf("expected instagram link in social URLs, got %q", p.SocialMediaURLs)
	}
	if strings.Count(p.SocialMediaURLs, "facebook.com") != 1 {
		t.Errorf("expected deduplicated social URLs, got %q", p.SocialMediaURLs)
	}
}

func TestBuildPlaceRealWebsiteKept(t *testing.T) {
	e := newTestExtractor()

	raw := &rawDetail{WebsiteHref: "https://cafebleu.example.com"}
	p := e.buildPlace(raw, "")

	if p.Website != "https://cafebleu.example.com" {
		t.Errorf("expected website kept, got %q", p.Website)
	}
	if p.SocialMediaURLs != models.NotAvailable {
		t.Errorf("expected no social URLs, got %q", p.SocialMediaURLs)
	}
}

func TestBuildPlaceReviewCount(t *testing.T) {
	e := newTestExtractor()

	cases := []struct {
		raw  string
		want string
	}{
		{"(1,234)", "1234"},
		{"(42)", "42"},
		{"1 234", "1234"},
		{"2 345", "2345"},
		{"N/A", models.NotAvailable},
		{"", models.NotAvailable},
	}
	for _, c := range cases {
		p := e.buildPlace(&rawDetail{ReviewsCount: c.raw}, "")
		if p.ReviewsCount != c.want {
			t.Errorf("reviews count %q: expected %q, got %q", c.raw, c.want, p.ReviewsCount)
		}
	}
}

func TestBuildPlaceReviewAverage(t *testing.T) {
	e := newTestExtractor()

	cases := []struct {
		raw  string
		want string
	}{
		{"4,7", "4.7"},
		{"4.5", "4.5"},
		{" 3,0 ", "3"},
		{"excellent", models.NotAvailable},
	}
	for _, c := range cases {
		p := e.buildPlace(&rawDetail{ReviewsAverage: c.raw}, "")
		if p.ReviewsAverage != c.want {
			t.Errorf("reviews average %q: expected %q, got %q", c.raw, c.want, p.ReviewsAverage)
		}
	}
}

func TestBuildPlaceWorkTime(t *testing.T) {
	e := newTestExtractor()

	cases := []struct {
		raw  string
		want string
	}{
		{"Open ⋅ Closes 9 PM", "Open, Closes 9 PM"},
		{"Closed ⋅ Opens 8 AM", "Opens 8 AM, Closed"},
		{"Open 24 hours", "Open 24 hours"},
		{"10:00 PM", "Closes 10:00 PM"},
		{"", models.NotAvailable},
	}
	for _, c := range cases {
		p := e.buildPlace(&rawDetail{HoursPrimary: c.raw}, "")
		if p.WorkTime != c.want {
			t.Errorf("work time %q: expected %q, got %q", c.raw, c.want, p.WorkTime)
		}
	}
}

func TestBuildPlaceWorkTimeFallback(t *testing.T) {
	e := newTestExtractor()

	p := e.buildPlace(&rawDetail{HoursFallback: "Open ⋅ Closes 6 PM"}, "")
	if p.WorkTime != "Open, Closes 6 PM" {
		t.Errorf("expected fallback hours used, got %q", p.WorkTime)
	}
}

func TestBuildPlaceCoordinates(t *testing.T) {
	e := newTestExtractor()

	url := "https://www.google.com/maps/place/Cafe+Bleu/@48.8566,2.3522,15z/data=..."
	p := e.buildPlace(&rawDetail{}, url)

	if p.Latitude != "48.8566" {
		t.Errorf("expected latitude 48.8566, got %q", p.Latitude)
	}
	if p.Longitude != "2.3522" {
		t.Errorf("expected longitude 2.3522, got %q", p.Longitude)
	}
}

func TestBuildPlaceCanonicalURL(t *testing.T) {
	e := newTestExtractor()

	p := e.buildPlace(&rawDetail{PlaceLink: "/maps/place/Cafe+Bleu"}, "https://www.google.com/maps/search/cafes")
	if p.MapsURL != "https://www.google.com/maps/place/Cafe+Bleu" {
		t.Errorf("expected relative link resolved, got %q", p.MapsURL)
	}

	p = e.buildPlace(&rawDetail{}, "https://www.google.com/maps/place/Cafe+Bleu/@48.8,2.3,15z")
	if p.MapsURL != "https://www.google.com/maps/place/Cafe+Bleu/@48.8,2.3,15z" {
		t.Errorf("expected page URL fallback, got %q", p.MapsURL)
	}
}

func TestBuildPlaceWeeklyHours(t *testing.T) {
	e := newTestExtractor()

	table := `<table><tbody>
		<tr><td>Monday</td><td>9 AM to 5 PM</td></tr>
		<tr><td>Tuesday</td><td>Closed</td></tr>
	</tbody></table>`
	p := e.buildPlace(&rawDetail{HoursTableHTML: table}, "")

	want := "Monday: 9 AM to 5 PM; Tuesday: Closed"
	if p.WeeklyHours != want {
		t.Errorf("expected %q, got %q", want, p.WeeklyHours)
	}
}

func TestBuildPlaceTagsDeduped(t *testing.T) {
	e := newTestExtractor()

	p := e.buildPlace(&rawDetail{Tags: []string{"Dine-in", "Takeout", "Dine-in", ""}}, "")
	if p.Tags != "Dine-in, Takeout" {
		t.Errorf("expected deduplicated tags, got %q", p.Tags)
	}
}

func TestBuildPlaceEmptyPayloadKeepsSentinels(t *testing.T) {
	e := newTestExtractor()

	p := e.buildPlace(&rawDetail{}, "")
	fields := map[string]string{
		"name":            p.Name,
		"maps_url":        p.MapsURL,
		"email":           p.Email,
		"website":         p.Website,
		"address":         p.Address,
		"phone_number":    p.PhoneNumber,
		"reviews_count":   p.ReviewsCount,
		"reviews_average": p.ReviewsAverage,
		"place_type":      p.PlaceType,
		"work_time":       p.WorkTime,
		"introduction":    p.Introduction,
		"social_media":    p.SocialMediaURLs,
		"latitude":        p.Latitude,
		"longitude":       p.Longitude,
		"weekly_hours":    p.WeeklyHours,
		"tags":            p.Tags,
	}
	for name, value := range fields {
		if value != models.NotAvailable {
			t.Errorf("field %s: expected sentinel, got %q", name, value)
		}
	}
}

func TestEnrichEmailPrefersMailto(t *testing.T) {
	e := newTestExtractor()

	p := models.NewPlace()
	raw := &rawDetail{
		MailtoLinks: []string{
			"mailto:hello@cafebleu.example.com?subject=Hi",
			"mailto:hello@cafebleu.example.com",
			"mailto:booking@cafebleu.example.com",
		},
	}
	e.enrichEmail(context.Background(), p, raw)

	want := "booking@cafebleu.example.com, hello@cafebleu.example.com"
	if p.Email != want {
		t.Errorf("expected %q, got %q", want, p.Email)
	}
}

type stubEmailFinder struct {
	result string
	ok     bool
	asked  string
}

func (s *stubEmailFinder) FindEmails(ctx context.Context, websiteURL string) (string, bool) {
	s.asked = websiteURL
	return s.result, s.ok
}

func TestEnrichEmailFallsBackToWebsite(t *testing.T) {
	finder := &stubEmailFinder{result: "info@cafebleu.example.com", ok: true}
	e := NewExtractor(DefaultSelectors(), finder, utils.NewLogger(false))

	p := models.NewPlace()
	e.enrichEmail(context.Background(), p, &rawDetail{WebsiteHref: "https://cafebleu.example.com"})

	if finder.asked != "https://cafebleu.example.com" {
		t.Errorf("expected website passed to finder, got %q", finder.asked)
	}
	if p.Email != "info@cafebleu.example.com" {
		t.Errorf("expected finder result used, got %q", p.Email)
	}
}

func TestEnrichEmailLookupFailureKeepsSentinel(t *testing.T) {
	finder := &stubEmailFinder{ok: false}
	e := NewExtractor(DefaultSelectors(), finder, utils.NewLogger(false))

	p := models.NewPlace()
	e.enrichEmail(context.Background(), p, &rawDetail{WebsiteHref: "https://cafebleu.example.com"})

	if p.Email != models.NotAvailable {
		t.Errorf("expected sentinel on lookup failure, got %q", p.Email)
	}
}
