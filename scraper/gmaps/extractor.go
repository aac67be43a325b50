package gmaps

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"maps-scraper/models"
	"maps-scraper/utils"
)

// socialMediaDomains decides which URLs belong in the social-media field
// rather than the website field.
var socialMediaDomains = []string{
	"facebook.com", "instagram.com", "linkedin.com", "twitter.com", "x.com", "youtube.com",
}

// coordsRegex matches the "@lat,lng," fragment Maps embeds in place URLs.
var coordsRegex = regexp.MustCompile(`@([\d.\-]+),([\d.\-]+),`)

// EmailFinder looks up contact emails on a business website. Implementations
// must be bounded-timeout and never propagate fetch failures.
type EmailFinder interface {
	FindEmails(ctx context.Context, websiteURL string) (string, bool)
}

// Extractor pulls one Place out of a loaded detail view. Extraction is
// best-effort per field: a missing or unparsable element yields the
// sentinel, never an error to the caller.
type Extractor struct {
	selectors *SelectorTable
	emails    EmailFinder
	logger    *utils.Logger
}

// NewExtractor creates an Extractor. emails may be nil to skip the
// website-email lookup.
func NewExtractor(selectors *SelectorTable, emails EmailFinder, logger *utils.Logger) *Extractor {
	return &Extractor{selectors: selectors, emails: emails, logger: logger}
}

// rawDetail is the payload the in-page script returns: first-match text and
// hrefs for every selector strategy, plus the link inventory of the pane.
type rawDetail struct {
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	WebsiteText    string   `json:"website_text"`
	WebsiteHref    string   `json:"website_href"`
	Phone          string   `json:"phone"`
	ReviewsCount   string   `json:"reviews_count"`
	ReviewsAverage string   `json:"reviews_average"`
	PlaceType      string   `json:"place_type"`
	Introduction   string   `json:"introduction"`
	HoursPrimary   string   `json:"hours_primary"`
	HoursFallback  string   `json:"hours_fallback"`
	HoursTableHTML string   `json:"hours_table_html"`
	Tags           []string `json:"tags"`
	PaneLinks      []string `json:"pane_links"`
	MailtoLinks    []string `json:"mailto_links"`
	PlaceLink      string   `json:"place_link"`
}

// Extract reads the currently open detail view and returns one Place.
// It fails only when the page itself cannot be evaluated (listing tier);
// individual field failures degrade to sentinels.
func (e *Extractor) Extract(ctx context.Context, s Session) (*models.Place, error) {
	var payload string
	if err := s.Evaluate(ctx, buildDetailScript(e.selectors), &payload); err != nil {
		return nil, fmt.Errorf("evaluate detail view: %w", err)
	}

	var raw rawDetail
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("decode detail payload: %w", err)
	}

	pageURL, err := s.Location(ctx)
	if err != nil {
		e.logger.Debug("[extract] could not read page URL: %v", err)
		pageURL = ""
	}

	place := e.buildPlace(&raw, pageURL)
	e.enrichEmail(ctx, place, &raw)
	return place, nil
}

// buildPlace applies the field rules to a raw payload. Pure; no I/O.
func (e *Extractor) buildPlace(raw *rawDetail, pageURL string) *models.Place {
	p := models.NewPlace()

	if v := strings.TrimSpace(raw.Name); v != "" {
		p.Name = v
	}

	// Canonical URL: same-document place link when absolute, else page URL.
	switch {
	case strings.HasPrefix(raw.PlaceLink, "http"):
		p.MapsURL = raw.PlaceLink
	case raw.PlaceLink != "":
		p.MapsURL = "https://www.google.com" + raw.PlaceLink
	case pageURL != "":
		p.MapsURL = pageURL
	}

	if v := strings.TrimSpace(raw.Address); v != "" {
		p.Address = v
	}
	if v := strings.TrimSpace(raw.Phone); v != "" {
		p.PhoneNumber = v
	}
	if v := strings.TrimSpace(raw.PlaceType); v != "" {
		p.PlaceType = v
	}
	if v := strings.TrimSpace(raw.Introduction); v != "" {
		p.Introduction = v
	}

	e.splitWebsiteAndSocial(p, raw)
	e.parseReviews(p, raw)

	if wt := parseWorkTime(raw.HoursPrimary); wt != "" {
		p.WorkTime = wt
	} else if wt := parseWorkTime(raw.HoursFallback); wt != "" {
		p.WorkTime = wt
	}

	if lat, lng, ok := coordsFromURL(pageURL); ok {
		p.Latitude = lat
		p.Longitude = lng
	}

	if hours := parseWeeklyHours(raw.HoursTableHTML); hours != "" {
		p.WeeklyHours = hours
	}

	if tags := dedupeInOrder(raw.Tags); len(tags) > 0 {
		p.Tags = strings.Join(tags, ", ")
	}

	return p
}

// splitWebsiteAndSocial assigns the website field, moving social-media URLs
// into the social set, and aggregates social links across the whole pane.
func (e *Extractor) splitWebsiteAndSocial(p *models.Place, raw *rawDetail) {
	website := strings.TrimSpace(raw.WebsiteHref)
	if website == "" {
		website = strings.TrimSpace(raw.WebsiteText)
	}

	socialSeen := make(map[string]struct{})
	var social []string
	add := func(link string) {
		if _, dup := socialSeen[link]; dup {
			return
		}
		socialSeen[link] = struct{}{}
		social = append(social, link)
	}

	if website != "" {
		if isSocialURL(website) {
			// Found a URL, but it belongs in the social set.
			add(website)
			p.Website = models.NoWebsite
		} else {
			p.Website = website
		}
	}

	for _, link := range raw.PaneLinks {
		link = strings.TrimSpace(link)
		if link != "" && isSocialURL(link) {
			add(link)
		}
	}

	if len(social) > 0 {
		sort.Strings(social)
		p.SocialMediaURLs = strings.Join(social, ", ")
	}
}

func (e *Extractor) parseReviews(p *models.Place, raw *rawDetail) {
	if v := strings.TrimSpace(raw.ReviewsCount); v != "" {
		n, cleaned, err := parseReviewCount(v)
		if err != nil {
			e.logger.Warn("[extract] Failed to parse reviews count: %v | Raw: %q | Cleaned: %q", err, v, cleaned)
		} else {
			p.ReviewsCount = strconv.Itoa(n)
		}
	}
	if v := strings.TrimSpace(raw.ReviewsAverage); v != "" {
		avg, cleaned, err := parseReviewAverage(v)
		if err != nil {
			e.logger.Warn("[extract] Failed to parse reviews average: %v | Raw: %q | Cleaned: %q", err, v, cleaned)
		} else {
			p.ReviewsAverage = strconv.FormatFloat(avg, 'f', -1, 64)
		}
	}
}

// enrichEmail prefers mailto links from the pane; otherwise it asks the
// EmailFinder to scan the listed website. Lookup failure keeps the sentinel.
func (e *Extractor) enrichEmail(ctx context.Context, p *models.Place, raw *rawDetail) {
	seen := make(map[string]struct{})
	var emails []string
	for _, href := range raw.MailtoLinks {
		addr := strings.TrimPrefix(strings.TrimSpace(href), "mailto:")
		if idx := strings.Index(addr, "?"); idx != -1 {
			addr = addr[:idx]
		}
		if addr == "" {
			continue
		}
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}
		emails = append(emails, addr)
	}
	if len(emails) > 0 {
		sort.Strings(emails)
		p.Email = strings.Join(emails, ", ")
		return
	}

	if e.emails == nil {
		return
	}
	website := strings.TrimSpace(raw.WebsiteHref)
	if website == "" {
		website = strings.TrimSpace(raw.WebsiteText)
	}
	if website == "" {
		return
	}
	if found, ok := e.emails.FindEmails(ctx, website); ok {
		p.Email = found
	}
}

// parseReviewCount strips locale separators and decorations before parsing.
func parseReviewCount(raw string) (int, string, error) {
	cleaned := strings.NewReplacer(
		"\u00a0", "", "\u202f", "", "(", "", ")", "", ",", "", " ", "",
	).Replace(raw)
	n, err := strconv.Atoi(cleaned)
	return n, cleaned, err
}

// parseReviewAverage tolerates decimal-comma locales.
func parseReviewAverage(raw string) (float64, string, error) {
	cleaned := strings.ReplaceAll(strings.ReplaceAll(raw, " ", ""), ",", ".")
	avg, err := strconv.ParseFloat(cleaned, 64)
	return avg, cleaned, err
}

// parseWorkTime splits a compound "Open ⋅ Closes 9 PM" string into open and
// close fragments. A bare time fragment is treated as a closing time. When no
// fragment is recognized the raw string, minus layout artifacts, is returned.
func parseWorkTime(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	var openTime, closeTime string
	for _, part := range strings.Split(raw, "⋅") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lower := strings.ToLower(part)
		switch {
		case strings.HasPrefix(lower, "open"):
			openTime = part
		case strings.HasPrefix(lower, "close"):
			closeTime = part
		case strings.Contains(part, ":") && closeTime == "":
			closeTime = "Closes " + part
		}
	}

	switch {
	case openTime != "" && closeTime != "":
		return openTime + ", " + closeTime
	case openTime != "":
		return openTime
	case closeTime != "":
		return closeTime
	default:
		return strings.ReplaceAll(raw, "\u202f", "")
	}
}

// parseWeeklyHours flattens the hours table HTML into "Day: times; ..." text.
func parseWeeklyHours(tableHTML string) string {
	if strings.TrimSpace(tableHTML) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(tableHTML))
	if err != nil {
		return ""
	}

	var hours []string
	doc.Find("tr").Each(func(i int, row *goquery.Selection) {
		cols := row.Find("td")
		if cols.Length() < 2 {
			return
		}
		day := strings.TrimSpace(cols.Eq(0).Text())
		times := strings.TrimSpace(cols.Eq(1).Text())
		if day != "" && times != "" {
			hours = append(hours, day+": "+times)
		}
	})
	return strings.Join(hours, "; ")
}

func coordsFromURL(pageURL string) (string, string, bool) {
	m := coordsRegex.FindStringSubmatch(pageURL)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

func isSocialURL(link string) bool {
	lower := strings.ToLower(link)
	for _, domain := range socialMediaDomains {
		if strings.Contains(lower, domain) {
			return true
		}
	}
	return false
}

func dedupeInOrder(items []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// buildDetailScript renders the in-page extraction script for the given
// selector table. The table is injected as JSON so markup drift stays a data
// change.
func buildDetailScript(t *SelectorTable) string {
	selectors, _ := json.Marshal(t)
	return fmt.Sprintf(`(function () {
	var S = %s;
	var pickText = function (sels) {
		if (!sels) { return ''; }
		for (var i = 0; i < sels.length; i++) {
			var node = document.querySelector(sels[i]);
			if (node && node.innerText && node.innerText.trim()) {
				return node.innerText.trim();
			}
		}
		return '';
	};
	var pickHref = function (sels) {
		if (!sels) { return ''; }
		for (var i = 0; i < sels.length; i++) {
			var node = document.querySelector(sels[i]);
			if (node && node.href) { return node.href; }
		}
		return '';
	};
	var pickHTML = function (sels) {
		if (!sels) { return ''; }
		for (var i = 0; i < sels.length; i++) {
			var node = document.querySelector(sels[i]);
			if (node) { return node.outerHTML; }
		}
		return '';
	};
	var collectText = function (sels) {
		var out = [];
		if (!sels) { return out; }
		for (var i = 0; i < sels.length; i++) {
			var nodes = document.querySelectorAll(sels[i]);
			for (var j = 0; j < nodes.length; j++) {
				var text = nodes[j].innerText ? nodes[j].innerText.trim() : '';
				if (text) { out.push(text); }
			}
		}
		return out;
	};
	var collectHrefs = function (sel) {
		var out = [];
		if (!sel) { return out; }
		var nodes = document.querySelectorAll(sel);
		for (var i = 0; i < nodes.length; i++) {
			var href = nodes[i].getAttribute('href') || nodes[i].href || '';
			if (href) { out.push(href); }
		}
		return out;
	};
	var placeNode = S.place_link ? document.querySelector(S.place_link) : null;
	return JSON.stringify({
		name: pickText(S.name),
		address: pickText(S.address),
		website_text: pickText(S.website_text),
		website_href: pickHref(S.website_link),
		phone: pickText(S.phone),
		reviews_count: pickText(S.reviews_count),
		reviews_average: pickText(S.reviews_average),
		place_type: pickText(S.place_type),
		introduction: pickText(S.introduction),
		hours_primary: pickText(S.hours_primary),
		hours_fallback: pickText(S.hours_fallback),
		hours_table_html: pickHTML(S.hours_table),
		tags: collectText(S.tag_chips),
		pane_links: collectHrefs(S.pane_links),
		mailto_links: collectHrefs(S.mailto_links),
		place_link: placeNode ? (placeNode.getAttribute('href') || placeNode.href || '') : ''
	});
})()`, selectors)
}
