package gmaps

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SelectorTable pins every selector the scraper depends on to a named markup
// version, so Google Maps markup drift is a data change rather than a code
// change. Slice-valued entries are alternative strategies tried in order.
type SelectorTable struct {
	Version string `yaml:"version" json:"version"`

	SearchBox   string `yaml:"search_box" json:"-"`
	Feed        string `yaml:"feed" json:"-"`
	ListingLink string `yaml:"listing_link" json:"-"`

	DetailTitle    []string `yaml:"detail_title" json:"name"`
	Address        []string `yaml:"address" json:"address"`
	WebsiteText    []string `yaml:"website_text" json:"website_text"`
	WebsiteLink    []string `yaml:"website_link" json:"website_link"`
	Phone          []string `yaml:"phone" json:"phone"`
	ReviewsCount   []string `yaml:"reviews_count" json:"reviews_count"`
	ReviewsAverage []string `yaml:"reviews_average" json:"reviews_average"`
	PlaceType      []string `yaml:"place_type" json:"place_type"`
	Introduction   []string `yaml:"introduction" json:"introduction"`
	HoursPrimary   []string `yaml:"hours_primary" json:"hours_primary"`
	HoursFallback  []string `yaml:"hours_fallback" json:"hours_fallback"`
	HoursTable     []string `yaml:"hours_table" json:"hours_table"`
	TagChips       []string `yaml:"tag_chips" json:"tag_chips"`

	DetailPaneLinks string `yaml:"detail_pane_links" json:"pane_links"`
	MailtoLinks     string `yaml:"mailto_links" json:"mailto_links"`
	PlaceLink       string `yaml:"place_link" json:"place_link"`
}

// DefaultSelectors returns the built-in table for the current Maps markup.
func DefaultSelectors() *SelectorTable {
	return &SelectorTable{
		Version: "2025-05",

		SearchBox:   `input#searchboxinput`,
		Feed:        `div[role="feed"]`,
		ListingLink: `a[href*="/maps/place/"]`,

		DetailTitle:    []string{`div.TIHn2 h1.DUwDvf`, `h1.DUwDvf`},
		Address:        []string{`button[data-item-id="address"] div.fontBodyMedium`},
		WebsiteText:    []string{`a[data-item-id="authority"] div.fontBodyMedium`},
		WebsiteLink:    []string{`a[data-item-id="authority"]`},
		Phone:          []string{`button[data-item-id^="phone:tel:"] div.fontBodyMedium`},
		ReviewsCount:   []string{`div.TIHn2 div.fontBodyMedium.dmRWX span span span[aria-label]`, `div.TIHn2 span[aria-label]`},
		ReviewsAverage: []string{`div.TIHn2 div.fontBodyMedium.dmRWX span[aria-hidden]`},
		PlaceType:      []string{`div.LBgpqf button.DkEaL`},
		Introduction:   []string{`div.WeS02d.fontBodyMedium div.PYvSYb`},
		HoursPrimary:   []string{`button[data-item-id="oh"] div.fontBodyMedium`},
		HoursFallback:  []string{`div.MkV9 span.ZDu9vd span:nth-of-type(2)`},
		HoursTable:     []string{`table.OqCZI`, `div.t39EBf table`},
		TagChips:       []string{`button[jsaction*="categoryChip"] span`, `div.LBgpqf button.DkEaL`},

		DetailPaneLinks: `div[role="main"] a[href*="http"]`,
		MailtoLinks:     `a[href^="mailto:"]`,
		PlaceLink:       `a[href*="/maps/place/"]:not([href*="search"])`,
	}
}

// LoadSelectors reads a selector-table override from a YAML file.
func LoadSelectors(path string) (*SelectorTable, error) {
	if path == "" {
		return nil, fmt.Errorf("selectors file path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read selectors file: %w", err)
	}

	var table SelectorTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse selectors YAML: %w", err)
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}
	return &table, nil
}

// Validate checks the minimal set the walker and extractor cannot run without.
func (t *SelectorTable) Validate() error {
	if t.Version == "" {
		return fmt.Errorf("selectors: version is required")
	}
	if t.SearchBox == "" {
		return fmt.Errorf("selectors: search_box is required")
	}
	if t.ListingLink == "" {
		return fmt.Errorf("selectors: listing_link is required")
	}
	if t.Feed == "" {
		return fmt.Errorf("selectors: feed is required")
	}
	if len(t.DetailTitle) == 0 {
		return fmt.Errorf("selectors: detail_title is required")
	}
	if len(t.Address) == 0 {
		return fmt.Errorf("selectors: address is required")
	}
	return nil
}

// TitleSelector returns the detail-title strategies as one CSS group, usable
// in a single wait.
func (t *SelectorTable) TitleSelector() string {
	return strings.Join(t.DetailTitle, ", ")
}
