package gmaps

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultSelectorsValid(t *testing.T) {
	if err := DefaultSelectors().Validate(); err != nil {
		t.Fatalf("default selector table invalid: %v", err)
	}
}

func TestLoadSelectorsFromYAML(t *testing.T) {
	content := `version: "2026-01"
search_box: "input#searchboxinput"
feed: "div[role='feed']"
listing_link: "a[href*='/maps/place/']"
detail_title:
  - "h1.NewTitle"
  - "h1.DUwDvf"
address:
  - "button[data-item-id='address'] div.fontBodyMedium"
`
	path := filepath.Join(t.TempDir(), "selectors.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadSelectors(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Version != "2026-01" {
		t.Errorf("expected version 2026-01, got %q", table.Version)
	}
	if len(table.DetailTitle) != 2 || table.DetailTitle[0] != "h1.NewTitle" {
		t.Errorf("unexpected title selectors: %v", table.DetailTitle)
	}
	if !strings.Contains(table.TitleSelector(), "h1.NewTitle, h1.DUwDvf") {
		t.Errorf("unexpected combined title selector: %q", table.TitleSelector())
	}
}

func TestLoadSelectorsRejectsIncompleteTable(t *testing.T) {
	content := `version: "2026-01"
feed: "div[role='feed']"
`
	path := filepath.Join(t.TempDir(), "selectors.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadSelectors(path); err == nil {
		t.Fatal("expected validation error for incomplete table")
	}
}

func TestLoadSelectorsMissingFile(t *testing.T) {
	if _, err := LoadSelectors(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
