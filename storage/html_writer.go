package storage

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"maps-scraper/models"
)

// HTMLWriter exports the result set as a single static page, one bordered
// table per location. All cell content is escaped.
type HTMLWriter struct {
	path string
}

func NewHTMLWriter(path string) (*HTMLWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("html: create output dir: %w", err)
	}
	return &HTMLWriter{path: path}, nil
}

func (h *HTMLWriter) Write(results models.ResultSet) error {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Maps Scrape Results</title>
<style>
table { border-collapse: collapse; margin-bottom: 2em; }
th, td { border: 1px solid #999; padding: 4px 8px; text-align: left; vertical-align: top; }
th { background: #ffd966; }
</style>
</head>
<body>
`)

	for _, location := range sortedLocations(results) {
		fmt.Fprintf(&b, "<h2>%s</h2>\n<table>\n<tr>", html.EscapeString(location))
		for _, col := range columns {
			fmt.Fprintf(&b, "<th>%s</th>", html.EscapeString(col))
		}
		b.WriteString("</tr>\n")

		for _, p := range results[location] {
			b.WriteString("<tr>")
			for _, cell := range placeRow(p, location) {
				fmt.Fprintf(&b, "<td>%s</td>", html.EscapeString(cell))
			}
			b.WriteString("</tr>\n")
		}
		b.WriteString("</table>\n")
	}

	b.WriteString("</body>\n</html>\n")

	if err := os.WriteFile(h.path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("html: write file %q: %w", h.path, err)
	}
	return nil
}

func (h *HTMLWriter) Close() error { return nil }
