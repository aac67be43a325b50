package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"maps-scraper/models"
)

// ExcelWriter exports one styled worksheet per location.
type ExcelWriter struct {
	path string
}

func NewExcelWriter(path string) (*ExcelWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("excel: create output dir: %w", err)
	}
	return &ExcelWriter{path: path}, nil
}

func (e *ExcelWriter) Write(results models.ResultSet) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 13},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFD966"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("excel: header style: %w", err)
	}

	bodyStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 12},
		Alignment: &excelize.Alignment{
			Vertical: "top",
			WrapText: true,
			Indent:   1,
		},
	})
	if err != nil {
		return fmt.Errorf("excel: body style: %w", err)
	}

	for _, location := range sortedLocations(results) {
		sheet := sheetName(location)
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("excel: create sheet %q: %w", sheet, err)
		}
		if err := e.writeSheet(f, sheet, location, results[location], headerStyle, bodyStyle); err != nil {
			return err
		}
	}

	// Drop the workbook's default sheet once real sheets exist.
	if len(results) > 0 {
		_ = f.DeleteSheet("Sheet1")
	}

	if err := f.SaveAs(e.path); err != nil {
		return fmt.Errorf("excel: save %q: %w", e.path, err)
	}
	return nil
}

func (e *ExcelWriter) writeSheet(f *excelize.File, sheet, location string, places []*models.Place, headerStyle, bodyStyle int) error {
	widths := make([]int, len(columns))

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return fmt.Errorf("excel: write header: %w", err)
		}
		widths[i] = len(col)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(columns), 1)
	_ = f.SetCellStyle(sheet, "A1", lastHeader, headerStyle)

	for rowIdx, p := range places {
		row := rowIdx + 2
		values := placeRow(p, location)
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, row)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("excel: write cell %s: %w", cell, err)
			}
			if link, ok := hyperlinkFor(columns[colIdx], value); ok {
				_ = f.SetCellHyperLink(sheet, cell, link, "External")
			}
			if len(value) > widths[colIdx] {
				widths[colIdx] = len(value)
			}
		}
		first, _ := excelize.CoordinatesToCellName(1, row)
		last, _ := excelize.CoordinatesToCellName(len(values), row)
		_ = f.SetCellStyle(sheet, first, last, bodyStyle)
	}

	for i, width := range widths {
		if width < 15 {
			width = 15
		}
		if width > 50 {
			width = 50
		}
		name, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheet, name, name, float64(width))
	}
	return nil
}

// Close is a no-op: the workbook is created and saved inside Write.
func (e *ExcelWriter) Close() error { return nil }

// hyperlinkFor makes URL-bearing cells clickable. Sentinel values stay plain
// text. A multi-URL social cell links its first URL.
func hyperlinkFor(column, value string) (string, bool) {
	switch column {
	case "maps_url", "website", "social_media_urls":
	default:
		return "", false
	}
	if value == models.NotAvailable || value == models.NoWebsite {
		return "", false
	}
	link := value
	if idx := strings.Index(link, ","); idx != -1 {
		link = strings.TrimSpace(link[:idx])
	}
	if !strings.HasPrefix(link, "http") {
		return "", false
	}
	return link, true
}

// sheetName makes a location safe as a worksheet title.
func sheetName(location string) string {
	name := strings.NewReplacer(
		"[", "", "]", "", ":", "", "*", "", "?", "", "/", "-", "\\", "-",
	).Replace(location)
	if name == "" {
		name = "Results"
	}
	if runes := []rune(name); len(runes) > 31 {
		name = string(runes[:31])
	}
	return name
}
