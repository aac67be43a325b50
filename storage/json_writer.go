package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"maps-scraper/models"
)

// JSONWriter exports the result set as one flat, indented JSON array. Each
// entry carries the location it was collected under.
type JSONWriter struct {
	path string
}

func NewJSONWriter(path string) (*JSONWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("json: create output dir: %w", err)
	}
	return &JSONWriter{path: path}, nil
}

type jsonPlace struct {
	*models.Place
	Location string `json:"location"`
}

func (j *JSONWriter) Write(results models.ResultSet) error {
	var records []jsonPlace
	for _, location := range sortedLocations(results) {
		for _, p := range results[location] {
			records = append(records, jsonPlace{Place: p, Location: location})
		}
	}
	if records == nil {
		records = []jsonPlace{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("json: marshal: %w", err)
	}
	if err := os.WriteFile(j.path, data, 0644); err != nil {
		return fmt.Errorf("json: write file %q: %w", j.path, err)
	}
	return nil
}

func (j *JSONWriter) Close() error { return nil }
