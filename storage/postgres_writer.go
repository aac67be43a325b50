package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"maps-scraper/models"
)

// PostgresWriter persists scraped places to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS places (
			id                SERIAL PRIMARY KEY,
			location          TEXT NOT NULL,
			category          TEXT NOT NULL,
			name              TEXT NOT NULL,
			maps_url          TEXT NOT NULL,
			email             TEXT NOT NULL,
			website           TEXT NOT NULL,
			address           TEXT NOT NULL,
			phone_number      TEXT NOT NULL,
			reviews_count     TEXT NOT NULL,
			reviews_average   TEXT NOT NULL,
			place_type        TEXT NOT NULL,
			work_time         TEXT NOT NULL,
			introduction      TEXT NOT NULL,
			social_media_urls TEXT NOT NULL,
			latitude          TEXT NOT NULL,
			longitude         TEXT NOT NULL,
			weekly_hours      TEXT NOT NULL,
			tags              TEXT NOT NULL,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (location, category, name)
		);

		CREATE INDEX IF NOT EXISTS idx_places_location ON places(location);
		CREATE INDEX IF NOT EXISTS idx_places_category ON places(category);
	`)
	return err
}

const placeCols = 18

// Write batch-inserts every place in the result set. Re-running a scrape for
// the same location and category leaves existing rows untouched.
func (pw *PostgresWriter) Write(results models.ResultSet) error {
	const batchSize = 50

	for _, location := range sortedLocations(results) {
		places := results[location]
		for i := 0; i < len(places); i += batchSize {
			end := i + batchSize
			if end > len(places) {
				end = len(places)
			}
			if err := pw.insertBatch(location, places[i:end]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(location string, batch []*models.Place) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*placeCols)

	for idx, p := range batch {
		base := idx * placeCols
		placeholders := make([]string, placeCols)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			location, p.Category, p.Name, p.MapsURL, p.Email, p.Website,
			p.Address, p.PhoneNumber, p.ReviewsCount, p.ReviewsAverage,
			p.PlaceType, p.WorkTime, p.Introduction, p.SocialMediaURLs,
			p.Latitude, p.Longitude, p.WeeklyHours, p.Tags)
	}

	query := fmt.Sprintf(`
		INSERT INTO places (
			location, category, name, maps_url, email, website,
			address, phone_number, reviews_count, reviews_average,
			place_type, work_time, introduction, social_media_urls,
			latitude, longitude, weekly_hours, tags
		)
		VALUES %s
		ON CONFLICT (location, category, name) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
