package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"maps-scraper/config"
	"maps-scraper/models"
	"maps-scraper/scraper/gmaps"
	"maps-scraper/services"
	"maps-scraper/storage"
	"maps-scraper/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(cfg.Verbose)

	logger.Info("=== Maps Scraping System starting ===")

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration: %v", err)
		os.Exit(1)
	}

	logger.Info("Config: categories: %d | locations: %d | results/category: %d | concurrency: %d | format: %s",
		len(cfg.Categories), len(cfg.Locations), cfg.ResultsPerCategory, cfg.MaxConcurrency, cfg.ExportFormat)

	errLog := utils.NewErrorLog(cfg.ErrorLogPath)
	defer errLog.Close()

	selectors := gmaps.DefaultSelectors()
	if cfg.SelectorsFile != "" {
		loaded, err := gmaps.LoadSelectors(cfg.SelectorsFile)
		if err != nil {
			logger.Error("Failed to load selectors from %s: %v", cfg.SelectorsFile, err)
			os.Exit(1)
		}
		selectors = loaded
		logger.Info("Loaded selector table version %s from %s", selectors.Version, cfg.SelectorsFile)
	}

	emailHunter := services.NewEmailHunter(cfg.EmailLookupTimeout(), cfg.EmailValidateMX, logger)
	factory := gmaps.NewBrowserFactory(cfg.Headless, cfg.ChromeBin, logger)

	runner := gmaps.NewRunner(factory, selectors, emailHunter, logger, errLog, gmaps.RunnerOptions{
		MaxConcurrency: cfg.MaxConcurrency,
		MaxStalls:      cfg.MaxScrollStalls,
		Settle:         cfg.SettleDelay(),
		Lang:           cfg.LangCode,
	})

	var jobs []gmaps.Job
	for _, location := range cfg.Locations {
		for _, category := range cfg.Categories {
			jobs = append(jobs, gmaps.Job{Category: category, Location: location})
		}
	}

	progress := func(name string, count int) {
		logger.Info("Collected %d: %s", count, name)
	}

	results, err := runner.RunJobs(context.Background(), jobs, cfg.ResultsPerCategory, progress)
	if err != nil {
		logger.Error("Scrape failed: %v", err)
		os.Exit(1)
	}

	total := results.Total()
	if total == 0 {
		logger.Error("No places were scraped. Exiting.")
		os.Exit(1)
	}
	logger.Info("Scraped %d places across %d locations", total, len(results))

	outPath := outputPath(cfg)
	writer, err := newWriter(cfg.ExportFormat, outPath)
	if err != nil {
		logger.Error("Failed to create %s writer: %v", cfg.ExportFormat, err)
		os.Exit(1)
	}
	if err := writer.Write(results); err != nil {
		logger.Error("Export failed: %v", err)
	} else {
		logger.Info("Results saved to %s", outPath)
	}
	if err := writer.Close(); err != nil {
		logger.Error("Failed to close writer: %v", err)
	}

	if dsn := cfg.DSN(); dsn != "" {
		pgWriter, err := storage.NewPostgresWriter(dsn)
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
		} else {
			if err := pgWriter.Write(results); err != nil {
				logger.Error("PostgreSQL write failed: %v", err)
			} else {
				logger.Info("Places stored in PostgreSQL (table: places)")
			}
			pgWriter.Close()
		}
	}

	insightSvc := services.NewInsightService(logger)
	insightSvc.Print(insightSvc.Generate(results))

	printSummary(results)

	if n := len(errLog.Entries()); n > 0 {
		logger.Warn("%d listings were skipped due to errors, see %s", n, cfg.ErrorLogPath)
	}

	logger.Info("=== Done ===")
}

// outputPath builds the timestamped export file name inside the output dir.
func outputPath(cfg *config.Config) string {
	ext := cfg.ExportFormat
	if ext == "excel" {
		ext = "xlsx"
	}
	name := fmt.Sprintf("Maps_scrape_%s_%s.%s",
		strings.Join(cfg.Locations, "_"),
		time.Now().Format("2006-01-02_15-04-05"),
		ext)
	return filepath.Join(cfg.OutputDir, name)
}

func newWriter(format, path string) (storage.PlaceWriter, error) {
	switch format {
	case "excel":
		return storage.NewExcelWriter(path)
	case "json":
		return storage.NewJSONWriter(path)
	case "html":
		return storage.NewHTMLWriter(path)
	case "csv":
		return storage.NewCSVWriter(path)
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

func printSummary(results models.ResultSet) {
	fmt.Println()
	for _, location := range sortedKeys(results) {
		fmt.Printf("  %-30s %d places\n", location, len(results[location]))
	}
	fmt.Println()
}

func sortedKeys(results models.ResultSet) []string {
	keys := make([]string, 0, len(results))
	for k := range results {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
