package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Valid export formats.
var exportFormats = map[string]bool{
	"excel": true,
	"json":  true,
	"html":  true,
	"csv":   true,
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Categories []string
	Locations  []string

	ResultsPerCategory int
	MaxConcurrency     int
	MaxScrollStalls    int
	SettleDelayMs      int

	Headless bool
	LangCode string

	ExportFormat string
	OutputDir    string

	SelectorsFile string
	ErrorLogPath  string

	EmailLookupTimeoutMs int
	EmailValidateMX      bool

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	ChromeBin string
	Verbose   bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		Categories: splitList(getEnv("CATEGORIES", "")),
		Locations:  splitList(getEnv("LOCATIONS", "")),

		ResultsPerCategory: getEnvInt("RESULTS_PER_CATEGORY", 10),
		MaxConcurrency:     getEnvInt("MAX_CONCURRENCY", 4),
		MaxScrollStalls:    getEnvInt("MAX_SCROLL_STALLS", 10),
		SettleDelayMs:      getEnvInt("SETTLE_DELAY_MS", 500),

		Headless: getEnvBool("HEADLESS", true),
		LangCode: getEnv("LANG_CODE", "en"),

		ExportFormat: strings.ToLower(getEnv("EXPORT_FORMAT", "excel")),
		OutputDir:    getEnv("OUTPUT_DIR", "./results"),

		SelectorsFile: getEnv("SELECTORS_FILE", ""),
		ErrorLogPath:  getEnv("ERROR_LOG_PATH", "scrape_errors.log"),

		EmailLookupTimeoutMs: getEnvInt("EMAIL_LOOKUP_TIMEOUT_MS", 5000),
		EmailValidateMX:      getEnvBool("EMAIL_VALIDATE_MX", false),

		PostgresHost:     getEnv("POSTGRES_HOST", ""),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresDB:       getEnv("POSTGRES_DB", "leads_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		ChromeBin: getEnv("CHROME_BIN", ""),
		Verbose:   getEnvBool("VERBOSE", false),
	}
}

// Validate rejects fatal configuration errors before any browser work begins.
func (c *Config) Validate() error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("no categories configured (set CATEGORIES)")
	}
	if len(c.Locations) == 0 {
		return fmt.Errorf("no locations configured (set LOCATIONS)")
	}
	if c.ResultsPerCategory <= 0 {
		return fmt.Errorf("RESULTS_PER_CATEGORY must be > 0")
	}
	if !exportFormats[c.ExportFormat] {
		return fmt.Errorf("invalid export format %q (want excel, json, html or csv)", c.ExportFormat)
	}
	if c.MaxConcurrency <= 0 {
		return fmt.Errorf("MAX_CONCURRENCY must be > 0")
	}
	if c.MaxScrollStalls <= 0 {
		return fmt.Errorf("MAX_SCROLL_STALLS must be > 0")
	}
	return nil
}

// DSN returns the PostgreSQL connection string. Empty when the optional
// Postgres sink is not configured.
func (c *Config) DSN() string {
	if c.PostgresHost == "" {
		return ""
	}
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// EmailLookupTimeout returns the bounded timeout for website email lookups.
func (c *Config) EmailLookupTimeout() time.Duration {
	return time.Duration(c.EmailLookupTimeoutMs) * time.Millisecond
}

// SettleDelay returns the wait applied after scroll and click gestures.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMs) * time.Millisecond
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
