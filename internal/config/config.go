package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// Common errors
var (
	ErrMissingDatabaseURL    = errors.New("DATABASE_URL environment variable is required")
	ErrMissingBoundarySource = errors.New("ZCTA_BOUNDARY_SOURCE must point to a GeoJSON file or URL")
	ErrInvalidRate           = errors.New("ZIP_LOOKUP_RPS must be positive")
	ErrInvalidCacheTTL       = errors.New("COVERAGE_CACHE_TTL must be positive")
	ErrInvalidRetries        = errors.New("AVAILABILITY_MAX_RETRIES must not be negative")
	ErrInvalidRetryDelay     = errors.New("AVAILABILITY_RETRY_BASE_DELAY must not be negative")
)

const (
	DefaultPort              = "5050"
	DefaultBoundarySource    = "./data/zcta_boundaries.geojson"
	DefaultZipLookupBaseURL  = "https://api.zippopotam.us/us"
	DefaultZipLookupRPS      = 5.0
	DefaultCoverageCacheTTL  = 5 * time.Minute
	DefaultMaxRetries        = 2
	DefaultRetryBaseDelay    = 2 * time.Second
	DefaultHTTPClientTimeout = 10 * time.Second
)

// Config holds runtime configuration for the server and the operator tools.
type Config struct {
	DatabaseURL string `yaml:"database_url"`
	Port        string `yaml:"port"`

	// Where the ZCTA FeatureCollection lives: an http(s) URL or a local path.
	BoundarySource string `yaml:"boundary_source"`

	ZipLookupBaseURL string  `yaml:"zip_lookup_base_url"`
	ZipLookupRPS     float64 `yaml:"zip_lookup_rps"`

	CoverageCacheTTL time.Duration `yaml:"coverage_cache_ttl"`

	AvailabilityMaxRetries     int           `yaml:"availability_max_retries"`
	AvailabilityRetryBaseDelay time.Duration `yaml:"availability_retry_base_delay"`

	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Defaults returns a Config populated with the built-in defaults.
func Defaults() Config {
	return Config{
		Port:                       DefaultPort,
		BoundarySource:             DefaultBoundarySource,
		ZipLookupBaseURL:           DefaultZipLookupBaseURL,
		ZipLookupRPS:               DefaultZipLookupRPS,
		CoverageCacheTTL:           DefaultCoverageCacheTTL,
		AvailabilityMaxRetries:     DefaultMaxRetries,
		AvailabilityRetryBaseDelay: DefaultRetryBaseDelay,
	}
}

// LoadFromEnv loads configuration from environment variables.
//
// If CONFIG_FILE is set, the YAML file is applied first and environment
// variables override it.
//
// Environment variables:
//   - DATABASE_URL: Postgres DSN (required for the server)
//   - PORT: listen port (default: 5050)
//   - ZCTA_BOUNDARY_SOURCE: GeoJSON path or URL (default: ./data/zcta_boundaries.geojson)
//   - ZIP_LOOKUP_BASE_URL: ZIP-to-place API (default: https://api.zippopotam.us/us)
//   - ZIP_LOOKUP_RPS: outbound request rate for the ZIP API (default: 5)
//   - COVERAGE_CACHE_TTL: Go duration (default: 5m)
//   - AVAILABILITY_MAX_RETRIES: extra attempts after the first (default: 2)
//   - AVAILABILITY_RETRY_BASE_DELAY: Go duration multiplied by attempt number (default: 2s)
//   - ALLOWED_ORIGINS: comma-separated extra CORS origins
func LoadFromEnv() (Config, error) {
	cfg := Defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return cfg, err
		}
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		cfg.Port = v
	}
	if v := strings.TrimSpace(os.Getenv("ZCTA_BOUNDARY_SOURCE")); v != "" {
		cfg.BoundarySource = v
	}
	if v := strings.TrimSpace(os.Getenv("ZIP_LOOKUP_BASE_URL")); v != "" {
		cfg.ZipLookupBaseURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv("ZIP_LOOKUP_RPS")); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("parse ZIP_LOOKUP_RPS: %w", err)
		}
		cfg.ZipLookupRPS = rps
	}
	if v := strings.TrimSpace(os.Getenv("COVERAGE_CACHE_TTL")); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("parse COVERAGE_CACHE_TTL: %w", err)
		}
		cfg.CoverageCacheTTL = ttl
	}
	if v := strings.TrimSpace(os.Getenv("AVAILABILITY_MAX_RETRIES")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("parse AVAILABILITY_MAX_RETRIES: %w", err)
		}
		cfg.AvailabilityMaxRetries = n
	}
	if v := strings.TrimSpace(os.Getenv("AVAILABILITY_RETRY_BASE_DELAY")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("parse AVAILABILITY_RETRY_BASE_DELAY: %w", err)
		}
		cfg.AvailabilityRetryBaseDelay = d
	}
	if v := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); v != "" {
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	return cfg, cfg.checkTuning()
}

// checkTuning rejects cache and retry settings that would silently change
// behavior: a zero TTL never expires coverage verdicts.
func (c Config) checkTuning() error {
	if c.CoverageCacheTTL <= 0 {
		return fmt.Errorf("%w (got %s)", ErrInvalidCacheTTL, c.CoverageCacheTTL)
	}
	if c.AvailabilityMaxRetries < 0 {
		return fmt.Errorf("%w (got %d)", ErrInvalidRetries, c.AvailabilityMaxRetries)
	}
	if c.AvailabilityRetryBaseDelay < 0 {
		return fmt.Errorf("%w (got %s)", ErrInvalidRetryDelay, c.AvailabilityRetryBaseDelay)
	}
	return nil
}

func (c *Config) applyFile(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(payload, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks the settings the HTTP server cannot run without.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	if strings.TrimSpace(c.BoundarySource) == "" {
		return ErrMissingBoundarySource
	}
	if c.ZipLookupRPS <= 0 {
		return ErrInvalidRate
	}
	return c.checkTuning()
}
