// Package config loads service configuration. Values come from an optional
// YAML file overlaid by environment variables; a .env file is loaded first
// for local runs.
package config

import (
	"errors"
	"fmt"
	"meeting-point-service/internal/domain"
	"meeting-point-service/internal/fairness"
	"meeting-point-service/internal/platform/db"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Provider names for TRAVEL_PROVIDER and GEOCODER.
const (
	ProviderGoogle = "google"
	ProviderORS    = "ors"
)

type Config struct {
	Port int
	Env  string

	GoogleMapsAPIKey string
	ORSAPIKey        string
	TravelProvider   string
	Geocoder         string
	MapsRateLimit    float64
	// MapsEmbedAPIKey is a browser-restricted key used only in map embed links.
	MapsEmbedAPIKey  string

	DatabaseDriver string
	DatabaseURL    string
	RedisURL       string
	PlacesCacheTTL time.Duration
	// SeedPath is the geocode seed file dbtool loads after creating the schema.
	SeedPath       string

	LookupTimeout     time.Duration
	LookupConcurrency int

	FairnessPolicy     string
	FairnessPolicyFile string
	DefaultMode        domain.TravelMode
	DefaultLimit       int
	SearchRadiusMeters int
	ExpansionSeeds     int

	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64
}

// Configuration validation errors.
var (
	ErrMissingGoogleKey = errors.New("GOOGLE_MAPS_API_KEY is required")
	ErrMissingORSKey    = errors.New("ORS_API_KEY is required when ORS is selected")
	ErrInvalidPort      = errors.New("PORT must be a valid integer")

	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")
)

// Defaults.
const (
	DefaultPort               = 8080
	DefaultEnv                = "development"
	DefaultDatabaseDriver     = "sqlite"
	DefaultDatabaseURL        = "data/meetpoint.db"
	DefaultPlacesCacheTTL     = 6 * time.Hour
	DefaultLookupTimeout      = 8 * time.Second
	DefaultLookupConcurrency  = 8
	DefaultMapsRateLimit      = 20.0
	DefaultLimit              = 10
	DefaultSearchRadiusMeters = 2000
	DefaultExpansionSeeds     = 3
	DefaultTracingSampleRate  = 0.1
)

// LoadDotEnv loads .env into the process environment when present.
// It reports whether a file was found.
func LoadDotEnv() bool {
	return godotenv.Load() == nil
}

// Load reads configuration from an optional YAML file and the environment.
// Environment variables take precedence over file values. It returns the
// config and every validation error found (empty when valid).
func Load(configFilePath string) (*Config, []error) {
	cfg, errs := Read(configFilePath)
	if cfg == nil {
		return nil, errs
	}
	return cfg, append(errs, cfg.Validate()...)
}

// Read is Load without Validate, for tools that need only part of the
// configuration. It returns nil only when the file cannot be loaded.
func Read(configFilePath string) (*Config, []error) {
	k := koanf.New(".")

	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("load config file %s: %w", configFilePath, err)}
		}
	}

	l := loader{k: k}

	cfg := &Config{
		Port: l.integer("PORT", "port", DefaultPort),
		Env:  l.str("ENV", "env", DefaultEnv),

		GoogleMapsAPIKey: l.str("GOOGLE_MAPS_API_KEY", "google_maps_api_key", ""),
		ORSAPIKey:        l.str("ORS_API_KEY", "ors_api_key", ""),
		TravelProvider:   strings.ToLower(l.str("TRAVEL_PROVIDER", "travel_provider", ProviderGoogle)),
		Geocoder:         strings.ToLower(l.str("GEOCODER", "geocoder", ProviderGoogle)),
		MapsRateLimit:    l.number("MAPS_RATE_LIMIT", "maps_rate_limit", DefaultMapsRateLimit),
		MapsEmbedAPIKey:  l.str("MAPS_EMBED_API_KEY", "maps_embed_api_key", ""),

		DatabaseDriver: l.str("DATABASE_DRIVER", "database_driver", DefaultDatabaseDriver),
		DatabaseURL:    l.str("DATABASE_URL", "database_url", DefaultDatabaseURL),
		RedisURL:       l.str("REDIS_URL", "redis_url", ""),
		PlacesCacheTTL: l.duration("PLACES_CACHE_TTL", "places_cache_ttl", DefaultPlacesCacheTTL),
		SeedPath:       l.str("SEED_PATH", "seed_path", ""),

		LookupTimeout:     l.duration("LOOKUP_TIMEOUT", "lookup_timeout", DefaultLookupTimeout),
		LookupConcurrency: l.integer("LOOKUP_CONCURRENCY", "lookup_concurrency", DefaultLookupConcurrency),

		FairnessPolicy:     l.str("FAIRNESS_POLICY", "fairness_policy", ""),
		FairnessPolicyFile: l.str("FAIRNESS_POLICY_FILE", "fairness_policy_file", ""),
		DefaultLimit:       l.integer("DEFAULT_LIMIT", "default_limit", DefaultLimit),
		SearchRadiusMeters: l.integer("SEARCH_RADIUS_METERS", "search_radius_meters", DefaultSearchRadiusMeters),
		ExpansionSeeds:     l.integer("EXPANSION_SEEDS", "expansion_seeds", DefaultExpansionSeeds),

		TracingEnabled:    l.boolean("TRACING_ENABLED", "tracing_enabled", false),
		OTLPEndpoint:      l.str("OTLP_ENDPOINT", "otlp_endpoint", ""),
		TracingSampleRate: l.number("TRACING_SAMPLE_RATE", "tracing_sample_rate", DefaultTracingSampleRate),
	}

	mode, err := domain.ParseTravelMode(l.str("DEFAULT_MODE", "default_mode", ""))
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("DEFAULT_MODE: %w", err))
	}
	cfg.DefaultMode = mode

	return cfg, l.errs
}

// Validate checks required keys and ranges.
func (c *Config) Validate() []error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, ErrInvalidPort)
	}

	for _, p := range []struct{ key, val string }{
		{"TRAVEL_PROVIDER", c.TravelProvider},
		{"GEOCODER", c.Geocoder},
	} {
		if p.val != ProviderGoogle && p.val != ProviderORS {
			errs = append(errs, fmt.Errorf("%s must be %q or %q, got %q", p.key, ProviderGoogle, ProviderORS, p.val))
		}
	}

	// Place search has no ORS equivalent, so the Google key is always needed.
	if c.GoogleMapsAPIKey == "" {
		errs = append(errs, ErrMissingGoogleKey)
	}
	if (c.TravelProvider == ProviderORS || c.Geocoder == ProviderORS) && c.ORSAPIKey == "" {
		errs = append(errs, ErrMissingORSKey)
	}

	if c.LookupConcurrency <= 0 {
		errs = append(errs, errors.New("LOOKUP_CONCURRENCY must be positive"))
	}
	if c.LookupTimeout <= 0 {
		errs = append(errs, errors.New("LOOKUP_TIMEOUT must be positive"))
	}
	if c.DefaultLimit <= 0 {
		errs = append(errs, errors.New("DEFAULT_LIMIT must be positive"))
	}
	if c.SearchRadiusMeters <= 0 || c.SearchRadiusMeters > 50000 {
		errs = append(errs, errors.New("SEARCH_RADIUS_METERS must be within (0, 50000]"))
	}
	if c.ExpansionSeeds < 0 {
		errs = append(errs, errors.New("EXPANSION_SEEDS must not be negative"))
	}
	if c.MapsRateLimit < 0 {
		errs = append(errs, errors.New("MAPS_RATE_LIMIT must not be negative"))
	}
	if c.TracingSampleRate < 0 || c.TracingSampleRate > 1 {
		errs = append(errs, errors.New("TRACING_SAMPLE_RATE must be within [0, 1]"))
	}

	return errs
}

// ValidateDatabase checks the settings needed to open the cache database.
func (c *Config) ValidateDatabase() []error {
	var errs []error
	if strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, ErrMissingDatabaseURL)
	}
	if _, err := db.ParseDialect(c.DatabaseDriver); err != nil {
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER: %w", err))
	}
	return errs
}

// Policies builds the fairness registry from the calibration file, if any,
// and applies FAIRNESS_POLICY as the default.
func (c *Config) Policies() (*fairness.Registry, error) {
	r, err := fairness.LoadCalibration(c.FairnessPolicyFile)
	if err != nil {
		return nil, err
	}
	if c.FairnessPolicy == "" || c.FairnessPolicy == r.DefaultName() {
		return r, nil
	}
	return fairness.NewRegistry(c.FairnessPolicy, r.Policies()...)
}

// IsProduction reports whether ENV selects production behaviour.
func (c *Config) IsProduction() bool { return c.Env == "production" }

// loader reads one key from the environment, then the file, then a default,
// collecting parse errors.
type loader struct {
	k    *koanf.Koanf
	errs []error
}

func (l *loader) raw(envKey, koanfKey string) (string, bool) {
	if v := os.Getenv(envKey); v != "" {
		return v, true
	}
	if l.k.Exists(koanfKey) {
		return l.k.String(koanfKey), true
	}
	return "", false
}

func (l *loader) str(envKey, koanfKey, def string) string {
	if v, ok := l.raw(envKey, koanfKey); ok && v != "" {
		return v
	}
	return def
}

func (l *loader) integer(envKey, koanfKey string, def int) int {
	v, ok := l.raw(envKey, koanfKey)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		if envKey == "PORT" {
			l.errs = append(l.errs, ErrInvalidPort)
		} else {
			l.errs = append(l.errs, fmt.Errorf("%s must be an integer: %w", envKey, err))
		}
		return def
	}
	return n
}

func (l *loader) number(envKey, koanfKey string, def float64) float64 {
	v, ok := l.raw(envKey, koanfKey)
	if !ok || v == "" {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%s must be a number: %w", envKey, err))
		return def
	}
	return f
}

func (l *loader) boolean(envKey, koanfKey string, def bool) bool {
	v, ok := l.raw(envKey, koanfKey)
	if !ok || v == "" {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	l.errs = append(l.errs, fmt.Errorf("%s must be a boolean, got %q", envKey, v))
	return def
}

func (l *loader) duration(envKey, koanfKey string, def time.Duration) time.Duration {
	v, ok := l.raw(envKey, koanfKey)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%s must be a duration: %w", envKey, err))
		return def
	}
	return d
}
