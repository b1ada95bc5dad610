// Package app wires configuration, adapters and services into the object
// graph shared by the HTTP server and the CLI.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"meeting-point-service/internal/adapters/cache"
	"meeting-point-service/internal/adapters/googlemaps"
	"meeting-point-service/internal/adapters/ors"
	"meeting-point-service/internal/config"
	"meeting-point-service/internal/fairness"
	"meeting-point-service/internal/platform/db"
	"meeting-point-service/internal/platform/metrics"
	"meeting-point-service/internal/platform/tracing"
	"meeting-point-service/internal/ports"
	"meeting-point-service/internal/services"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"
)

const serviceName = "meeting-point-service"

// Ports are the outbound adapters the services run against.
type Ports struct {
	Geocoder ports.Geocoder
	Places   ports.PlaceSearcher
	Travel   ports.TravelTimeProvider
}

// App is the composed service.
type App struct {
	Config   *config.Config
	Finder   *services.MeetingFinder
	Policies *fairness.Registry
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry

	db      *sql.DB
	redis   *redis.Client
	tracing *tracing.Provider
}

// New builds the application against the configured map providers, wrapping
// them with the SQL and Redis caches when those are configured.
// Close must be called to release connections.
func New(ctx context.Context, cfg *config.Config) (_ *App, err error) {
	a := &App{Config: cfg}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()

	a.tracing, err = tracing.NewProvider(ctx, tracing.Config{
		ServiceName:  serviceName,
		Enabled:      cfg.TracingEnabled,
		Environment:  cfg.Env,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplingRate: cfg.TracingSampleRate,
		Insecure:     !cfg.IsProduction(),
	})
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	p, err := remotePorts(cfg)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	if p, err = a.withCaches(ctx, p); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	if err := a.compose(p); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	return a, nil
}

// NewWithPorts builds the application against caller-supplied ports with
// no caches and no tracing.
func NewWithPorts(cfg *config.Config, p Ports) (*App, error) {
	a := &App{Config: cfg}
	if err := a.compose(p); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	return a, nil
}

func (a *App) compose(p Ports) error {
	if p.Geocoder == nil || p.Places == nil || p.Travel == nil {
		return errors.New("geocoder, place searcher and travel provider are required")
	}

	policies, err := a.Config.Policies()
	if err != nil {
		return err
	}

	a.Registry = prometheus.NewRegistry()
	a.Metrics = metrics.New()
	if err := a.Metrics.Register(a.Registry); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	cfg := a.Config
	assembler := services.NewAssembler(p.Places, a.Metrics)
	measurer := services.NewMeasurer(p.Travel, cfg.LookupConcurrency, cfg.LookupTimeout, a.Metrics)
	ranker := services.NewRanker(measurer, policies, a.Metrics)

	a.Policies = policies
	a.Finder = services.NewMeetingFinder(p.Geocoder, assembler, ranker, services.FinderSettings{
		Radius: services.RadiusHints{
			MidpointMeters: cfg.SearchRadiusMeters,
			OriginMeters:   cfg.SearchRadiusMeters,
		},
		DefaultMode:    cfg.DefaultMode,
		DefaultLimit:   cfg.DefaultLimit,
		ExpansionSeeds: cfg.ExpansionSeeds,
	})
	return nil
}

// remotePorts selects the map providers named in cfg.
func remotePorts(cfg *config.Config) (Ports, error) {
	burst := max(1, int(cfg.MapsRateLimit))

	google, err := googlemaps.New(cfg.GoogleMapsAPIKey, googlemaps.Options{
		RatePerSecond: cfg.MapsRateLimit,
		Burst:         burst,
	})
	if err != nil {
		return Ports{}, err
	}

	p := Ports{Geocoder: google, Places: google, Travel: google}
	if cfg.Geocoder != config.ProviderORS && cfg.TravelProvider != config.ProviderORS {
		return p, nil
	}

	orsClient, err := ors.New(cfg.ORSAPIKey, ors.Options{
		RatePerSecond: cfg.MapsRateLimit,
		Burst:         burst,
	})
	if err != nil {
		return Ports{}, err
	}
	if cfg.Geocoder == config.ProviderORS {
		p.Geocoder = orsClient
	}
	if cfg.TravelProvider == config.ProviderORS {
		p.Travel = orsClient
	}
	return p, nil
}

// withCaches opens the SQL cache database and the Redis place cache when
// configured and wraps p with the caching decorators.
func (a *App) withCaches(ctx context.Context, p Ports) (Ports, error) {
	cfg := a.Config

	if cfg.DatabaseURL != "" {
		dialect, err := db.ParseDialect(cfg.DatabaseDriver)
		if err != nil {
			return Ports{}, err
		}
		if dialect == db.SQLite {
			if err := ensureDir(cfg.DatabaseURL); err != nil {
				return Ports{}, err
			}
		}

		conn, err := db.Open(ctx, dialect, cfg.DatabaseURL)
		if err != nil {
			return Ports{}, err
		}
		a.db = conn

		if err := db.InitSchema(ctx, conn); err != nil {
			return Ports{}, err
		}

		p.Travel = cache.NewCachedTravelTimes(p.Travel, cache.NewSQLTravelTimeCache(conn, dialect))
		p.Geocoder = cache.NewCachedGeocoder(p.Geocoder, cache.NewSQLGeocodeCache(conn, dialect))
		slog.Info("lookup cache enabled", "driver", dialect)
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return Ports{}, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		a.redis = redis.NewClient(opts)

		places := cache.NewRedisPlaceCache(a.redis, cfg.PlacesCacheTTL)
		if err := places.Ping(ctx); err != nil {
			return Ports{}, err
		}
		p.Places = cache.NewCachedPlaceSearcher(p.Places, places)
		slog.Info("place search cache enabled", "ttl", cfg.PlacesCacheTTL)
	}

	return p, nil
}

// ensureDir creates the parent directory of a SQLite file path.
func ensureDir(dsn string) error {
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	dir := filepath.Dir(dsn)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create database directory %s: %w", dir, err)
	}
	return nil
}

// Ready checks the backing stores. Remote map APIs are not checked.
func (a *App) Ready(ctx context.Context) error {
	if a.db != nil {
		if err := a.db.PingContext(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// Close releases connections and flushes pending spans.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	errs = append(errs, a.tracing.Shutdown(ctx))
	return errors.Join(errs...)
}
