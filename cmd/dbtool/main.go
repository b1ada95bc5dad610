package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"meeting-point-service/internal/adapters/cache"
	"meeting-point-service/internal/config"
	"meeting-point-service/internal/platform/db"
	"meeting-point-service/internal/platform/obs"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

// rootCmd prepares the lookup cache database: it creates the schema and
// optionally seeds known address coordinates from a JSON file.
var rootCmd = &cobra.Command{
	Use:   "dbtool",
	Short: "Create the lookup cache schema and seed known geocodes",
	Long: `dbtool opens DATABASE_URL with DATABASE_DRIVER (sqlite or pgx), creates the
travel-time and geocode cache tables, and preloads geocodes from --seed or
SEED_PATH when given.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !config.LoadDotEnv() {
			slog.Info("no .env file found (using environment variables)")
		}

		path, _ := cmd.Flags().GetString("config")
		cfg, err := loadConfig(path)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("seed") {
			cfg.SeedPath, _ = cmd.Flags().GetString("seed")
		}
		slog.SetDefault(obs.NewLogger(os.Stdout, cfg.Env))

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		return run(ctx, cfg)
	},
}

func init() {
	rootCmd.Flags().String("config", os.Getenv("CONFIG_FILE"), "YAML config file")
	rootCmd.Flags().String("seed", "", "JSON file of address/place id coordinates to preload (overrides SEED_PATH)")
}

// loadConfig reads only the database settings; API keys are not needed here.
func loadConfig(path string) (*config.Config, error) {
	cfg, errs := config.Read(path)
	if cfg != nil {
		errs = append(errs, cfg.ValidateDatabase()...)
	}
	if len(errs) > 0 {
		for _, err := range errs {
			slog.Error("invalid configuration", "err", err)
		}
		return nil, fmt.Errorf("invalid configuration (%d problems)", len(errs))
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config) error {
	dialect, err := db.ParseDialect(cfg.DatabaseDriver)
	if err != nil {
		return err
	}

	conn, err := db.Open(ctx, dialect, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	return initAndSeed(ctx, conn, dialect, cfg.SeedPath)
}

func initAndSeed(ctx context.Context, conn *sql.DB, dialect db.Dialect, seedPath string) error {
	slog.Info("initializing database schema", "driver", dialect)
	if err := db.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	slog.Info("schema ready")

	if seedPath == "" {
		return nil
	}

	slog.Info("seeding geocode cache", "path", seedPath)
	n, err := cache.SeedGeocodesFromJSON(ctx, cache.NewSQLGeocodeCache(conn, dialect), seedPath)
	if err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	slog.Info("seeding complete", "entries", n)

	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("dbtool failed", "err", err)
		os.Exit(1)
	}
}
