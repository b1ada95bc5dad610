package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"meeting-point-service/internal/api"
	"meeting-point-service/internal/app"
	"meeting-point-service/internal/config"
	"meeting-point-service/internal/platform/obs"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// rootCmd is the application composition root.
// It wires concrete adapters (Google Maps, ORS, SQL and Redis caches) behind
// ports and starts the HTTP server.
var rootCmd = &cobra.Command{
	Use:          "server",
	Short:        "Serve the meeting place HTTP API",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !config.LoadDotEnv() {
			slog.Info("no .env file found (using environment variables)")
		}

		path, _ := cmd.Flags().GetString("config")
		cfg, errs := config.Load(path)
		if len(errs) > 0 {
			for _, err := range errs {
				slog.Error("invalid configuration", "err", err)
			}
			return fmt.Errorf("invalid configuration (%d problems)", len(errs))
		}
		slog.SetDefault(obs.NewLogger(os.Stdout, cfg.Env))

		return run(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.Flags().String("config", os.Getenv("CONFIG_FILE"), "optional YAML config file")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("server stopped", "err", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Close(closeCtx); err != nil {
			slog.Warn("shutdown cleanup failed", "err", err)
		}
	}()

	router := api.NewRouter(api.Deps{
		Finder:   a.Finder,
		Policies: a.Policies,
		Metrics:  a.Metrics,
		Gatherer: a.Registry,
		Ready:    a.Ready,
		EmbedKey: cfg.MapsEmbedAPIKey,
	})

	// Timeouts are tuned for cold-cache searches (external API latency).
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr, "env", cfg.Env,
			"travel_provider", cfg.TravelProvider, "geocoder", cfg.Geocoder)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
