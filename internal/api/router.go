package api

import (
	"context"
	"meeting-point-service/internal/api/handlers"
	"meeting-point-service/internal/fairness"
	"meeting-point-service/internal/platform/metrics"
	"meeting-point-service/internal/services"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Finder   *services.MeetingFinder
	Policies *fairness.Registry
	Metrics  *metrics.Metrics
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
	Ready    func(ctx context.Context) error
	EmbedKey string
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware, loggingMiddleware(d.Metrics))

	meeting := &handlers.MeetingHandler{Finder: d.Finder, EmbedKey: d.EmbedKey}
	policies := &handlers.PolicyHandler{Policies: d.Policies}
	ready := &handlers.ReadyHandler{Check: d.Ready}

	r.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)
	r.HandleFunc("/ready", ready.Ready).Methods(http.MethodGet)
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/meeting-places", meeting.Find).Methods(http.MethodPost)
	v1.HandleFunc("/candidates", meeting.Candidates).Methods(http.MethodPost)
	v1.HandleFunc("/rankings", meeting.Rank).Methods(http.MethodPost)
	v1.HandleFunc("/policies", policies.List).Methods(http.MethodGet)

	return otelhttp.NewHandler(r, "meeting-point-service",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
