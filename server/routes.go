package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/probekit/envprobe/cmd"
	"github.com/probekit/envprobe/cmd/env"
	"github.com/probekit/envprobe/cmd/info"
	"github.com/probekit/envprobe/cmd/shutdown"
	"github.com/probekit/envprobe/config"
	"github.com/probekit/envprobe/heartbeat"
	"github.com/probekit/envprobe/metrics"
	"github.com/probekit/envprobe/report"
	"github.com/rs/zerolog/log"
)

// setupRoutes configures the application's routes.
func setupRoutes(router *chi.Mux, cfg *config.Config, reg *prometheus.Registry, snap *report.Snapshot, beat *heartbeat.Beater) {
	// Root endpoint: the same report the probe printed to stdout.
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if err := snap.Write(w); err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("failed to write report")
		}
	})

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	envHandler := env.Handler(snap)
	router.Get("/env", envHandler)
	router.Post("/env", envHandler)

	router.Get("/info", info.Handler(snap, beat))
	router.Get("/version", cmd.VersionHandler)

	// Command endpoints (protected with token auth)
	router.Route("/shutdown", func(r chi.Router) {
		r.Use(requireToken(cfg))
		r.Get("/", shutdown.Handler())
		r.Post("/", shutdown.Handler())
	})

	router.Handle(cfg.MetricsPath, metrics.MetricsHandler(reg))
}
