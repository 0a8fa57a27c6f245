package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/probekit/envprobe/config"
	"github.com/probekit/envprobe/heartbeat"
	"github.com/probekit/envprobe/metrics"
	"github.com/probekit/envprobe/report"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

// Server holds the HTTP diagnostics server and its configuration.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	config     *config.Config
}

// New creates a new HTTP server exposing the captured snapshot and probe state.
func New(cfg *config.Config, logWriter io.Writer, reg *prometheus.Registry, snap *report.Snapshot, beat *heartbeat.Beater) *Server {
	r := chi.NewRouter()

	if logWriter == nil {
		logWriter = os.Stderr
	}
	// Create a zerolog logger instance that writes to the provided writer
	logger := zerolog.New(logWriter).With().Timestamp().Caller().Logger()

	// Set up middleware chain
	r.Use(
		// Inject zerolog logger into the request context
		hlog.NewHandler(logger),

		// Collect HTTP metrics
		metrics.HTTPMetricsMiddleware,

		// Log request details
		hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
			hlog.FromRequest(r).Info().
				Str("method", r.Method).
				Str("url", r.URL.String()).
				Int("status", status).
				Int("size", size).
				Dur("duration", duration).
				Msg("request")
		}),

		// Add remote IP address to the logger
		hlog.RemoteAddrHandler("ip"),

		// Add user agent to the logger
		hlog.UserAgentHandler("user_agent"),

		// Add request ID to the logger
		middleware.RequestID,

		// Handle X-Correlation-ID header
		correlationID,

		// Recover from panics and log them
		middleware.Recoverer,
	)

	// Set up routes
	setupRoutes(r, cfg, reg, snap, beat)

	s := &Server{
		router: r,
		config: cfg,
		httpServer: &http.Server{
			Addr:         cfg.Listen,
			Handler:      r,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  15 * time.Second,
		},
	}

	return s
}

// Start runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully. Signal handling belongs to the caller.
func (s *Server) Start(ctx context.Context) error {
	log.Info().Str("listen", s.config.Listen).Msg("Starting diagnostics server")

	errChan := make(chan error, 1)
	go func() {
		var err error
		if s.config.TLSCertFile != "" && s.config.TLSKeyFile != "" {
			log.Info().Msg("TLS enabled")
			err = s.httpServer.ListenAndServeTLS(s.config.TLSCertFile, s.config.TLSKeyFile)
		} else {
			log.Info().Msg("TLS disabled")
			err = s.httpServer.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("diagnostics server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down diagnostics server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("diagnostics server shutdown failed: %w", err)
	}

	log.Info().Msg("Diagnostics server gracefully stopped.")
	return nil
}
