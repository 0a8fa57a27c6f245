package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/probekit/envprobe/config"
	"github.com/probekit/envprobe/heartbeat"
	"github.com/probekit/envprobe/metrics"
	"github.com/probekit/envprobe/report"
)

// The file provides utilities for integration testing:
// - `server.NewTestServer(cfg, logWriter, registry, snap, beat)`: Creates a full HTTP test server for end-to-end testing
// - `srv.ServeHTTP(responseRecorder, request)`: Direct testing with httptest.ResponseRecorder

// TestServer wraps a Server for testing purposes.
type TestServer struct {
	*Server
	HTTPServer *httptest.Server
}

// NewTestServer creates a new test server with the given configuration.
// This is the recommended way to create servers for integration testing.
func NewTestServer(cfg *config.Config, logWriter io.Writer, reg *prometheus.Registry, snap *report.Snapshot, beat *heartbeat.Beater) *TestServer {
	if reg == nil {
		reg = metrics.InitMetrics()
	}
	if beat == nil {
		beat = heartbeat.New(io.Discard, time.Second, ".")
	}

	server := New(cfg, logWriter, reg, snap, beat)
	httpServer := httptest.NewServer(server.router)

	return &TestServer{
		Server:     server,
		HTTPServer: httpServer,
	}
}

// NewTestServerWithRecorder creates a test server that uses httptest.ResponseRecorder
// instead of a real HTTP server. This is faster for unit-style integration tests.
func NewTestServerWithRecorder(cfg *config.Config, logWriter io.Writer, reg *prometheus.Registry, snap *report.Snapshot, beat *heartbeat.Beater) *Server {
	if reg == nil {
		reg = metrics.InitMetrics()
	}
	if beat == nil {
		beat = heartbeat.New(io.Discard, time.Second, ".")
	}

	return New(cfg, logWriter, reg, snap, beat)
}

// ServeHTTP allows the server to be used directly with httptest.ResponseRecorder.
func (s *Server) ServeHTTP(recorder *httptest.ResponseRecorder, request *http.Request) {
	s.router.ServeHTTP(recorder, request)
}
