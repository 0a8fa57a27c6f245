package server

import (
	"crypto/subtle"
	"net/http"

	"github.com/google/uuid"
	"github.com/probekit/envprobe/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// correlationHeader is echoed on every response so an operator can tie probe
// logs to whatever system called it.
const correlationHeader = "X-Correlation-ID"

// correlationID tags each request with the caller's correlation ID, or a
// fresh one when the caller sent none.
func correlationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(correlationHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(correlationHeader, id)

		hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("correlation_id", id)
		})

		next.ServeHTTP(w, r)
	})
}

// requireToken guards the probe's one mutating endpoint. Callers present the
// token in the "token" query parameter or the X-Auth-Token header; the
// comparison is constant-time. An empty configured token leaves the endpoint
// open, which is the default for a probe running inside a trusted pod.
func requireToken(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.AuthToken == "" {
				next.ServeHTTP(w, r)
				return
			}

			token := r.URL.Query().Get("token")
			if token == "" {
				token = r.Header.Get("X-Auth-Token")
			}
			if token == "" {
				hlog.FromRequest(r).Warn().
					Str("path", r.URL.Path).
					Msg("rejected request without token")
				http.Error(w, "Unauthorized: token required", http.StatusUnauthorized)
				return
			}

			if subtle.ConstantTimeCompare([]byte(token), []byte(cfg.AuthToken)) != 1 {
				hlog.FromRequest(r).Warn().
					Str("path", r.URL.Path).
					Msg("rejected request with invalid token")
				http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
