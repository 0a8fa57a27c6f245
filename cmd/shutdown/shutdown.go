package shutdown

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// TestMode controls whether the handler actually calls os.Exit during tests
var TestMode = false

// Params holds parameters for the shutdown endpoint.
type Params struct {
	Delay int `json:"delay"` // delay in seconds before the process stops
}

// Handler stops the probe after an optional delay. The probe has no state to
// release, so stopping is just exiting with code 0.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		params := Params{
			Delay: 0, // Default: no delay
		}

		// Parse parameters based on method
		if r.Method == http.MethodGet {
			if delayStr := r.URL.Query().Get("delay"); delayStr != "" {
				if d, err := strconv.Atoi(delayStr); err == nil {
					params.Delay = d
				}
			}
		} else if r.Method == http.MethodPost {
			decoder := json.NewDecoder(r.Body)
			if err := decoder.Decode(&params); err != nil {
				log.Ctx(ctx).Error().Err(err).Msg("failed to decode shutdown parameters from JSON body")
				http.Error(w, "Invalid JSON body", http.StatusBadRequest)
				return
			}
		}

		// Validate parameters
		if params.Delay < 0 || params.Delay > 3600 { // Max 1 hour delay
			log.Ctx(ctx).Warn().Int("delay", params.Delay).Msg("invalid delay, defaulting to 0")
			params.Delay = 0
		}

		log.Ctx(ctx).Info().
			Int("delay", params.Delay).
			Msg("shutdown request received")

		// Return response immediately
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"delay":  params.Delay,
			"status": "shutdown scheduled",
		})

		// Schedule shutdown in background
		go func() {
			if params.Delay > 0 {
				log.Info().
					Int("delay", params.Delay).
					Msg("waiting before shutdown")
				time.Sleep(time.Duration(params.Delay) * time.Second)
			}

			log.Info().Msg("stopping probe")

			// Don't actually exit during tests
			if !TestMode {
				os.Exit(0)
			}
		}()
	}
}
