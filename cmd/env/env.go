package env

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/probekit/envprobe/report"
	"github.com/rs/zerolog/log"
)

// Params holds parameters for the env endpoint.
type Params struct {
	Format string `json:"format"` // json or text
}

// Handler serves the environment snapshot captured at startup. It never
// re-reads the process environment, so the HTTP view always matches the
// report printed to stdout.
func Handler(snap *report.Snapshot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := Params{
			Format: "json", // Default format
		}

		// Parse parameters based on method
		if r.Method == http.MethodGet {
			if format := r.URL.Query().Get("format"); format != "" {
				params.Format = format
			}
		} else if r.Method == http.MethodPost {
			decoder := json.NewDecoder(r.Body)
			if err := decoder.Decode(&params); err != nil {
				log.Ctx(r.Context()).Error().Err(err).Msg("failed to decode env request body")
				http.Error(w, "Bad Request: invalid JSON", http.StatusBadRequest)
				return
			}
		}

		// Validate format parameter
		if params.Format != "json" && params.Format != "text" {
			params.Format = "json" // Default to json for invalid values
		}

		if params.Format == "text" {
			renderTextResponse(w, r, snap)
		} else {
			renderJSONResponse(w, r, snap)
		}
	}
}

func renderJSONResponse(w http.ResponseWriter, r *http.Request, snap *report.Snapshot) {
	response := map[string]interface{}{
		"format":                "json",
		"count":                 len(snap.Variables),
		"set":                   snap.SetCount(),
		"working_directory":     snap.WorkingDir,
		"captured_at":           snap.TakenAt,
		"environment_variables": snap.Values(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to encode env response to JSON")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func renderTextResponse(w http.ResponseWriter, r *http.Request, snap *report.Snapshot) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "Watched Environment Variables (%d total, %d set):\n\n", len(snap.Variables), snap.SetCount())
	for _, v := range snap.Variables {
		fmt.Fprintf(w, "%s: %s\n", v.Name, v.Value)
	}
}
