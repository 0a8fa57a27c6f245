package cmd

import (
	"encoding/json"
	"net/http"
	"runtime"
)

// Build metadata, injected via -ldflags at release time.
var (
	Version   = "development"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// BuildInfo identifies the probe binary answering a request.
type BuildInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	BuildDate string `json:"build_date"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
}

// CurrentBuild returns the metadata this binary was compiled with.
func CurrentBuild() BuildInfo {
	return BuildInfo{
		Name:      "envprobe",
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
	}
}

// VersionHandler reports which build of the probe is running.
func VersionHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(CurrentBuild()); err != nil {
		http.Error(w, "Failed to encode build information", http.StatusInternalServerError)
	}
}
