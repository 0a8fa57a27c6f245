package info

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/probekit/envprobe/cmd"
	"github.com/probekit/envprobe/heartbeat"
	"github.com/probekit/envprobe/report"
	"github.com/rs/zerolog/log"
)

// Info holds application, process and probe state information.
type Info struct {
	Application struct {
		Version   string `json:"version"`
		BuildDate string `json:"build_date"`
		GoVersion string `json:"go_version"`
		GitCommit string `json:"git_commit"`
	} `json:"application"`
	Process struct {
		Pid        int       `json:"pid"`
		StartTime  time.Time `json:"start_time"`
		Uptime     string    `json:"uptime"`
		OS         string    `json:"os"`
		Arch       string    `json:"arch"`
		WorkingDir string    `json:"working_directory"`
	} `json:"process"`
	Probe struct {
		WatchedVariables int       `json:"watched_variables"`
		SetVariables     int       `json:"set_variables"`
		CapturedAt       time.Time `json:"captured_at"`
		Heartbeats       uint64    `json:"heartbeats"`
	} `json:"probe"`
}

var startTime = time.Now()

// Handler returns application, process and probe information as JSON.
func Handler(snap *report.Snapshot, beat *heartbeat.Beater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info := Info{}

		// Application Info
		build := cmd.CurrentBuild()
		info.Application.Version = build.Version
		info.Application.BuildDate = build.BuildDate
		info.Application.GoVersion = build.GoVersion
		info.Application.GitCommit = build.GitCommit

		// Process Info
		info.Process.Pid = os.Getpid()
		info.Process.StartTime = startTime
		info.Process.Uptime = formatUptime(time.Since(startTime))
		info.Process.OS = runtime.GOOS
		info.Process.Arch = runtime.GOARCH
		info.Process.WorkingDir = snap.WorkingDir

		// Probe Info
		info.Probe.WatchedVariables = len(snap.Variables)
		info.Probe.SetVariables = snap.SetCount()
		info.Probe.CapturedAt = snap.TakenAt
		info.Probe.Heartbeats = beat.Count()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(info); err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("failed to encode info to JSON")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
	}
}

// formatUptime converts a duration to a human-readable uptime string
func formatUptime(duration time.Duration) string {
	totalSeconds := int(duration.Seconds())

	if totalSeconds < 60 {
		return fmt.Sprintf("%ds", totalSeconds)
	}

	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}

	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
