package report

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Watched is the fixed list of environment variables the probe reports on.
// Order is display order.
var Watched = []string{
	"DATABASE_URL",
	"API_KEY",
	"DEBUG",
	"PORT",
	"ENABLE_CACHE",
	"CACHE_TTL",
	"OVERRIDE_TEST",
}

// NotSet is rendered in place of a value for variables absent from the environment.
const NotSet = "<not set>"

// Variable is one watched environment variable as observed at capture time.
type Variable struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Set   bool   `json:"set"`
}

// Snapshot is the one-shot view of the process environment taken at startup.
// It is never re-read and never mutated after Capture returns.
type Snapshot struct {
	WorkingDir string     `json:"working_directory"`
	Variables  []Variable `json:"variables"`
	TakenAt    time.Time  `json:"taken_at"`
}

// Capture reads the working directory and every watched variable exactly once.
// A missing variable is not an error; it is recorded with the NotSet sentinel.
func Capture() (*Snapshot, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}

	snap := &Snapshot{
		WorkingDir: wd,
		Variables:  make([]Variable, 0, len(Watched)),
		TakenAt:    time.Now(),
	}

	for _, name := range Watched {
		v := Variable{Name: name, Value: NotSet}
		if val, ok := os.LookupEnv(name); ok {
			v.Value = val
			v.Set = true
		}
		snap.Variables = append(snap.Variables, v)
	}

	return snap, nil
}

// SetCount returns how many watched variables were present at capture time.
func (s *Snapshot) SetCount() int {
	count := 0
	for _, v := range s.Variables {
		if v.Set {
			count++
		}
	}
	return count
}

// Values returns the display value per variable name (the raw value, or NotSet).
func (s *Snapshot) Values() map[string]string {
	values := make(map[string]string, len(s.Variables))
	for _, v := range s.Variables {
		values[v.Name] = v.Value
	}
	return values
}

// Write renders the report. The byte layout is a compatibility contract with
// operators tailing the output; do not reformat. Each line is an independent
// write, so an interrupted report never leaves a torn line behind.
func (s *Snapshot) Write(w io.Writer) error {
	lines := make([]string, 0, len(s.Variables)+4)
	lines = append(lines,
		"=== Environment Variables Test ===\n",
		fmt.Sprintf("Current working directory: %s\n", s.WorkingDir),
		"\n--- .env variables (should be loaded) ---\n",
	)
	for _, v := range s.Variables {
		lines = append(lines, fmt.Sprintf("%s: %s\n", v.Name, v.Value))
	}
	lines = append(lines, "\n--- Running continuously, press Ctrl+C to stop ---\n")

	for _, line := range lines {
		if _, err := io.WriteString(w, line); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	return nil
}
