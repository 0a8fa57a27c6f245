package env

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/probekit/envprobe/report"
)

func testSnapshot(t *testing.T) *report.Snapshot {
	t.Helper()
	t.Setenv("DEBUG", "true")
	t.Setenv("PORT", "8080")

	snap, err := report.Capture()
	if err != nil {
		t.Fatalf("Failed to capture snapshot: %v", err)
	}
	return snap
}

func TestHandler_GET_JSON(t *testing.T) {
	snap := testSnapshot(t)
	handler := Handler(snap)

	req := httptest.NewRequest(http.MethodGet, "/env?format=json", nil)
	w := httptest.NewRecorder()

	handler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", w.Header().Get("Content-Type"))
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response["format"] != "json" {
		t.Errorf("Expected format 'json', got %v", response["format"])
	}
	if response["count"] != float64(len(report.Watched)) {
		t.Errorf("Expected count %d, got %v", len(report.Watched), response["count"])
	}

	envVars, ok := response["environment_variables"].(map[string]interface{})
	if !ok {
		t.Fatal("Expected environment_variables to be a map")
	}
	if envVars["DEBUG"] != "true" {
		t.Errorf("Expected DEBUG to be 'true', got %v", envVars["DEBUG"])
	}
	if envVars["PORT"] != "8080" {
		t.Errorf("Expected PORT to be '8080', got %v", envVars["PORT"])
	}
}

func TestHandler_GET_Text(t *testing.T) {
	snap := testSnapshot(t)
	handler := Handler(snap)

	req := httptest.NewRequest(http.MethodGet, "/env?format=text", nil)
	w := httptest.NewRecorder()

	handler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	if w.Header().Get("Content-Type") != "text/plain" {
		t.Errorf("Expected Content-Type text/plain, got %s", w.Header().Get("Content-Type"))
	}

	body := w.Body.String()
	if !strings.Contains(body, "DEBUG: true") {
		t.Errorf("Expected body to contain 'DEBUG: true', got: %s", body)
	}
	if !strings.Contains(body, "Watched Environment Variables") {
		t.Errorf("Expected body to contain 'Watched Environment Variables', got: %s", body)
	}
}

func TestHandler_POST_JSON(t *testing.T) {
	snap := testSnapshot(t)
	handler := Handler(snap)

	params := Params{Format: "text"}
	jsonBody, _ := json.Marshal(params)

	req := httptest.NewRequest(http.MethodPost, "/env", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	if w.Header().Get("Content-Type") != "text/plain" {
		t.Errorf("Expected Content-Type text/plain, got %s", w.Header().Get("Content-Type"))
	}
}

func TestHandler_POST_InvalidJSON(t *testing.T) {
	snap := testSnapshot(t)
	handler := Handler(snap)

	req := httptest.NewRequest(http.MethodPost, "/env", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	handler(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestHandler_InvalidFormatFallsBackToJSON(t *testing.T) {
	snap := testSnapshot(t)
	handler := Handler(snap)

	req := httptest.NewRequest(http.MethodGet, "/env?format=xml", nil)
	w := httptest.NewRecorder()

	handler(w, req)

	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Expected fallback to application/json, got %s", w.Header().Get("Content-Type"))
	}
}

func TestHandler_ServesSnapshotNotLiveEnvironment(t *testing.T) {
	t.Setenv("OVERRIDE_TEST", "first")
	snap, err := report.Capture()
	if err != nil {
		t.Fatalf("Failed to capture snapshot: %v", err)
	}
	handler := Handler(snap)

	// Mutate after capture; the endpoint must keep serving the snapshot.
	t.Setenv("OVERRIDE_TEST", "second")

	req := httptest.NewRequest(http.MethodGet, "/env", nil)
	w := httptest.NewRecorder()
	handler(w, req)

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	envVars := response["environment_variables"].(map[string]interface{})
	if envVars["OVERRIDE_TEST"] != "first" {
		t.Errorf("Expected OVERRIDE_TEST 'first' from snapshot, got %v", envVars["OVERRIDE_TEST"])
	}
}
