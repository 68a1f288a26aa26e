// Package handlers implements the HTTP handlers of the proof API.
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/kozaktomas/wallproof/internal/database"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// HealthCheck handles the health check endpoint. It stays 200 without a
// database so the process can be probed while storage is down.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	storage := "unavailable"
	if database.IsInitialized() {
		storage = "ready"
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"storage": storage,
	})
}
