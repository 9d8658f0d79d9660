package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/ourkan95/Duplicate-Detector/internal/db"
)

// Config represents the handler feature switches (copied from web.Config to avoid an import cycle)
type Config struct {
	Features struct {
		ExportEnabled bool `json:"export_enabled"`
	} `json:"features"`
}

// ErrorResponse is the JSON body of every error reply
type ErrorResponse struct {
	Error string `json:"error"`
}

// APIHandler handles health and run history endpoints
type APIHandler struct {
	Store  *db.Store // nil when the database is disabled
	Config *Config
}

// HealthResponse reports service liveness
type HealthResponse struct {
	Status   string `json:"status"`
	Database bool   `json:"database"`
}

// RunsResponse lists stored runs
type RunsResponse struct {
	Runs []db.RunSummary `json:"runs"`
}

// Health reports that the server is up
func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Database: h.Store != nil})
}

// ListRuns returns the most recent stored runs
func (h *APIHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		writeError(w, http.StatusNotFound, "run history requires the database")
		return
	}

	limit := parseIntParam(r.URL.Query().Get("limit"), 20)
	runs, err := h.Store.RecentRuns(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to list runs")
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if runs == nil {
		runs = []db.RunSummary{}
	}
	writeJSON(w, http.StatusOK, RunsResponse{Runs: runs})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warn().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func parseIntParam(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	if val, err := strconv.Atoi(s); err == nil && val > 0 {
		return val
	}
	return defaultVal
}

func parseFloatParam(s string, defaultVal float64) float64 {
	if s == "" {
		return defaultVal
	}
	if val, err := strconv.ParseFloat(s, 64); err == nil {
		return val
	}
	return defaultVal
}
