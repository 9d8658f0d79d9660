package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ourkan95/Duplicate-Detector/internal/engine"
)

// SlugHandler checks a single name against a deal URL
type SlugHandler struct {
	Checker *engine.SlugChecker
}

// SlugCheckRequest is the body of POST /api/slug-check
type SlugCheckRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// SlugCheckResponse reports the comparison
type SlugCheckResponse struct {
	NameClean  string  `json:"name_clean"`
	SlugClean  string  `json:"slug_clean"`
	Similarity float64 `json:"similarity"`
	IsMismatch bool    `json:"is_mismatch"`
	Threshold  float64 `json:"threshold"`
}

// Check compares the cleaned name with the cleaned URL slug
func (h *SlugHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req SlugCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON request")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	rec, err := h.Checker.Check(r.Context(), req.Name, req.URL)
	if err != nil {
		log.Error().Err(err).Msg("slug check failed")
		writeError(w, http.StatusBadGateway, "embedding provider error")
		return
	}

	writeJSON(w, http.StatusOK, SlugCheckResponse{
		NameClean:  rec.CleanedName,
		SlugClean:  rec.CleanedSlug,
		Similarity: rec.Similarity,
		IsMismatch: rec.IsMismatch,
		Threshold:  h.Checker.Threshold(),
	})
}
