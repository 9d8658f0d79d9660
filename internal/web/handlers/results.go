package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/ourkan95/Duplicate-Detector/internal/engine"
)

// ResultsHandler serves the artifacts of the last run
type ResultsHandler struct {
	Exporter *engine.Exporter
	Config   *Config
}

// TableResponse carries artifact rows keyed by column name
type TableResponse struct {
	Total   int                 `json:"total"`
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
}

// ListCandidates returns combined candidates, optionally filtered by
// min_score and capped by limit
func (h *ResultsHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	table, ok := h.readArtifact(w, engine.CandidatesArtifact)
	if !ok {
		return
	}

	minScore := parseFloatParam(r.URL.Query().Get("min_score"), 0)
	limit := parseIntParam(r.URL.Query().Get("limit"), 0)

	rows := make([]map[string]string, 0, len(table.Rows))
	for _, rec := range table.Records() {
		score, err := strconv.ParseFloat(rec["combined_score"], 64)
		if err != nil || score < minScore {
			continue
		}
		rows = append(rows, rec)
	}
	writeTable(w, table.Header, rows, limit)
}

// ListMismatches returns slug comparison rows; only=true keeps flagged listings
func (h *ResultsHandler) ListMismatches(w http.ResponseWriter, r *http.Request) {
	artifact := engine.MismatchTableArtifact
	if only, _ := strconv.ParseBool(r.URL.Query().Get("only")); only {
		artifact = engine.MismatchesOnlyArtifact
	}

	table, ok := h.readArtifact(w, artifact)
	if !ok {
		return
	}
	writeTable(w, table.Header, table.Records(), parseIntParam(r.URL.Query().Get("limit"), 0))
}

func (h *ResultsHandler) readArtifact(w http.ResponseWriter, artifact string) (engine.Table, bool) {
	path := h.Exporter.Path(artifact)
	table, err := engine.ReadTable(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeError(w, http.StatusNotFound, "no results yet, run detection first")
			return engine.Table{}, false
		}
		log.Error().Err(err).Str("path", path).Msg("failed to read artifact")
		writeError(w, http.StatusInternalServerError, "failed to read results")
		return engine.Table{}, false
	}
	return table, true
}

func writeTable(w http.ResponseWriter, header []string, rows []map[string]string, limit int) {
	total := len(rows)
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	writeJSON(w, http.StatusOK, TableResponse{Total: total, Columns: header, Rows: rows})
}
