package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"

	"github.com/ourkan95/Duplicate-Detector/internal/engine"
)

// ExportHandler serves artifact files for download
type ExportHandler struct {
	Exporter *engine.Exporter
	Config   *Config
}

var downloadable = map[string]bool{
	engine.CandidatesArtifact:     true,
	engine.MismatchTableArtifact:  true,
	engine.MismatchesOnlyArtifact: true,
}

// Download streams one artifact file named by the {artifact} route variable
func (h *ExportHandler) Download(w http.ResponseWriter, r *http.Request) {
	if !h.Config.Features.ExportEnabled {
		writeError(w, http.StatusForbidden, "Export feature disabled")
		return
	}

	artifact := mux.Vars(r)["artifact"]
	if !downloadable[artifact] {
		writeError(w, http.StatusNotFound, "unknown artifact")
		return
	}

	path := h.Exporter.Path(artifact)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeError(w, http.StatusNotFound, "no results yet, run detection first")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to read results")
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename="+filepath.Base(path))
	http.ServeFile(w, r, path)
}
