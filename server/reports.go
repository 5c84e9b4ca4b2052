package server

import (
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"
	"github.com/hairizuan-noorazman/ui-bdd/logger"
	"github.com/hairizuan-noorazman/ui-bdd/report"
	"github.com/spf13/afero"
)

// ReportHandler lists and serves finalized HTML reports.
type ReportHandler struct {
	reports *report.Manager
	fs      afero.Fs
	logger  logger.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(reports *report.Manager, fs afero.Fs, log logger.Logger) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		fs:      fs,
		logger:  log,
	}
}

// ListReportsResponse represents a list reports response.
type ListReportsResponse struct {
	Reports   []string `json:"reports"`
	Count     int      `json:"count"`
	Retention int      `json:"retention"`
}

// List returns report names newest first.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	names := h.reports.ListAllReports(r.Context())
	respondJSON(w, http.StatusOK, ListReportsResponse{
		Reports:   names,
		Count:     len(names),
		Retention: h.reports.Retention(),
	})
}

// Get serves one report. Only names matching the report pattern are served,
// so nothing else in the directory is reachable.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if !report.IsReportName(name) || filepath.Base(name) != name {
		respondError(w, http.StatusNotFound, "report not found")
		return
	}

	path := filepath.Join(h.reports.Dir(), name)
	file, err := h.fs.Open(path)
	if err != nil {
		respondError(w, http.StatusNotFound, "report not found")
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		h.logger.Error(r.Context(), "failed to stat report", map[string]interface{}{
			"error":  err.Error(),
			"report": name,
		})
		respondError(w, http.StatusInternalServerError, "failed to read report")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeContent(w, r, name, info.ModTime(), file)
}
