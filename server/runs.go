package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/hairizuan-noorazman/ui-bdd/logger"
	"github.com/hairizuan-noorazman/ui-bdd/runhistory"
	"github.com/hairizuan-noorazman/ui-bdd/storage"
)

// RunHandler exposes the scenario run history.
type RunHandler struct {
	runs   runhistory.Store
	assets runhistory.AssetStore
	blobs  storage.BlobStorage
	logger logger.Logger
}

// NewRunHandler creates a new run handler. blobs may be nil, in which case
// asset downloads answer 404.
func NewRunHandler(runs runhistory.Store, assets runhistory.AssetStore, blobs storage.BlobStorage, log logger.Logger) *RunHandler {
	return &RunHandler{
		runs:   runs,
		assets: assets,
		blobs:  blobs,
		logger: log,
	}
}

// RunResponse is a run with its assets.
type RunResponse struct {
	*runhistory.ScenarioRun
	Assets []*runhistory.RunAsset `json:"assets"`
}

// List handles listing recent runs, optionally filtered by status.
func (h *RunHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r, 20)

	status := runhistory.Status(r.URL.Query().Get("status"))
	if status != "" && !status.IsValid() {
		respondError(w, http.StatusBadRequest, "invalid status")
		return
	}

	runs, err := h.runs.ListRecent(r.Context(), runhistory.ListFilter{
		Status: status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.logger.Error(r.Context(), "failed to list runs", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	respondJSON(w, http.StatusOK, NewPaginatedResponse(runs, len(runs), limit, offset))
}

// GetByID handles getting a single run and its assets.
func (h *RunHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDOrRespond(w, r, "id", "run")
	if !ok {
		return
	}

	run, err := h.runs.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, runhistory.ErrRunNotFound) {
			respondError(w, http.StatusNotFound, "run not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get run")
		return
	}

	assets, err := h.assets.ListByRun(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list run assets")
		return
	}

	respondJSON(w, http.StatusOK, RunResponse{ScenarioRun: run, Assets: assets})
}

// GetAsset streams an archived asset of a run, usually a screenshot.
func (h *RunHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	runID, ok := parseUUIDOrRespond(w, r, "id", "run")
	if !ok {
		return
	}
	assetID, ok := parseUUIDOrRespond(w, r, "assetID", "asset")
	if !ok {
		return
	}
	if h.blobs == nil {
		respondError(w, http.StatusNotFound, "artifact storage is disabled")
		return
	}

	asset, err := h.assets.GetByID(r.Context(), assetID)
	if err != nil {
		if errors.Is(err, runhistory.ErrAssetNotFound) {
			respondError(w, http.StatusNotFound, "asset not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get asset")
		return
	}
	if asset.RunID != runID {
		respondError(w, http.StatusNotFound, "asset not found")
		return
	}

	body, err := h.blobs.Download(r.Context(), asset.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			respondError(w, http.StatusNotFound, "asset file not found")
			return
		}
		h.logger.Error(r.Context(), "failed to download asset", map[string]interface{}{
			"error":    err.Error(),
			"asset_id": asset.ID,
			"key":      asset.StorageKey,
		})
		respondError(w, http.StatusInternalServerError, "failed to download asset")
		return
	}
	defer body.Close()

	contentType := asset.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", asset.FileName))
	if asset.FileSize > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(asset.FileSize, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn(r.Context(), "failed to stream asset", map[string]interface{}{
			"error":    err.Error(),
			"asset_id": asset.ID,
		})
	}
}
