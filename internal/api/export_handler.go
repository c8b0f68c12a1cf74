package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/videoaudit/audit-agent/internal/export"
)

func markersHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "video id required", "BAD_REQUEST")
			return
		}

		artifact, err := cfg.Orchestrator.GetArtifact(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if artifact == nil {
			WriteError(w, http.StatusNotFound, "analysis not found", "NOT_FOUND")
			return
		}
		if len(artifact.EditingTimeline) == 0 {
			WriteError(w, http.StatusUnprocessableEntity, "analysis has no editing timeline", "NO_TIMELINE")
			return
		}

		frameRate := 30.0
		if raw := r.URL.Query().Get("frame_rate"); raw != "" {
			parsed, err := strconv.ParseFloat(raw, 64)
			if err != nil || parsed <= 0 {
				WriteError(w, http.StatusBadRequest, "frame_rate must be a positive number", "BAD_REQUEST")
				return
			}
			frameRate = parsed
		}

		title := export.SanitizeName(artifact.VideoID, 120)
		if title == "" {
			title = "audit_markers"
		}

		markers := export.GenerateMarkerList(artifact.EditingTimeline, title, frameRate)

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", title+".txt"))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(markers))
	}
}

func exportHistoryHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				WriteError(w, http.StatusBadRequest, "limit must be a non-negative integer", "BAD_REQUEST")
				return
			}
			limit = parsed
		}

		artifacts, err := cfg.Repository.ListArtifacts(r.Context(), limit)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to load artifacts", "INTERNAL_ERROR")
			return
		}

		workbook, err := export.WriteHistoryWorkbook(artifacts)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to build workbook", "INTERNAL_ERROR")
			return
		}
		defer workbook.Close()

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="audit_history.xlsx"`)
		w.WriteHeader(http.StatusOK)
		if _, err := workbook.WriteTo(w); err != nil {
			cfg.Logger.Error("failed to stream workbook", "error", err)
		}
	}
}
