package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/videoaudit/audit-agent/internal/analysis"
	"github.com/videoaudit/audit-agent/internal/config"
	"github.com/videoaudit/audit-agent/internal/stats"
	"github.com/videoaudit/audit-agent/internal/validation"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Post("/analyses", submitHandler(cfg))
		r.Get("/analyses", listHistoryHandler(cfg))
		r.Get("/analyses/export", exportHistoryHandler(cfg))
		r.Get("/analyses/{id}", getArtifactHandler(cfg))
		r.Delete("/analyses/{id}", deleteArtifactHandler(cfg))
		r.Get("/analyses/{id}/markers", markersHandler(cfg))
		r.Get("/stats", statsHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:   "ok",
			Version:  config.Version,
			UptimeS:  uptime,
			DeviceID: cfg.DeviceID,
		})
	}
}

func submitHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, validation.MaxFileSize+(1<<20))

		file, header, err := r.FormFile("file")
		if err != nil {
			WriteError(w, http.StatusBadRequest, "multipart field 'file' is required", "BAD_REQUEST")
			return
		}
		defer file.Close()

		artifact, err := cfg.Orchestrator.Submit(r.Context(), analysis.Upload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Data:        file,
		})
		if err != nil {
			writeSubmitError(w, err)
			return
		}

		WriteJSON(w, http.StatusCreated, ArtifactToResponse(artifact))
	}
}

func writeSubmitError(w http.ResponseWriter, err error) {
	var inputErr *analysis.InputError
	if errors.As(err, &inputErr) {
		WriteError(w, http.StatusBadRequest, inputErr.Error(), "INVALID_INPUT")
		return
	}

	var svcErr *analysis.ServiceError
	if errors.As(err, &svcErr) {
		WriteError(w, http.StatusBadGateway, svcErr.Error(), "ANALYSIS_SERVICE_ERROR")
		return
	}

	if errors.Is(err, analysis.ErrSuperseded) {
		WriteError(w, http.StatusConflict, err.Error(), "SUPERSEDED")
		return
	}

	WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
}

func getArtifactHandler(cfg ServerConfig) http.HandlerFunc {
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

		WriteJSON(w, http.StatusOK, ArtifactToResponse(artifact))
	}
}

func listHistoryHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := cfg.Orchestrator.ListHistory(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list history", "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusOK, HistoryResponse{IDs: ids, Count: len(ids)})
	}
}

func deleteArtifactHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "video id required", "BAD_REQUEST")
			return
		}

		if err := cfg.Orchestrator.DeleteArtifact(r.Context(), id); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func statsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recent, err := cfg.Repository.ListArtifacts(r.Context(), stats.WindowSize)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to load artifacts", "INTERNAL_ERROR")
			return
		}

		total, err := cfg.Repository.CountArtifacts(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to count artifacts", "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusOK, stats.Summarize(recent, total, cfg.Scoring))
	}
}
