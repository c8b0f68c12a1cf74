package api

import (
	"time"

	"github.com/videoaudit/audit-agent/internal/analysis"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	UptimeS  int64  `json:"uptime_s"`
	DeviceID string `json:"device_id"`
}

type ArtifactResponse struct {
	VideoID         string                    `json:"video_id"`
	VideoURL        string                    `json:"video_url,omitempty"`
	RawAnalysis     string                    `json:"raw_analysis"`
	Recommendations []analysis.Recommendation `json:"recommendations"`
	RetentionScore  *int                      `json:"retention_score,omitempty"`
	FinalStatus     string                    `json:"final_status,omitempty"`
	EditingTimeline []analysis.EditingStep    `json:"editing_timeline"`
	Degraded        bool                      `json:"degraded"`
	ParseDegraded   bool                      `json:"parse_degraded,omitempty"`
	CreatedAt       string                    `json:"created_at"`
}

type HistoryResponse struct {
	IDs   []string `json:"ids"`
	Count int      `json:"count"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func ArtifactToResponse(a *analysis.Artifact) ArtifactResponse {
	return ArtifactResponse{
		VideoID:         a.VideoID,
		VideoURL:        a.VideoURL,
		RawAnalysis:     a.RawAnalysis,
		Recommendations: a.Recommendations,
		RetentionScore:  a.RetentionScore,
		FinalStatus:     a.FinalStatus,
		EditingTimeline: a.EditingTimeline,
		Degraded:        a.Degraded,
		ParseDegraded:   a.ParseDegraded,
		CreatedAt:       a.CreatedAt.UTC().Format(time.RFC3339),
	}
}
