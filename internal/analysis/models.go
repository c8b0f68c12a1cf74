// Package analysis implements the upload and analysis orchestration core:
// typed domain objects, the recommendation parser, the offline fallback
// synthesizer, the artifact repository and the submission orchestrator.
package analysis

import (
	"time"

	"github.com/google/uuid"
)

const (
	RecTypeHook     = "hook"
	RecTypeLighting = "lighting"
	RecTypeCTA      = "cta"
	RecTypeAudio    = "audio"

	// RecTypeGeneral is the coercion bucket for unrecognized types.
	RecTypeGeneral = "general"

	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"

	StatusReady         = "ready"
	StatusChangesNeeded = "changes_needed"

	ActionZoom       = "zoom"
	ActionCut        = "cut"
	ActionColor      = "color"
	ActionAudio      = "audio"
	ActionText       = "text"
	ActionTransition = "transition"

	// TempIDPrefix marks client-issued ids so they are never confused
	// with ids issued by the analysis service.
	TempIDPrefix = "temp-"
)

var recTypes = map[string]bool{
	RecTypeHook:     true,
	RecTypeLighting: true,
	RecTypeCTA:      true,
	RecTypeAudio:    true,
}

var priorities = map[string]bool{
	PriorityHigh:   true,
	PriorityMedium: true,
	PriorityLow:    true,
}

var actionTypes = map[string]bool{
	ActionZoom:       true,
	ActionCut:        true,
	ActionColor:      true,
	ActionAudio:      true,
	ActionText:       true,
	ActionTransition: true,
}

// Recommendation is one actionable insight tied optionally to a point in
// the video. Ordering within an artifact is the source payload order,
// treated as relevance order.
type Recommendation struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	Timestamp   *float64 `json:"timestamp,omitempty"`
}

// EditingStep is one instruction in the technical editing timeline,
// ordered by TimestampSeconds ascending as emitted by the source.
type EditingStep struct {
	Timestamp        string  `json:"timestamp"`
	TimestampSeconds float64 `json:"timestamp_seconds"`
	ActionType       string  `json:"action_type"`
	TechnicalAction  string  `json:"technical_action"`
	Reason           string  `json:"reason"`
}

// Artifact is the full durable result for one analyzed video. It is
// created exactly once per completed submission and immutable once
// written; a corrected re-submission produces a new artifact under a
// new id.
type Artifact struct {
	VideoID         string           `json:"video_id"`
	VideoURL        string           `json:"video_url,omitempty"`
	RawAnalysis     string           `json:"raw_analysis"`
	Recommendations []Recommendation `json:"recommendations"`
	RetentionScore  *int             `json:"retention_score,omitempty"`
	FinalStatus     string           `json:"final_status,omitempty"`
	EditingTimeline []EditingStep    `json:"editing_timeline"`
	Degraded        bool             `json:"degraded"`
	ParseDegraded   bool             `json:"parse_degraded,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// NewTempID issues a fresh client-side id with the temporary prefix.
func NewTempID() string {
	return TempIDPrefix + uuid.NewString()
}

// IsTempID reports whether id was issued client-side.
func IsTempID(id string) bool {
	return len(id) > len(TempIDPrefix) && id[:len(TempIDPrefix)] == TempIDPrefix
}

// StatusForScore derives the publish verdict from a retention score.
// The threshold is the single source of truth for the ready boundary.
func StatusForScore(score, threshold int) string {
	if score >= threshold {
		return StatusReady
	}
	return StatusChangesNeeded
}
