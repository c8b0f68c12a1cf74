// Package stats computes the creator evolution summary over stored
// analysis artifacts: score trend, most-improved category and a short
// insight sentence for the dashboard.
package stats

import (
	"fmt"
	"time"

	"github.com/videoaudit/audit-agent/internal/analysis"
	"github.com/videoaudit/audit-agent/internal/config"
)

// WindowSize is how many recent analyses feed the summary.
const WindowSize = 10

type Entry struct {
	VideoID        string `json:"video_id"`
	Date           string `json:"date"`
	RetentionScore *int   `json:"retention_score,omitempty"`
	FinalStatus    string `json:"final_status,omitempty"`
	Degraded       bool   `json:"degraded"`
}

type BestCategory struct {
	Category    string `json:"category"`
	Label       string `json:"label"`
	Improvement int    `json:"improvement"`
}

type Summary struct {
	Analyses     []Entry       `json:"analyses"`
	Insight      string        `json:"ai_insight"`
	BestCategory *BestCategory `json:"best_category,omitempty"`
	TotalVideos  int           `json:"total_videos"`
}

var categoryLabels = map[string]string{
	analysis.RecTypeHook:     "Hook Master",
	analysis.RecTypeLighting: "Lighting Master",
	analysis.RecTypeAudio:    "Audio Master",
	analysis.RecTypeCTA:      "Conversion Master",
}

// Summarize builds the evolution summary from recent artifacts, given
// newest-first as the repository returns them; the chart and trend are
// computed oldest-first. total is the all-time artifact count.
func Summarize(recent []*analysis.Artifact, total int, scoring config.Scoring) Summary {
	if len(recent) == 0 {
		return Summary{
			Analyses:    []Entry{},
			Insight:     "Upload your first video to start seeing your evolution.",
			TotalVideos: total,
		}
	}

	window := recent
	if len(window) > WindowSize {
		window = window[:WindowSize]
	}

	// oldest first
	ordered := make([]*analysis.Artifact, len(window))
	for i, a := range window {
		ordered[len(window)-1-i] = a
	}

	entries := make([]Entry, len(ordered))
	for i, a := range ordered {
		entries[i] = Entry{
			VideoID:        a.VideoID,
			Date:           a.CreatedAt.UTC().Format(time.RFC3339),
			RetentionScore: a.RetentionScore,
			FinalStatus:    a.FinalStatus,
			Degraded:       a.Degraded,
		}
	}

	return Summary{
		Analyses:     entries,
		Insight:      insight(ordered),
		BestCategory: bestCategory(ordered, scoring),
		TotalVideos:  total,
	}
}

// bestCategory finds the recommendation category whose priority weight
// dropped the most between the oldest and newest occurrence. A falling
// weight means the feedback got less urgent, i.e. the creator improved.
func bestCategory(ordered []*analysis.Artifact, scoring config.Scoring) *BestCategory {
	if len(ordered) < 2 {
		return nil
	}

	weights := map[string][]int{}
	for _, a := range ordered {
		for _, rec := range a.Recommendations {
			if _, tracked := categoryLabels[rec.Type]; !tracked {
				continue
			}
			weights[rec.Type] = append(weights[rec.Type], analysis.PriorityWeight(scoring, rec.Priority))
		}
	}

	best := ""
	bestDelta := 0
	// fixed visit order keeps ties deterministic
	for _, cat := range []string{analysis.RecTypeHook, analysis.RecTypeLighting, analysis.RecTypeAudio, analysis.RecTypeCTA} {
		series := weights[cat]
		if len(series) < 2 {
			continue
		}
		delta := series[0] - series[len(series)-1]
		if best == "" || delta > bestDelta {
			best = cat
			bestDelta = delta
		}
	}

	if best == "" {
		return nil
	}
	return &BestCategory{Category: best, Label: categoryLabels[best], Improvement: bestDelta}
}

func insight(ordered []*analysis.Artifact) string {
	scores := []int{}
	for _, a := range ordered {
		if a.RetentionScore != nil {
			scores = append(scores, *a.RetentionScore)
		}
	}

	if len(scores) < 2 {
		return "Upload more videos to start seeing your evolution."
	}

	improvement := scores[len(scores)-1] - scores[0]
	if improvement > 0 {
		return fmt.Sprintf("Great work! You improved %d points over your last %d videos. Keep the pace.", improvement, len(scores))
	}
	return fmt.Sprintf("Review your last %d videos and you will find patterns to keep growing.", len(scores))
}
