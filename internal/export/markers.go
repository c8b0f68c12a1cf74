// Package export renders stored analysis artifacts into editor-facing
// formats: a timecoded marker list for the editing timeline and an XLSX
// workbook of the analysis history.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/videoaudit/audit-agent/internal/analysis"
)

// GenerateMarkerList renders an editing timeline as a timecoded marker
// list in EDL-style layout. Steps are emitted in source order; the
// source already orders them by timestamp_seconds ascending.
func GenerateMarkerList(steps []analysis.EditingStep, title string, frameRate float64) string {
	fps := int(math.Round(frameRate))
	if fps <= 0 {
		fps = 30
	}

	isDropFrame := math.Abs(frameRate-29.97) < 0.01 || math.Abs(frameRate-59.94) < 0.01

	lines := []string{fmt.Sprintf("TITLE: %s", title)}
	if isDropFrame {
		lines = append(lines, "FCM: DROP FRAME")
	} else {
		lines = append(lines, "FCM: NON-DROP FRAME")
	}
	lines = append(lines, "")

	for i, step := range steps {
		tc := secondsToTimecode(step.TimestampSeconds, fps)
		lines = append(lines,
			fmt.Sprintf("%03d  %-10s %s", i+1, strings.ToUpper(step.ActionType), tc),
			fmt.Sprintf("* ACTION:  %s", step.TechnicalAction),
			fmt.Sprintf("* REASON:  %s", step.Reason),
		)
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func secondsToTimecode(seconds float64, fps int) string {
	if seconds < 0 {
		seconds = 0
	}
	totalFrames := int(math.Round(seconds * float64(fps)))
	frames := totalFrames % fps
	totalSeconds := totalFrames / fps
	secs := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, secs, frames)
}
