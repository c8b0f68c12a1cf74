package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/videoaudit/audit-agent/internal/analysis"
)

const historySheet = "History"

// WriteHistoryWorkbook builds an XLSX workbook of the analysis history,
// one row per artifact, newest first as provided.
func WriteHistoryWorkbook(artifacts []*analysis.Artifact) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headers := []string{"Video ID", "Created", "Retention Score", "Status", "Degraded", "Recommendations", "Timeline Steps"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(historySheet, cell, h); err != nil {
			return nil, err
		}
	}

	for row, a := range artifacts {
		values := []any{
			a.VideoID,
			a.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			scoreCell(a.RetentionScore),
			a.FinalStatus,
			a.Degraded,
			len(a.Recommendations),
			len(a.EditingTimeline),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(historySheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}

func scoreCell(score *int) any {
	if score == nil {
		return ""
	}
	return *score
}
