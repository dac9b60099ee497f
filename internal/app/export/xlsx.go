// Package export renders report lists into spreadsheet documents.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/luct/reporting/internal/app/models"
)

// SheetName is the worksheet holding the report rows
const SheetName = "Lecture Reports"

// ContentType is the MIME type of the rendered workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Columns are the header cells, in order
var Columns = []string{
	"Report ID", "Class", "Course", "Lecturer", "Week", "Date",
	"Students Present", "Topic", "Learning Outcomes", "Recommendations",
}

var columnWidths = []float64{10, 18, 32, 24, 12, 12, 16, 36, 40, 40}

// RenderReports writes reports, in the given order, to an xlsx workbook.
// Callers pass an already authorized and ordered list.
func RenderReports(reports []*models.ReportDetails) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(Columns))
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", bold); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}
	for i, w := range columnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetName, col, col, w); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	for i, r := range reports {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			r.ID,
			r.ClassName,
			fmt.Sprintf("%s - %s", r.CourseCode, r.CourseName),
			r.LecturerName,
			r.WeekOfReporting,
			r.DateOfLecture,
			r.ActualStudentsPresent,
			r.TopicTaught,
			r.LearningOutcomes,
			r.LecturerRecommendations,
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write report %d: %w", r.ID, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
