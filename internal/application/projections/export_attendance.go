package projections

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"clubhub/internal/domain/account"
	"clubhub/internal/domain/attendance"
)

const (
	attendanceSheet = "Attendance"
	summarySheet    = "Summary"
)

var attendanceHeaders = []string{
	"Date", "Player", "Event", "Event Type", "Event Date", "Status", "Notes", "Recorded By", "Approved",
}

// AttendanceExport is a rendered spreadsheet ready to download.
type AttendanceExport struct {
	Filename string
	Content  []byte
	Rows     int
}

// QueryExportAttendance renders the filtered attendance report as an .xlsx workbook.
// PRE: ActorRole is a staff role
// POST: Workbook has an Attendance sheet (one row per record) and a Summary sheet
func QueryExportAttendance(ctx context.Context, q AttendanceQuery, deps GetAttendanceDeps) (AttendanceExport, error) {
	if !account.IsStaff(q.ActorRole) {
		return AttendanceExport{}, account.ErrForbidden
	}
	rows, err := QueryGetPlayerAttendance(ctx, q, deps)
	if err != nil {
		return AttendanceExport{}, err
	}
	stats, err := QueryGetAttendanceStats(ctx, q, deps)
	if err != nil {
		return AttendanceExport{}, err
	}
	content, err := buildAttendanceWorkbook(rows, stats)
	if err != nil {
		return AttendanceExport{}, fmt.Errorf("build workbook: %w", err)
	}
	return AttendanceExport{
		Filename: exportFilename(q),
		Content:  content,
		Rows:     len(rows),
	}, nil
}

func exportFilename(q AttendanceQuery) string {
	name := "attendance"
	if q.PlayerID != "" {
		name += "-" + q.PlayerID
	}
	if q.DateFrom != "" {
		name += "-from-" + q.DateFrom
	}
	if q.DateTo != "" {
		name += "-to-" + q.DateTo
	}
	return name + ".xlsx"
}

func buildAttendanceWorkbook(rows []attendance.Row, stats attendance.Stats) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", attendanceSheet); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	for i, h := range attendanceHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(attendanceSheet, cell, h); err != nil {
			return nil, err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(attendanceHeaders), 1)
	if err := f.SetCellStyle(attendanceSheet, "A1", last, bold); err != nil {
		return nil, err
	}

	for i, r := range rows {
		approved := "No"
		if r.ApprovedBy != "" {
			approved = "Yes"
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []any{
			r.AttendanceDate, r.PlayerName, r.ScheduleTitle, r.EventType, r.EventDate,
			r.Status, r.Notes, r.RecorderName, approved,
		}
		if err := f.SetSheetRow(attendanceSheet, cell, &values); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(attendanceSheet, "A", "I", 16); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	summary := [][]any{
		{"Total", stats.Total},
		{"Present", stats.Present},
		{"Absent", stats.Absent},
		{"Late", stats.Late},
		{"Attendance rate (%)", stats.AttendanceRate},
	}
	for i, line := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &line); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(summarySheet, "A1", fmt.Sprintf("A%d", len(summary)), bold); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
