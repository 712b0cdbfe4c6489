package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/codekarmatech/healthyphysio-sub004/internal/attendance"
	"github.com/codekarmatech/healthyphysio-sub004/internal/earnings"
)

func WriteAttendanceXLSX(w io.Writer, records []attendance.AttendanceRecord) error {
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, []any{r.ID, r.TherapistID, r.Date, string(r.Status),
			r.SubmittedAt.Format("2006-01-02 15:04"), r.Notes, r.ApprovedBy})
	}
	return writeSheet(w, "Attendance", attendanceHeader, rows)
}

func WriteEarningsXLSX(w io.Writer, summaries []earnings.EarningsSummary) error {
	rows := make([][]any, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []any{s.TherapistID, s.TherapistName, s.Sessions,
			s.GrossFees, s.TherapistTotal, s.AdminTotal, s.DoctorTotal, s.PlatformTotal})
	}
	return writeSheet(w, "Earnings", earningsHeader, rows)
}

func WriteDiscrepanciesXLSX(w io.Writer, items []attendance.SessionTimeDiscrepancy) error {
	rows := make([][]any, 0, len(items))
	for _, d := range items {
		rows = append(rows, []any{d.ID, d.AppointmentSessionCode, d.Date,
			d.TherapistDurationMin, d.PatientConfirmedDurMin, d.DiscrepancyMinutes,
			d.TherapistName, d.PatientName, d.Resolved, d.ResolutionNotes})
	}
	return writeSheet(w, "Discrepancies", discrepancyHeader, rows)
}

func writeSheet(w io.Writer, sheet string, header []string, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("locate row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
