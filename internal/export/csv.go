// Package export renders report tables as CSV and XLSX. Renderers write to
// an io.Writer; callers own the file handling.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/codekarmatech/healthyphysio-sub004/internal/attendance"
	"github.com/codekarmatech/healthyphysio-sub004/internal/earnings"
)

var attendanceHeader = []string{"ID", "Therapist ID", "Date", "Status", "Submitted At", "Notes", "Approved By"}

func WriteAttendanceCSV(w io.Writer, records []attendance.AttendanceRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(attendanceHeader); err != nil {
		return fmt.Errorf("write attendance header: %w", err)
	}
	for _, r := range records {
		row := []string{r.ID, r.TherapistID, r.Date, string(r.Status),
			r.SubmittedAt.Format("2006-01-02 15:04"), r.Notes, r.ApprovedBy}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write attendance row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

var earningsHeader = []string{"Therapist ID", "Therapist", "Sessions", "Gross Fees",
	"Therapist Total", "Admin Total", "Doctor Total", "Platform Total"}

func WriteEarningsCSV(w io.Writer, summaries []earnings.EarningsSummary) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(earningsHeader); err != nil {
		return fmt.Errorf("write earnings header: %w", err)
	}
	for _, s := range summaries {
		row := []string{s.TherapistID, s.TherapistName, strconv.Itoa(s.Sessions),
			money(s.GrossFees), money(s.TherapistTotal), money(s.AdminTotal),
			money(s.DoctorTotal), money(s.PlatformTotal)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write earnings row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

var discrepancyHeader = []string{"ID", "Session", "Date", "Therapist Minutes",
	"Patient Minutes", "Discrepancy", "Therapist", "Patient", "Resolved", "Resolution Notes"}

func WriteDiscrepanciesCSV(w io.Writer, items []attendance.SessionTimeDiscrepancy) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(discrepancyHeader); err != nil {
		return fmt.Errorf("write discrepancy header: %w", err)
	}
	for _, d := range items {
		row := []string{d.ID, d.AppointmentSessionCode, d.Date,
			strconv.Itoa(d.TherapistDurationMin), strconv.Itoa(d.PatientConfirmedDurMin),
			strconv.Itoa(d.DiscrepancyMinutes), d.TherapistName, d.PatientName,
			strconv.FormatBool(d.Resolved), d.ResolutionNotes}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write discrepancy row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
