package sandbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codekarmatech/healthyphysio-sub004/internal/attendance"
	"github.com/codekarmatech/healthyphysio-sub004/internal/earnings"
	"github.com/codekarmatech/healthyphysio-sub004/internal/scheduling"
)

var storeNow = time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

func newTestStore() *Store {
	store := NewStore(DefaultSettings())
	store.now = func() time.Time { return storeNow }
	return store
}

func addAppointment(store *Store, id, sessionCode, therapistID, date string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.appointments[id] = &scheduling.Appointment{
		ID:            id,
		SessionCode:   sessionCode,
		PatientID:     "pat-1",
		PatientName:   "A Patient",
		TherapistID:   therapistID,
		TherapistName: "A Therapist",
		Date:          date,
		Fee:           1200,
	}
}

func TestApplyIsAtMostOnce(t *testing.T) {
	store := newTestStore()
	addAppointment(store, "appt-1", "PT-0001", "th-1", "2026-08-28")

	result := earnings.DistributionResult{Total: 1200}
	require.NoError(t, store.Apply("appt-1", result))

	err := store.Apply("appt-1", result)
	assert.ErrorIs(t, err, ErrAlreadyApplied)
}

func TestDiscrepancyToleranceBoundary(t *testing.T) {
	store := newTestStore()

	tests := []struct {
		name           string
		therapist      int
		patient        int
		wantDiscrepant bool
	}{
		{"identical reports", 60, 60, false},
		{"within tolerance", 60, 56, false},
		{"exactly at tolerance", 60, 55, false},
		{"one past tolerance", 60, 54, true},
		{"patient reports more", 45, 60, true},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := "PT-10" + string(rune('0'+i))
			addAppointment(store, "appt-"+code, code, "th-1", "2026-08-28")

			require.NoError(t, store.RecordSessionTime(code, tt.therapist, true))
			require.NoError(t, store.RecordSessionTime(code, tt.patient, false))

			found := false
			for _, d := range store.Discrepancies() {
				if d.AppointmentSessionCode == code {
					found = true
					assert.Positive(t, d.DiscrepancyMinutes,
						"a zero-minute discrepancy must never surface")
				}
			}
			assert.Equal(t, tt.wantDiscrepant, found)
		})
	}
}

func TestRecordSessionTimeSingleSidedCreatesNothing(t *testing.T) {
	store := newTestStore()
	addAppointment(store, "appt-1", "PT-0001", "th-1", "2026-08-28")

	require.NoError(t, store.RecordSessionTime("PT-0001", 60, true))
	assert.Empty(t, store.Discrepancies(), "one-sided reports cannot be discrepant")
}

func TestMarkAvailabilityRules(t *testing.T) {
	store := newTestStore()
	addAppointment(store, "appt-1", "PT-0001", "th-1", "2026-09-02")

	err := store.MarkAvailability(scheduling.AvailabilityEntry{TherapistID: "th-1", Date: "2026-09-02"})
	assert.ErrorIs(t, err, ErrDateHasAppointments)

	err = store.MarkAvailability(scheduling.AvailabilityEntry{TherapistID: "th-1", Date: "2026-08-20"})
	assert.ErrorIs(t, err, ErrPastDate)

	require.NoError(t, store.MarkAvailability(scheduling.AvailabilityEntry{TherapistID: "th-1", Date: "2026-09-03"}))
	assert.Len(t, store.Availability("th-1"), 1)

	// Another therapist is free to mark the booked day.
	require.NoError(t, store.MarkAvailability(scheduling.AvailabilityEntry{TherapistID: "th-2", Date: "2026-09-02"}))
}

func TestMarkAvailabilityUsesClockCalendarDay(t *testing.T) {
	store := newTestStore()

	// 20:00 on Aug 30 west of UTC is already Aug 31 in UTC; the local day
	// still counts as today.
	store.now = func() time.Time {
		return time.Date(2026, 8, 30, 20, 0, 0, 0, time.FixedZone("UTC-7", -7*60*60))
	}
	require.NoError(t, store.MarkAvailability(scheduling.AvailabilityEntry{TherapistID: "th-1", Date: "2026-08-30"}))

	// 01:00 on Aug 31 east of UTC is still Aug 30 in UTC; yesterday stays past.
	store.now = func() time.Time {
		return time.Date(2026, 8, 31, 1, 0, 0, 0, time.FixedZone("UTC+9", 9*60*60))
	}
	err := store.MarkAvailability(scheduling.AvailabilityEntry{TherapistID: "th-2", Date: "2026-08-30"})
	assert.ErrorIs(t, err, ErrPastDate)
}

func TestApproveChangeRequestMutatesRecord(t *testing.T) {
	store := newTestStore()

	record, err := store.SubmitRecord(attendance.SubmitInput{
		TherapistID: "th-1",
		Date:        "2026-08-27",
		Status:      attendance.StatusAbsent,
	})
	require.NoError(t, err)

	cr, err := store.CreateChangeRequest(attendance.ChangeInput{
		TherapistID:     "th-1",
		AttendanceDate:  "2026-08-27",
		RequestedStatus: attendance.StatusHalfDay,
		Reason:          "worked the morning",
	})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusAbsent, cr.CurrentStatus)

	require.NoError(t, store.ApproveChangeRequest(cr.ID))

	store.mu.Lock()
	got := store.records[record.ID].Status
	store.mu.Unlock()
	assert.Equal(t, attendance.StatusHalfDay, got, "approval must rewrite the underlying record")

	err = store.ApproveChangeRequest(cr.ID)
	assert.ErrorIs(t, err, ErrAlreadyDecided)
}

func TestRejectionsRequireReasons(t *testing.T) {
	store := newTestStore()

	leave, err := store.CreateLeave(attendance.LeaveInput{
		TherapistID: "th-1",
		LeaveType:   "sick_leave",
		StartDate:   "2026-09-01",
		EndDate:     "2026-09-02",
		Reason:      "flu",
	})
	require.NoError(t, err)

	assert.ErrorIs(t, store.RejectLeave(leave.ID, "  "), ErrReasonRequired)
	require.NoError(t, store.RejectLeave(leave.ID, "coverage gap that week"))

	leaves := store.Leaves(attendance.RequestRejected)
	require.Len(t, leaves, 1)
	assert.Equal(t, "coverage gap that week", leaves[0].RejectReason)
}

func TestRejectChangeRequestKeepsOriginalReason(t *testing.T) {
	store := newTestStore()

	_, err := store.SubmitRecord(attendance.SubmitInput{
		TherapistID: "th-1", Date: "2026-08-27", Status: attendance.StatusAbsent,
	})
	require.NoError(t, err)

	cr, err := store.CreateChangeRequest(attendance.ChangeInput{
		TherapistID:     "th-1",
		AttendanceDate:  "2026-08-27",
		RequestedStatus: attendance.StatusHalfDay,
		Reason:          "worked the morning",
	})
	require.NoError(t, err)

	assert.ErrorIs(t, store.RejectChangeRequest(cr.ID, ""), ErrReasonRequired)
	require.NoError(t, store.RejectChangeRequest(cr.ID, "no coverage evidence"))

	rejected := store.ChangeRequests(attendance.RequestRejected)
	require.Len(t, rejected, 1)
	assert.Equal(t, "worked the morning", rejected[0].Reason,
		"the therapist's justification must survive the decision")
	assert.Equal(t, "no coverage evidence", rejected[0].RejectReason)
}

func TestDuplicateAttendanceSubmission(t *testing.T) {
	store := newTestStore()

	_, err := store.SubmitRecord(attendance.SubmitInput{
		TherapistID: "th-1", Date: "2026-08-27", Status: attendance.StatusPresent,
	})
	require.NoError(t, err)

	_, err = store.SubmitRecord(attendance.SubmitInput{
		TherapistID: "th-1", Date: "2026-08-27", Status: attendance.StatusHalfDay,
	})
	assert.ErrorIs(t, err, ErrDuplicateRecord)
}

func TestSeedPopulatesQueues(t *testing.T) {
	store := newTestStore()
	Seed(store, 7)

	assert.True(t, store.Seeded())
	assert.NotEmpty(t, store.PendingRecords())
	assert.NotEmpty(t, store.ChangeRequests(attendance.RequestPending))
	assert.NotEmpty(t, store.Leaves(attendance.RequestPending))
	assert.NotEmpty(t, store.Configs())
	for _, d := range store.Discrepancies() {
		assert.Greater(t, d.DiscrepancyMinutes, store.Settings().DiscrepancyToleranceMinutes)
	}
}

func TestSummariesAggregateAppliedDistributions(t *testing.T) {
	store := newTestStore()
	addAppointment(store, "appt-1", "PT-0001", "th-1", "2026-08-25")
	addAppointment(store, "appt-2", "PT-0002", "th-1", "2026-08-26")

	result, err := store.Calculate(earnings.CalculationInput{
		AppointmentID: "appt-1",
		Fee:           1200,
		Manual: &earnings.PercentSplit{
			AdminPct: 34.36, TherapistPct: 38.66, DoctorPct: 26.98, PlatformFeePct: 3,
		},
	})
	require.NoError(t, err)

	require.NoError(t, store.Apply("appt-1", result))
	require.NoError(t, store.Apply("appt-2", result))

	summaries := store.Summaries("", "")
	require.Len(t, summaries, 1)
	assert.Equal(t, 2, summaries[0].Sessions)
	assert.Equal(t, 2400.0, summaries[0].GrossFees)
	assert.Equal(t, 900.0, summaries[0].TherapistTotal)

	// The period bounds are inclusive appointment dates.
	scoped := store.Summaries("2026-08-26", "2026-08-26")
	require.Len(t, scoped, 1)
	assert.Equal(t, 1, scoped[0].Sessions)
	assert.Equal(t, 1200.0, scoped[0].GrossFees)

	assert.Empty(t, store.Summaries("2026-09-01", ""))
	assert.Empty(t, store.Summaries("", "2026-08-24"))
}
