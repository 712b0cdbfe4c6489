package scheduling

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	appointments []Appointment
	availability map[string]AvailabilityEntry
	markCalls    int
	reports      map[string]int
	confirms     map[string]int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		availability: make(map[string]AvailabilityEntry),
		reports:      make(map[string]int),
		confirms:     make(map[string]int),
	}
}

func (f *fakeGateway) AppointmentsByPatient(ctx context.Context, patientID string) ([]Appointment, error) {
	var out []Appointment
	for _, a := range f.appointments {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeGateway) AppointmentsByTherapist(ctx context.Context, therapistID, date string) ([]Appointment, error) {
	var out []Appointment
	for _, a := range f.appointments {
		if a.TherapistID == therapistID && (date == "" || a.Date == date) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeGateway) Therapists(ctx context.Context) ([]Therapist, error) {
	return nil, nil
}

func (f *fakeGateway) Availability(ctx context.Context, therapistID string) ([]AvailabilityEntry, error) {
	var out []AvailabilityEntry
	for _, e := range f.availability {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeGateway) MarkAvailability(ctx context.Context, entry AvailabilityEntry) error {
	f.markCalls++
	f.availability[entry.TherapistID+"|"+entry.Date] = entry
	return nil
}

func (f *fakeGateway) RemoveAvailability(ctx context.Context, therapistID, date string) error {
	delete(f.availability, therapistID+"|"+date)
	return nil
}

func (f *fakeGateway) ReportSessionTime(ctx context.Context, sessionCode string, minutes int) error {
	f.reports[sessionCode] = minutes
	return nil
}

func (f *fakeGateway) ConfirmSessionTime(ctx context.Context, sessionCode string, minutes int) error {
	f.confirms[sessionCode] = minutes
	return nil
}

func newTestService(gw Gateway, now time.Time) *Service {
	svc := NewService(gw, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time { return now }
	return svc
}

var testNow = time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

func TestMarkAvailabilityOnFreeDay(t *testing.T) {
	gw := newFakeGateway()
	svc := newTestService(gw, testNow)

	err := svc.MarkAvailability(context.Background(), "th-1", "2026-09-02", "reachable by phone")
	require.NoError(t, err)
	assert.Equal(t, 1, gw.markCalls)
}

func TestMarkAvailabilityRejectsPastDate(t *testing.T) {
	gw := newFakeGateway()
	svc := newTestService(gw, testNow)

	err := svc.MarkAvailability(context.Background(), "th-1", "2026-08-30", "")
	assert.ErrorIs(t, err, ErrPastDate)
	assert.Zero(t, gw.markCalls, "nothing may be created for a past date")
}

func TestMarkAvailabilityRejectsDateWithAppointments(t *testing.T) {
	gw := newFakeGateway()
	gw.appointments = []Appointment{
		{ID: "appt-1", TherapistID: "th-1", Date: "2026-09-02"},
	}
	svc := newTestService(gw, testNow)

	err := svc.MarkAvailability(context.Background(), "th-1", "2026-09-02", "")
	assert.ErrorIs(t, err, ErrDateHasAppointments)
	assert.Zero(t, gw.markCalls, "no entry may be created when the day is booked")

	// Another therapist's appointment on the same day does not block.
	err = svc.MarkAvailability(context.Background(), "th-2", "2026-09-02", "")
	assert.NoError(t, err)
}

func TestMarkAvailabilityRejectsMalformedDate(t *testing.T) {
	svc := newTestService(newFakeGateway(), testNow)

	err := svc.MarkAvailability(context.Background(), "th-1", "02/09/2026", "")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestMarkAvailabilityUsesClockCalendarDay(t *testing.T) {
	// 20:00 on Aug 30 west of UTC is already Aug 31 in UTC; the local day
	// still counts as today.
	west := time.Date(2026, 8, 30, 20, 0, 0, 0, time.FixedZone("UTC-7", -7*60*60))
	gw := newFakeGateway()
	svc := newTestService(gw, west)

	err := svc.MarkAvailability(context.Background(), "th-1", "2026-08-30", "")
	assert.NoError(t, err)
	assert.Equal(t, 1, gw.markCalls)

	// 01:00 on Aug 31 east of UTC is still Aug 30 in UTC; yesterday stays past.
	east := time.Date(2026, 8, 31, 1, 0, 0, 0, time.FixedZone("UTC+9", 9*60*60))
	svc = newTestService(newFakeGateway(), east)

	err = svc.MarkAvailability(context.Background(), "th-1", "2026-08-30", "")
	assert.ErrorIs(t, err, ErrPastDate)
}

func TestMarkAvailabilityAllowsToday(t *testing.T) {
	gw := newFakeGateway()
	svc := newTestService(gw, testNow)

	err := svc.MarkAvailability(context.Background(), "th-1", "2026-08-31", "")
	assert.NoError(t, err)
}

func TestSessionTimeReporting(t *testing.T) {
	gw := newFakeGateway()
	svc := newTestService(gw, testNow)
	ctx := context.Background()

	require.NoError(t, svc.ReportSessionTime(ctx, "PT-0001", 60))
	require.NoError(t, svc.ConfirmSessionTime(ctx, "PT-0001", 45))
	assert.Equal(t, 60, gw.reports["PT-0001"])
	assert.Equal(t, 45, gw.confirms["PT-0001"])

	err := svc.ReportSessionTime(ctx, "PT-0001", 0)
	assert.ErrorIs(t, err, ErrInvalidDuration)
	err = svc.ConfirmSessionTime(ctx, "PT-0001", -5)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}
