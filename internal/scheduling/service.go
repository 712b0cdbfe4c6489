package scheduling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var (
	ErrPastDate            = errors.New("cannot mark availability for a past date")
	ErrDateHasAppointments = errors.New("date already has appointments")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidDuration     = errors.New("session duration must be greater than zero")
)

type Service struct {
	gw  Gateway
	log *slog.Logger
	now func() time.Time
}

func NewService(gw Gateway, log *slog.Logger) *Service {
	return &Service{
		gw:  gw,
		log: log.With("component", "scheduling"),
		now: time.Now,
	}
}

func (s *Service) AppointmentsByPatient(ctx context.Context, patientID string) ([]Appointment, error) {
	appointments, err := s.gw.AppointmentsByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list appointments for patient %s: %w", patientID, err)
	}
	return appointments, nil
}

func (s *Service) AppointmentsByTherapist(ctx context.Context, therapistID, date string) ([]Appointment, error) {
	appointments, err := s.gw.AppointmentsByTherapist(ctx, therapistID, date)
	if err != nil {
		return nil, fmt.Errorf("list appointments for therapist %s: %w", therapistID, err)
	}
	return appointments, nil
}

func (s *Service) Therapists(ctx context.Context) ([]Therapist, error) {
	therapists, err := s.gw.Therapists(ctx)
	if err != nil {
		return nil, fmt.Errorf("list therapists: %w", err)
	}
	return therapists, nil
}

func (s *Service) Availability(ctx context.Context, therapistID string) ([]AvailabilityEntry, error) {
	entries, err := s.gw.Availability(ctx, therapistID)
	if err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}
	return entries, nil
}

// MarkAvailability declares a therapist reachable on a free day. The date
// must not be in the past and must have no appointments. Both checks run
// against a fresh appointment fetch, which narrows but does not close the
// check-to-use gap; the server enforces the same rule, so a lost race comes
// back as a validation error rather than a bad entry.
func (s *Service) MarkAvailability(ctx context.Context, therapistID, date, notes string) error {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	// Today is the clock's calendar day, not the UTC one; truncating the
	// absolute time shifts the boundary in any non-UTC zone.
	today, _ := time.Parse(DateLayout, s.now().Format(DateLayout))
	if day.Before(today) {
		return ErrPastDate
	}

	appointments, err := s.gw.AppointmentsByTherapist(ctx, therapistID, date)
	if err != nil {
		return fmt.Errorf("check appointments on %s: %w", date, err)
	}
	if len(appointments) > 0 {
		return fmt.Errorf("%w: %s has %d", ErrDateHasAppointments, date, len(appointments))
	}

	entry := AvailabilityEntry{TherapistID: therapistID, Date: date, Notes: notes}
	if err := s.gw.MarkAvailability(ctx, entry); err != nil {
		return fmt.Errorf("mark availability on %s: %w", date, err)
	}

	s.log.InfoContext(ctx, "availability marked", "therapist_id", therapistID, "date", date)
	return nil
}

func (s *Service) RemoveAvailability(ctx context.Context, therapistID, date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	if err := s.gw.RemoveAvailability(ctx, therapistID, date); err != nil {
		return fmt.Errorf("remove availability on %s: %w", date, err)
	}
	return nil
}

// ReportSessionTime records the therapist-reported duration for a session.
// The server compares it against the patient confirmation and owns the
// discrepancy tolerance.
func (s *Service) ReportSessionTime(ctx context.Context, sessionCode string, minutes int) error {
	if minutes <= 0 {
		return ErrInvalidDuration
	}
	if err := s.gw.ReportSessionTime(ctx, sessionCode, minutes); err != nil {
		return fmt.Errorf("report session time for %s: %w", sessionCode, err)
	}
	return nil
}

// ConfirmSessionTime records the patient-confirmed duration for a session.
func (s *Service) ConfirmSessionTime(ctx context.Context, sessionCode string, minutes int) error {
	if minutes <= 0 {
		return ErrInvalidDuration
	}
	if err := s.gw.ConfirmSessionTime(ctx, sessionCode, minutes); err != nil {
		return fmt.Errorf("confirm session time for %s: %w", sessionCode, err)
	}
	return nil
}
