package earnings

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

type SessionState string

const (
	StateIdle                SessionState = "idle"
	StatePatientSelected     SessionState = "patient_selected"
	StateAppointmentSelected SessionState = "appointment_selected"
	StateCalculated          SessionState = "calculated"
	StateApplied             SessionState = "applied"
)

var (
	ErrNoPatientSelected     = errors.New("select a patient first")
	ErrNoAppointmentSelected = errors.New("select an appointment first")
	ErrNotCalculated         = errors.New("calculate a distribution first")
	ErrApplyInFlight         = errors.New("an apply is already in progress")
)

// Session is the calculator's screen-level state machine:
// idle → patient_selected → appointment_selected → calculated → applied.
// Each forward step requires the prior step's data; reselecting upstream
// discards everything downstream. The mutex only guards against a double
// apply (two clicks racing); everything else mirrors a single UI thread.
type Session struct {
	svc *Service

	mu            sync.Mutex
	state         SessionState
	patientID     string
	appointmentID string
	fee           float64
	result        *DistributionResult
	applying      bool
}

func NewSession(svc *Service) *Session {
	return &Session{svc: svc, state: StateIdle}
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) SelectPatient(patientID string) error {
	if patientID == "" {
		return fmt.Errorf("patient id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.patientID = patientID
	s.appointmentID = ""
	s.fee = 0
	s.result = nil
	s.state = StatePatientSelected
	return nil
}

func (s *Session) SelectAppointment(appointmentID string, fee float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.patientID == "" {
		return ErrNoPatientSelected
	}
	if appointmentID == "" {
		return fmt.Errorf("appointment id is required")
	}
	if fee <= 0 {
		return ErrFeeNotPositive
	}

	s.appointmentID = appointmentID
	s.fee = fee
	s.result = nil
	s.state = StateAppointmentSelected
	return nil
}

// Calculate runs the calculation for the selected appointment, using a saved
// config when configID is set or the manual split otherwise.
func (s *Session) Calculate(ctx context.Context, configID string, manual *PercentSplit) (DistributionResult, error) {
	s.mu.Lock()
	if s.appointmentID == "" {
		s.mu.Unlock()
		return DistributionResult{}, ErrNoAppointmentSelected
	}
	input := CalculationInput{
		AppointmentID: s.appointmentID,
		Fee:           s.fee,
		ConfigID:      configID,
		Manual:        manual,
	}
	s.mu.Unlock()

	result, err := s.svc.Calculate(ctx, input)
	if err != nil {
		return DistributionResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A reselection while the request was in flight wins; drop the late result.
	if s.appointmentID != input.AppointmentID {
		return DistributionResult{}, ErrNoAppointmentSelected
	}

	s.result = &result
	s.state = StateCalculated
	return result, nil
}

// Apply persists the calculated result. A second apply, or a click while one
// is still in flight, is rejected.
func (s *Session) Apply(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateApplied {
		s.mu.Unlock()
		return ErrAlreadyApplied
	}
	if s.result == nil {
		s.mu.Unlock()
		return ErrNotCalculated
	}
	if s.applying {
		s.mu.Unlock()
		return ErrApplyInFlight
	}
	s.applying = true
	appointmentID := s.appointmentID
	result := *s.result
	s.mu.Unlock()

	err := s.svc.Apply(ctx, appointmentID, result)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.applying = false
	if err != nil {
		return err
	}
	s.state = StateApplied
	return nil
}

func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.patientID = ""
	s.appointmentID = ""
	s.fee = 0
	s.result = nil
	s.state = StateIdle
}
