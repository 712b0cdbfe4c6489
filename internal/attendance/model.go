package attendance

import "time"

type Status string

const (
	StatusPresent        Status = "present"
	StatusAbsent         Status = "absent"
	StatusHalfDay        Status = "half_day"
	StatusApprovedLeave  Status = "approved_leave"
	StatusSickLeave      Status = "sick_leave"
	StatusEmergencyLeave Status = "emergency_leave"
	StatusAvailable      Status = "available"
	StatusFreeDay        Status = "free_day"
	StatusHoliday        Status = "holiday"
	StatusWeekend        Status = "weekend"
)

// Valid reports whether s is one of the recordable attendance statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusHalfDay, StatusApprovedLeave,
		StatusSickLeave, StatusEmergencyLeave, StatusAvailable,
		StatusFreeDay, StatusHoliday, StatusWeekend:
		return true
	}
	return false
}

// AttendanceRecord is one therapist-day. Created by therapist submission,
// approved by an admin (ApprovedBy set), immutable once approved except via
// a change request.
type AttendanceRecord struct {
	ID          string    `json:"id"`
	TherapistID string    `json:"therapist_id"`
	Date        string    `json:"date"`
	Status      Status    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
	Notes       string    `json:"notes,omitempty"`
	ApprovedBy  string    `json:"approved_by,omitempty"`
}

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// ChangeRequest asks to alter an already-recorded attendance status.
// Approval mutates the underlying record server-side; rejection records the
// reason and leaves the record alone.
type ChangeRequest struct {
	ID              string        `json:"id"`
	TherapistID     string        `json:"therapist_id"`
	AttendanceDate  string        `json:"attendance_date"`
	CurrentStatus   Status        `json:"current_status"`
	RequestedStatus Status        `json:"requested_status"`
	Reason          string        `json:"reason"`
	Status          RequestStatus `json:"status"`
	RejectReason    string        `json:"reject_reason,omitempty"`
}

type LeaveApplication struct {
	ID           string        `json:"id"`
	TherapistID  string        `json:"therapist_id"`
	LeaveType    string        `json:"leave_type"`
	StartDate    string        `json:"start_date"`
	EndDate      string        `json:"end_date"`
	Reason       string        `json:"reason"`
	Status       RequestStatus `json:"status"`
	RejectReason string        `json:"reject_reason,omitempty"`
}

// SessionTimeDiscrepancy is created server-side when the therapist-reported
// and patient-confirmed durations differ beyond the server-owned tolerance.
// Resolution is one-way; there is no re-open.
type SessionTimeDiscrepancy struct {
	ID                      string `json:"id"`
	AppointmentSessionCode  string `json:"appointment_session_code"`
	Date                    string `json:"date"`
	TherapistDurationMin    int    `json:"therapist_duration_minutes"`
	PatientConfirmedDurMin  int    `json:"patient_confirmed_duration_minutes"`
	DiscrepancyMinutes      int    `json:"discrepancy_minutes"`
	TherapistName           string `json:"therapist_name"`
	PatientName             string `json:"patient_name"`
	Resolved                bool   `json:"resolved"`
	ResolutionNotes         string `json:"resolution_notes,omitempty"`
}

// MonthlySummary counts a therapist's statuses over one month ("2006-01").
type MonthlySummary struct {
	TherapistID string         `json:"therapist_id"`
	Month       string         `json:"month"`
	Counts      map[Status]int `json:"counts"`
}

// Outcome is the per-item result of a bulk operation. Err is nil on success.
type Outcome struct {
	ID  string
	Err error
}

// Counts tallies a bulk run's outcomes.
func Counts(outcomes []Outcome) (success, failed int) {
	for _, o := range outcomes {
		if o.Err == nil {
			success++
		} else {
			failed++
		}
	}
	return success, failed
}

// SubmitInput is a therapist's attendance submission for one day.
type SubmitInput struct {
	TherapistID string `json:"therapist_id" validate:"required"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Status      Status `json:"status" validate:"required"`
	Notes       string `json:"notes,omitempty"`
}

// ChangeInput is a therapist's request to alter a recorded status.
type ChangeInput struct {
	TherapistID     string `json:"therapist_id" validate:"required"`
	AttendanceDate  string `json:"attendance_date" validate:"required,datetime=2006-01-02"`
	RequestedStatus Status `json:"requested_status" validate:"required"`
	Reason          string `json:"reason" validate:"required"`
}

type LeaveInput struct {
	TherapistID string `json:"therapist_id" validate:"required"`
	LeaveType   string `json:"leave_type" validate:"required,oneof=approved_leave sick_leave emergency_leave"`
	StartDate   string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Reason      string `json:"reason" validate:"required"`
}
