package scheduling

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusMissed    AppointmentStatus = "missed"
)

// DateLayout is the wire format for bare dates across the API.
const DateLayout = "2006-01-02"

// Appointment is the booking a distribution is applied against.
type Appointment struct {
	ID                  string            `json:"id"`
	SessionCode         string            `json:"session_code"`
	PatientID           string            `json:"patient_id"`
	PatientName         string            `json:"patient_name"`
	TherapistID         string            `json:"therapist_id"`
	TherapistName       string            `json:"therapist_name"`
	Date                string            `json:"date"`
	StartTime           string            `json:"start_time"`
	DurationMinutes     int               `json:"duration_minutes"`
	Fee                 float64           `json:"fee"`
	Status              AppointmentStatus `json:"status"`
	DistributionApplied bool              `json:"distribution_applied"`
}

type Therapist struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty,omitempty"`
}

// AvailabilityEntry marks a therapist reachable on a day with no scheduled
// appointment. Mutually exclusive with having appointments on that date.
type AvailabilityEntry struct {
	TherapistID string `json:"therapist_id"`
	Date        string `json:"date"`
	Notes       string `json:"notes,omitempty"`
}
