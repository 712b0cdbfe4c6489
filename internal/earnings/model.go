package earnings

// PercentSplit holds the four percentages of a revenue distribution. The
// platform fee applies to the gross session fee; the three party percentages
// apply to what remains and must sum to 100.
type PercentSplit struct {
	AdminPct       float64 `json:"admin_pct" validate:"gte=0,lte=100"`
	TherapistPct   float64 `json:"therapist_pct" validate:"gte=0,lte=100"`
	DoctorPct      float64 `json:"doctor_pct" validate:"gte=0,lte=100"`
	PlatformFeePct float64 `json:"platform_fee_pct" validate:"gte=0,lte=100"`
}

// DistributionConfig is a named split created and edited by admins. Once a
// config has been applied to a session it is immutable server-side; edits
// produce a new revision under the same name.
type DistributionConfig struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name" validate:"required"`
	PercentSplit
}

// DistributionResult is the derived, transient outcome of one calculation.
// Total is the gross fee; PlatformFee + DistributableAmount == Total exactly,
// and the three party amounts sum to DistributableAmount modulo rounding.
// Nothing is persisted until the result is applied to an appointment.
type DistributionResult struct {
	AdminAmount         float64 `json:"admin_amount"`
	TherapistAmount     float64 `json:"therapist_amount"`
	DoctorAmount        float64 `json:"doctor_amount"`
	PlatformFee         float64 `json:"platform_fee"`
	Total               float64 `json:"total"`
	DistributableAmount float64 `json:"distributable_amount"`
	BelowThreshold      bool    `json:"below_threshold"`
	AdminPct            float64 `json:"admin_pct"`
	TherapistPct        float64 `json:"therapist_pct"`
	DoctorPct           float64 `json:"doctor_pct"`
}

// CalculationInput selects a saved config or carries manual override
// percentages when manual distribution mode is enabled.
type CalculationInput struct {
	AppointmentID string        `json:"appointment_id" validate:"required"`
	Fee           float64       `json:"fee" validate:"gt=0"`
	ConfigID      string        `json:"config_id,omitempty" validate:"required_without=Manual"`
	Manual        *PercentSplit `json:"manual,omitempty"`
}

// EarningsSummary aggregates applied distributions for one therapist over a
// reporting period.
type EarningsSummary struct {
	TherapistID    string  `json:"therapist_id"`
	TherapistName  string  `json:"therapist_name"`
	Sessions       int     `json:"sessions"`
	GrossFees      float64 `json:"gross_fees"`
	TherapistTotal float64 `json:"therapist_total"`
	AdminTotal     float64 `json:"admin_total"`
	DoctorTotal    float64 `json:"doctor_total"`
	PlatformTotal  float64 `json:"platform_total"`
}
