// Package sandbox is a local, in-memory rendition of the clinic REST API.
// It implements the same wire contract the client library consumes so the
// CLI, the simulator and the test suite have a real server to talk to. It is
// a development collaborator, not the backend of record.
package sandbox

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codekarmatech/healthyphysio-sub004/internal/attendance"
	"github.com/codekarmatech/healthyphysio-sub004/internal/earnings"
	"github.com/codekarmatech/healthyphysio-sub004/internal/scheduling"
	"github.com/codekarmatech/healthyphysio-sub004/internal/sitesettings"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrAlreadyApplied      = errors.New("distribution already applied to this appointment")
	ErrAlreadyDecided      = errors.New("request already decided")
	ErrAlreadyResolved     = errors.New("discrepancy already resolved")
	ErrReasonRequired      = errors.New("a reason is required to reject")
	ErrPastDate            = errors.New("date is in the past")
	ErrDateHasAppointments = errors.New("date already has appointments")
	ErrDuplicateRecord     = errors.New("attendance already submitted for this date")
)

type Patient struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type sessionReport struct {
	therapistMinutes *int
	patientMinutes   *int
}

// Store holds all sandbox state behind one mutex. Request volume is a
// developer's laptop, not production; simplicity wins.
type Store struct {
	mu  sync.Mutex
	now func() time.Time

	settings sitesettings.Settings

	therapists   []scheduling.Therapist
	patients     []Patient
	appointments map[string]*scheduling.Appointment

	configs map[string]earnings.DistributionConfig
	applied map[string]earnings.DistributionResult

	records        map[string]*attendance.AttendanceRecord
	changeRequests map[string]*attendance.ChangeRequest
	leaves         map[string]*attendance.LeaveApplication
	discrepancies  map[string]*attendance.SessionTimeDiscrepancy

	availability map[string]scheduling.AvailabilityEntry
	reports      map[string]*sessionReport
}

func NewStore(settings sitesettings.Settings) *Store {
	return &Store{
		now:            time.Now,
		settings:       settings,
		appointments:   make(map[string]*scheduling.Appointment),
		configs:        make(map[string]earnings.DistributionConfig),
		applied:        make(map[string]earnings.DistributionResult),
		records:        make(map[string]*attendance.AttendanceRecord),
		changeRequests: make(map[string]*attendance.ChangeRequest),
		leaves:         make(map[string]*attendance.LeaveApplication),
		discrepancies:  make(map[string]*attendance.SessionTimeDiscrepancy),
		availability:   make(map[string]scheduling.AvailabilityEntry),
		reports:        make(map[string]*sessionReport),
	}
}

func (s *Store) Settings() sitesettings.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *Store) Therapists() []scheduling.Therapist {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]scheduling.Therapist, len(s.therapists))
	copy(out, s.therapists)
	return out
}

func (s *Store) Patients() []Patient {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Patient, len(s.patients))
	copy(out, s.patients)
	return out
}

// Appointments filters by any combination of patient, therapist and date.
func (s *Store) Appointments(patientID, therapistID, date string) []scheduling.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []scheduling.Appointment
	for _, a := range s.appointments {
		if patientID != "" && a.PatientID != patientID {
			continue
		}
		if therapistID != "" && a.TherapistID != therapistID {
			continue
		}
		if date != "" && a.Date != date {
			continue
		}
		out = append(out, *a)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

// Calculate runs the authoritative distribution calculation.
func (s *Store) Calculate(input earnings.CalculationInput) (earnings.DistributionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.appointments[input.AppointmentID]; !ok {
		return earnings.DistributionResult{}, fmt.Errorf("appointment %s: %w", input.AppointmentID, ErrNotFound)
	}

	split, err := s.resolveSplit(input)
	if err != nil {
		return earnings.DistributionResult{}, err
	}

	return earnings.Compute(input.Fee, split, s.settings.MinimumSessionFee)
}

func (s *Store) resolveSplit(input earnings.CalculationInput) (earnings.PercentSplit, error) {
	if input.Manual != nil {
		return *input.Manual, nil
	}
	cfg, ok := s.configs[input.ConfigID]
	if !ok {
		return earnings.PercentSplit{}, fmt.Errorf("config %s: %w", input.ConfigID, ErrNotFound)
	}
	return cfg.PercentSplit, nil
}

// Apply persists a result against an appointment, at most once.
func (s *Store) Apply(appointmentID string, result earnings.DistributionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	appt, ok := s.appointments[appointmentID]
	if !ok {
		return fmt.Errorf("appointment %s: %w", appointmentID, ErrNotFound)
	}
	if _, done := s.applied[appointmentID]; done {
		return ErrAlreadyApplied
	}

	s.applied[appointmentID] = result
	appt.DistributionApplied = true
	return nil
}

func (s *Store) Configs() []earnings.DistributionConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]earnings.DistributionConfig, 0, len(s.configs))
	for _, cfg := range s.configs {
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Store) Config(id string) (earnings.DistributionConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.configs[id]
	if !ok {
		return earnings.DistributionConfig{}, fmt.Errorf("config %s: %w", id, ErrNotFound)
	}
	return cfg, nil
}

func (s *Store) CreateConfig(cfg earnings.DistributionConfig) (earnings.DistributionConfig, error) {
	if _, err := earnings.Compute(1, cfg.PercentSplit, 0); err != nil {
		return earnings.DistributionConfig{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg.ID = uuid.NewString()
	s.configs[cfg.ID] = cfg
	return cfg, nil
}

func (s *Store) UpdateConfig(cfg earnings.DistributionConfig) (earnings.DistributionConfig, error) {
	if _, err := earnings.Compute(1, cfg.PercentSplit, 0); err != nil {
		return earnings.DistributionConfig{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.configs[cfg.ID]; !ok {
		return earnings.DistributionConfig{}, fmt.Errorf("config %s: %w", cfg.ID, ErrNotFound)
	}
	s.configs[cfg.ID] = cfg
	return cfg, nil
}

// Summaries aggregates applied distributions per therapist. The from/to
// bounds are inclusive appointment dates; either may be empty.
func (s *Store) Summaries(from, to string) []earnings.EarningsSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	byTherapist := make(map[string]*earnings.EarningsSummary)
	for apptID, result := range s.applied {
		appt, ok := s.appointments[apptID]
		if !ok {
			continue
		}
		if from != "" && appt.Date < from {
			continue
		}
		if to != "" && appt.Date > to {
			continue
		}
		sum, ok := byTherapist[appt.TherapistID]
		if !ok {
			sum = &earnings.EarningsSummary{
				TherapistID:   appt.TherapistID,
				TherapistName: appt.TherapistName,
			}
			byTherapist[appt.TherapistID] = sum
		}
		sum.Sessions++
		sum.GrossFees += result.Total
		sum.TherapistTotal += result.TherapistAmount
		sum.AdminTotal += result.AdminAmount
		sum.DoctorTotal += result.DoctorAmount
		sum.PlatformTotal += result.PlatformFee
	}

	out := make([]earnings.EarningsSummary, 0, len(byTherapist))
	for _, sum := range byTherapist {
		out = append(out, *sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TherapistName < out[j].TherapistName })
	return out
}

func (s *Store) PendingRecords() []attendance.AttendanceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []attendance.AttendanceRecord
	for _, r := range s.records {
		if r.ApprovedBy == "" {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func (s *Store) ApproveRecord(id, approver string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return fmt.Errorf("attendance %s: %w", id, ErrNotFound)
	}
	if r.ApprovedBy != "" {
		return ErrAlreadyDecided
	}
	r.ApprovedBy = approver
	return nil
}

func (s *Store) DeleteRecord(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("attendance %s: %w", id, ErrNotFound)
	}
	delete(s.records, id)
	return nil
}

func (s *Store) SubmitRecord(input attendance.SubmitInput) (attendance.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if r.TherapistID == input.TherapistID && r.Date == input.Date {
			return attendance.AttendanceRecord{}, ErrDuplicateRecord
		}
	}

	record := attendance.AttendanceRecord{
		ID:          uuid.NewString(),
		TherapistID: input.TherapistID,
		Date:        input.Date,
		Status:      input.Status,
		SubmittedAt: s.now(),
		Notes:       input.Notes,
	}
	s.records[record.ID] = &record
	return record, nil
}

func (s *Store) ChangeRequests(status attendance.RequestStatus) []attendance.ChangeRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []attendance.ChangeRequest
	for _, cr := range s.changeRequests {
		if status != "" && cr.Status != status {
			continue
		}
		out = append(out, *cr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AttendanceDate < out[j].AttendanceDate })
	return out
}

func (s *Store) CreateChangeRequest(input attendance.ChangeInput) (attendance.ChangeRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current attendance.Status
	for _, r := range s.records {
		if r.TherapistID == input.TherapistID && r.Date == input.AttendanceDate {
			current = r.Status
			break
		}
	}
	if current == "" {
		return attendance.ChangeRequest{}, fmt.Errorf("attendance on %s: %w", input.AttendanceDate, ErrNotFound)
	}

	cr := attendance.ChangeRequest{
		ID:              uuid.NewString(),
		TherapistID:     input.TherapistID,
		AttendanceDate:  input.AttendanceDate,
		CurrentStatus:   current,
		RequestedStatus: input.RequestedStatus,
		Reason:          input.Reason,
		Status:          attendance.RequestPending,
	}
	s.changeRequests[cr.ID] = &cr
	return cr, nil
}

// ApproveChangeRequest also mutates the underlying attendance record.
func (s *Store) ApproveChangeRequest(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cr, ok := s.changeRequests[id]
	if !ok {
		return fmt.Errorf("change request %s: %w", id, ErrNotFound)
	}
	if cr.Status != attendance.RequestPending {
		return ErrAlreadyDecided
	}

	cr.Status = attendance.RequestApproved
	for _, r := range s.records {
		if r.TherapistID == cr.TherapistID && r.Date == cr.AttendanceDate {
			r.Status = cr.RequestedStatus
			break
		}
	}
	return nil
}

func (s *Store) RejectChangeRequest(id, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cr, ok := s.changeRequests[id]
	if !ok {
		return fmt.Errorf("change request %s: %w", id, ErrNotFound)
	}
	if cr.Status != attendance.RequestPending {
		return ErrAlreadyDecided
	}

	cr.Status = attendance.RequestRejected
	cr.RejectReason = reason
	return nil
}

func (s *Store) Leaves(status attendance.RequestStatus) []attendance.LeaveApplication {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []attendance.LeaveApplication
	for _, l := range s.leaves {
		if status != "" && l.Status != status {
			continue
		}
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate < out[j].StartDate })
	return out
}

func (s *Store) CreateLeave(input attendance.LeaveInput) (attendance.LeaveApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	leave := attendance.LeaveApplication{
		ID:          uuid.NewString(),
		TherapistID: input.TherapistID,
		LeaveType:   input.LeaveType,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Reason:      input.Reason,
		Status:      attendance.RequestPending,
	}
	s.leaves[leave.ID] = &leave
	return leave, nil
}

func (s *Store) ApproveLeave(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.leaves[id]
	if !ok {
		return fmt.Errorf("leave %s: %w", id, ErrNotFound)
	}
	if l.Status != attendance.RequestPending {
		return ErrAlreadyDecided
	}
	l.Status = attendance.RequestApproved
	return nil
}

func (s *Store) RejectLeave(id, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.leaves[id]
	if !ok {
		return fmt.Errorf("leave %s: %w", id, ErrNotFound)
	}
	if l.Status != attendance.RequestPending {
		return ErrAlreadyDecided
	}
	l.Status = attendance.RequestRejected
	l.RejectReason = reason
	return nil
}

// Discrepancies returns the unresolved queue. Sessions whose reports agree
// within the tolerance never produced an entry in the first place.
func (s *Store) Discrepancies() []attendance.SessionTimeDiscrepancy {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []attendance.SessionTimeDiscrepancy
	for _, d := range s.discrepancies {
		if !d.Resolved {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func (s *Store) ResolveDiscrepancy(id, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.discrepancies[id]
	if !ok {
		return fmt.Errorf("discrepancy %s: %w", id, ErrNotFound)
	}
	if d.Resolved {
		return ErrAlreadyResolved
	}
	d.Resolved = true
	d.ResolutionNotes = notes
	return nil
}

func (s *Store) MonthlySummary(therapistID, month string) attendance.MonthlySummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := attendance.MonthlySummary{
		TherapistID: therapistID,
		Month:       month,
		Counts:      make(map[attendance.Status]int),
	}
	for _, r := range s.records {
		if r.TherapistID == therapistID && strings.HasPrefix(r.Date, month) {
			summary.Counts[r.Status]++
		}
	}
	return summary
}

func availabilityKey(therapistID, date string) string {
	return therapistID + "|" + date
}

func (s *Store) Availability(therapistID string) []scheduling.AvailabilityEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []scheduling.AvailabilityEntry
	for _, e := range s.availability {
		if therapistID != "" && e.TherapistID != therapistID {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// MarkAvailability enforces the same rules the client checks: the date must
// not be in the past and must carry no appointments, so a client that lost
// the check-to-use race gets a validation error instead of a bad entry.
func (s *Store) MarkAvailability(entry scheduling.AvailabilityEntry) error {
	day, err := time.Parse(scheduling.DateLayout, entry.Date)
	if err != nil {
		return fmt.Errorf("invalid date %q", entry.Date)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	today, _ := time.Parse(scheduling.DateLayout, s.now().Format(scheduling.DateLayout))
	if day.Before(today) {
		return ErrPastDate
	}
	for _, a := range s.appointments {
		if a.TherapistID == entry.TherapistID && a.Date == entry.Date {
			return ErrDateHasAppointments
		}
	}

	s.availability[availabilityKey(entry.TherapistID, entry.Date)] = entry
	return nil
}

func (s *Store) RemoveAvailability(therapistID, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := availabilityKey(therapistID, date)
	if _, ok := s.availability[key]; !ok {
		return fmt.Errorf("availability on %s: %w", date, ErrNotFound)
	}
	delete(s.availability, key)
	return nil
}

// RecordSessionTime stores one side's reported duration for a session. When
// both sides have reported and the difference exceeds the tolerance, a
// discrepancy record is created for the admin queue; differences at or under
// the tolerance never surface.
func (s *Store) RecordSessionTime(sessionCode string, minutes int, byTherapist bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var appt *scheduling.Appointment
	for _, a := range s.appointments {
		if a.SessionCode == sessionCode {
			appt = a
			break
		}
	}
	if appt == nil {
		return fmt.Errorf("session %s: %w", sessionCode, ErrNotFound)
	}

	report, ok := s.reports[sessionCode]
	if !ok {
		report = &sessionReport{}
		s.reports[sessionCode] = report
	}
	if byTherapist {
		report.therapistMinutes = &minutes
	} else {
		report.patientMinutes = &minutes
	}

	if report.therapistMinutes == nil || report.patientMinutes == nil {
		return nil
	}

	diff := *report.therapistMinutes - *report.patientMinutes
	if diff < 0 {
		diff = -diff
	}
	if diff <= s.settings.DiscrepancyToleranceMinutes {
		return nil
	}

	for _, d := range s.discrepancies {
		if d.AppointmentSessionCode == sessionCode {
			return nil
		}
	}

	patientName := ""
	for _, p := range s.patients {
		if p.ID == appt.PatientID {
			patientName = p.Name
			break
		}
	}
	if patientName == "" {
		patientName = appt.PatientName
	}

	d := attendance.SessionTimeDiscrepancy{
		ID:                     uuid.NewString(),
		AppointmentSessionCode: sessionCode,
		Date:                   appt.Date,
		TherapistDurationMin:   *report.therapistMinutes,
		PatientConfirmedDurMin: *report.patientMinutes,
		DiscrepancyMinutes:     diff,
		TherapistName:          appt.TherapistName,
		PatientName:            patientName,
	}
	s.discrepancies[d.ID] = &d
	return nil
}

// Seeded reports whether demo data has been loaded; readiness checks it.
func (s *Store) Seeded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.therapists) > 0 && len(s.appointments) > 0
}
