package sandbox

import (
	"fmt"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/codekarmatech/healthyphysio-sub004/internal/attendance"
	"github.com/codekarmatech/healthyphysio-sub004/internal/earnings"
	"github.com/codekarmatech/healthyphysio-sub004/internal/scheduling"
	"github.com/codekarmatech/healthyphysio-sub004/internal/sitesettings"
)

// DefaultSettings mirrors the live clinic's production values.
func DefaultSettings() sitesettings.Settings {
	return sitesettings.Settings{
		ClinicName:                  "HealthyPhysio",
		Currency:                    "INR",
		MinimumSessionFee:           300,
		DefaultPlatformFeePct:       3,
		DiscrepancyToleranceMinutes: 5,
		AttendanceEditWindowDays:    7,
	}
}

var physioSpecialties = []string{
	"Sports Rehabilitation",
	"Orthopedic Physiotherapy",
	"Neurological Physiotherapy",
	"Pediatric Physiotherapy",
	"Geriatric Physiotherapy",
	"Post-surgical Rehabilitation",
}

// Seed loads demo data: therapists, patients, a week of appointments either
// side of today, pending attendance, change requests, leave applications and
// session reports that put a few discrepancies in the admin queue.
func Seed(store *Store, seed uint64) {
	faker := gofakeit.New(seed)

	store.mu.Lock()
	defer store.mu.Unlock()

	today, _ := time.Parse(scheduling.DateLayout, store.now().Format(scheduling.DateLayout))

	for i := 0; i < 6; i++ {
		store.therapists = append(store.therapists, scheduling.Therapist{
			ID:        uuid.NewString(),
			Name:      faker.Name(),
			Specialty: physioSpecialties[i%len(physioSpecialties)],
		})
	}

	for i := 0; i < 24; i++ {
		store.patients = append(store.patients, Patient{
			ID:   uuid.NewString(),
			Name: faker.Name(),
		})
	}

	standard := earnings.DistributionConfig{
		ID:   uuid.NewString(),
		Name: "standard",
		PercentSplit: earnings.PercentSplit{
			AdminPct:       34.36,
			TherapistPct:   38.66,
			DoctorPct:      26.98,
			PlatformFeePct: 3,
		},
	}
	homeVisit := earnings.DistributionConfig{
		ID:   uuid.NewString(),
		Name: "home-visit",
		PercentSplit: earnings.PercentSplit{
			AdminPct:       25,
			TherapistPct:   55,
			DoctorPct:      20,
			PlatformFeePct: 5,
		},
	}
	store.configs[standard.ID] = standard
	store.configs[homeVisit.ID] = homeVisit

	sessionSeq := 0
	for day := -7; day <= 7; day++ {
		date := today.AddDate(0, 0, day).Format(scheduling.DateLayout)
		for i := 0; i < 4; i++ {
			sessionSeq++
			therapist := store.therapists[faker.Number(0, len(store.therapists)-1)]
			patient := store.patients[faker.Number(0, len(store.patients)-1)]

			status := scheduling.StatusScheduled
			if day < 0 {
				status = scheduling.StatusCompleted
			}

			appt := &scheduling.Appointment{
				ID:              uuid.NewString(),
				SessionCode:     fmt.Sprintf("PT-%04d", sessionSeq),
				PatientID:       patient.ID,
				PatientName:     patient.Name,
				TherapistID:     therapist.ID,
				TherapistName:   therapist.Name,
				Date:            date,
				StartTime:       fmt.Sprintf("%02d:00", 9+i*2),
				DurationMinutes: 60,
				Fee:             float64(faker.Number(4, 20)) * 100,
				Status:          status,
			}
			store.appointments[appt.ID] = appt
		}
	}

	attendanceStatuses := []attendance.Status{
		attendance.StatusPresent,
		attendance.StatusPresent,
		attendance.StatusHalfDay,
		attendance.StatusAvailable,
		attendance.StatusSickLeave,
	}
	for _, therapist := range store.therapists {
		for day := -5; day < 0; day++ {
			date := today.AddDate(0, 0, day)
			record := attendance.AttendanceRecord{
				ID:          uuid.NewString(),
				TherapistID: therapist.ID,
				Date:        date.Format(scheduling.DateLayout),
				Status:      attendanceStatuses[faker.Number(0, len(attendanceStatuses)-1)],
				SubmittedAt: date.Add(19 * time.Hour),
			}
			store.records[record.ID] = &record
		}
	}

	first := store.therapists[0]
	second := store.therapists[1]

	crDate := today.AddDate(0, 0, -3).Format(scheduling.DateLayout)
	cr := attendance.ChangeRequest{
		ID:              uuid.NewString(),
		TherapistID:     first.ID,
		AttendanceDate:  crDate,
		CurrentStatus:   attendance.StatusAbsent,
		RequestedStatus: attendance.StatusHalfDay,
		Reason:          "worked the morning shift, marked absent by mistake",
		Status:          attendance.RequestPending,
	}
	store.changeRequests[cr.ID] = &cr

	leave := attendance.LeaveApplication{
		ID:          uuid.NewString(),
		TherapistID: second.ID,
		LeaveType:   string(attendance.StatusSickLeave),
		StartDate:   today.AddDate(0, 0, 2).Format(scheduling.DateLayout),
		EndDate:     today.AddDate(0, 0, 4).Format(scheduling.DateLayout),
		Reason:      "scheduled minor surgery",
		Status:      attendance.RequestPending,
	}
	store.leaves[leave.ID] = &leave

	// Completed sessions get duration reports. Most agree within the
	// tolerance; every fifth one drifts enough to open a discrepancy.
	reportSeq := 0
	for _, appt := range store.appointments {
		if appt.Status != scheduling.StatusCompleted {
			continue
		}
		reportSeq++

		therapistMinutes := appt.DurationMinutes
		patientMinutes := therapistMinutes - faker.Number(0, 4)
		if reportSeq%5 == 0 {
			patientMinutes = therapistMinutes - faker.Number(10, 25)
		}

		store.reports[appt.SessionCode] = &sessionReport{
			therapistMinutes: &therapistMinutes,
			patientMinutes:   &patientMinutes,
		}

		diff := therapistMinutes - patientMinutes
		if diff < 0 {
			diff = -diff
		}
		if diff <= store.settings.DiscrepancyToleranceMinutes {
			continue
		}

		d := attendance.SessionTimeDiscrepancy{
			ID:                     uuid.NewString(),
			AppointmentSessionCode: appt.SessionCode,
			Date:                   appt.Date,
			TherapistDurationMin:   therapistMinutes,
			PatientConfirmedDurMin: patientMinutes,
			DiscrepancyMinutes:     diff,
			TherapistName:          appt.TherapistName,
			PatientName:            appt.PatientName,
		}
		store.discrepancies[d.ID] = &d
	}

	log.Printf("seeded: therapists=%d patients=%d appointments=%d pending_attendance=%d discrepancies=%d",
		len(store.therapists), len(store.patients), len(store.appointments),
		len(store.records), len(store.discrepancies))
}
