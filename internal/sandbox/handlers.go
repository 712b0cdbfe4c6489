package sandbox

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/codekarmatech/healthyphysio-sub004/internal/attendance"
	"github.com/codekarmatech/healthyphysio-sub004/internal/earnings"
	"github.com/codekarmatech/healthyphysio-sub004/internal/identity"
	"github.com/codekarmatech/healthyphysio-sub004/internal/scheduling"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}

func writeList(w http.ResponseWriter, results any, count int) {
	writeJSON(w, http.StatusOK, ListResponse{Results: results, Count: count})
}

// handleStoreError maps the store's sentinel errors onto the status codes the
// live API uses for the same conditions.
func handleStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAlreadyApplied),
		errors.Is(err, ErrAlreadyDecided),
		errors.Is(err, ErrAlreadyResolved),
		errors.Is(err, ErrDuplicateRecord):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrReasonRequired),
		errors.Is(err, ErrPastDate),
		errors.Is(err, ErrDateHasAppointments),
		errors.Is(err, earnings.ErrFeeNotPositive),
		errors.Is(err, earnings.ErrPercentOutOfRange),
		errors.Is(err, earnings.ErrSplitSumNotHundred):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "could not parse JSON body")
		return false
	}
	return true
}

func settingsHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, store.Settings())
	}
}

// therapistsHandler returns a bare array, like the live endpoint.
func therapistsHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, store.Therapists())
	}
}

func patientsHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patients := store.Patients()
		writeList(w, patients, len(patients))
	}
}

func appointmentsHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		appointments := store.Appointments(q.Get("patient_id"), q.Get("therapist_id"), q.Get("date"))
		writeList(w, appointments, len(appointments))
	}
}

func calculateHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input earnings.CalculationInput
		if !decode(w, r, &input) {
			return
		}

		result, err := store.Calculate(input)
		if err != nil {
			handleStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func applyHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var result earnings.DistributionResult
		if !decode(w, r, &result) {
			return
		}

		if err := store.Apply(chi.URLParam(r, "id"), result); err != nil {
			handleStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Status: "applied"})
	}
}

func listConfigsHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		configs := store.Configs()
		writeList(w, configs, len(configs))
	}
}

func getConfigHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := store.Config(chi.URLParam(r, "id"))
		if err != nil {
			handleStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, cfg)
	}
}

func createConfigHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cfg earnings.DistributionConfig
		if !decode(w, r, &cfg) {
			return
		}

		saved, err := store.CreateConfig(cfg)
		if err != nil {
			handleStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, saved)
	}
}

func updateConfigHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cfg earnings.DistributionConfig
		if !decode(w, r, &cfg) {
			return
		}
		cfg.ID = chi.URLParam(r, "id")

		saved, err := store.UpdateConfig(cfg)
		if err != nil {
			handleStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, saved)
	}
}

func summariesHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		summaries := store.Summaries(query.Get("from"), query.Get("to"))
		writeList(w, summaries, len(summaries))
	}
}

func pendingRecordsHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records := store.PendingRecords()
		writeList(w, records, len(records))
	}
}

func approveRecordHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.ApproveRecord(chi.URLParam(r, "id"), callerName(r)); err != nil {
			handleStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Status: "approved"})
	}
}

func deleteRecordHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteRecord(chi.URLParam(r, "id")); err != nil {
			handleStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Status: "deleted"})
	}
}

func submitRecordHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input attendance.SubmitInput
		if !decode(w, r, &input) {
			return
		}
		if !input.Status.Valid() {
			writeError(w, http.StatusBadRequest, "invalid attendance status")
			return
		}

		record, err := store.SubmitRecord(input)
		if err != nil {
			handleStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, record)
	}
}

func changeRequestsHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := attendance.RequestStatus(r.URL.Query().Get("status"))
		requests := store.ChangeRequests(status)
		writeList(w, requests, len(requests))
	}
}

func createChangeRequestHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input attendance.ChangeInput
		if !decode(w, r, &input) {
			return
		}

		cr, err := store.CreateChangeRequest(input)
		if err != nil {
			handleStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, cr)
	}
}

func approveChangeRequestHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.ApproveChangeRequest(chi.URLParam(r, "id")); err != nil {
			handleStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Status: "approved"})
	}
}

func rejectChangeRequestHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reasonRequest
		if !decode(w, r, &req) {
			return
		}

		if err := store.RejectChangeRequest(chi.URLParam(r, "id"), req.Reason); err != nil {
			handleStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Status: "rejected"})
	}
}

func leavesHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := attendance.RequestStatus(r.URL.Query().Get("status"))
		leaves := store.Leaves(status)
		writeList(w, leaves, len(leaves))
	}
}

func createLeaveHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input attendance.LeaveInput
		if !decode(w, r, &input) {
			return
		}

		leave, err := store.CreateLeave(input)
		if err != nil {
			handleStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, leave)
	}
}

func approveLeaveHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.ApproveLeave(chi.URLParam(r, "id")); err != nil {
			handleStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Status: "approved"})
	}
}

func rejectLeaveHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reasonRequest
		if !decode(w, r, &req) {
			return
		}

		if err := store.RejectLeave(chi.URLParam(r, "id"), req.Reason); err != nil {
			handleStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Status: "rejected"})
	}
}

func discrepanciesHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items := store.Discrepancies()
		writeList(w, items, len(items))
	}
}

func resolveDiscrepancyHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req notesRequest
		if !decode(w, r, &req) {
			return
		}

		if err := store.ResolveDiscrepancy(chi.URLParam(r, "id"), req.Notes); err != nil {
			handleStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Status: "resolved"})
	}
}

func monthlySummaryHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		writeJSON(w, http.StatusOK, store.MonthlySummary(q.Get("therapist_id"), q.Get("month")))
	}
}

func availabilityHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries := store.Availability(r.URL.Query().Get("therapist_id"))
		writeList(w, entries, len(entries))
	}
}

func markAvailabilityHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var entry scheduling.AvailabilityEntry
		if !decode(w, r, &entry) {
			return
		}

		if err := store.MarkAvailability(entry); err != nil {
			handleStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, entry)
	}
}

func removeAvailabilityHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		therapistID := chi.URLParam(r, "therapistID")
		date := chi.URLParam(r, "date")

		if err := store.RemoveAvailability(therapistID, date); err != nil {
			handleStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Status: "removed"})
	}
}

func sessionTimeHandler(store *Store, byTherapist bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sessionTimeRequest
		if !decode(w, r, &req) {
			return
		}
		if req.Minutes <= 0 {
			writeError(w, http.StatusBadRequest, "minutes must be greater than zero")
			return
		}

		if err := store.RecordSessionTime(chi.URLParam(r, "code"), req.Minutes, byTherapist); err != nil {
			handleStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Status: "recorded"})
	}
}

// callerName pulls a display name from the bearer token for approved_by
// fields. The sandbox trusts the token; the live API does not.
func callerName(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) {
		return "admin"
	}

	id, err := identity.FromToken(auth[len(prefix):])
	if err != nil || id.Name == "" {
		return "admin"
	}
	return id.Name
}
