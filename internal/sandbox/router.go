package sandbox

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func NewRouter(store *Store, env, version string, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(withRequestID)
	r.Use(accessLog(log.With("component", "sandbox")))

	health := NewHealthHandler(store, env, version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Get("/site-settings", settingsHandler(store))
	r.Get("/users/therapists", therapistsHandler(store))
	r.Get("/users/patients", patientsHandler(store))

	r.Route("/scheduling", func(r chi.Router) {
		r.Get("/appointments", appointmentsHandler(store))
		r.Get("/availability", availabilityHandler(store))
		r.Post("/availability", markAvailabilityHandler(store))
		r.Delete("/availability/{therapistID}/{date}", removeAvailabilityHandler(store))
		r.Post("/sessions/{code}/report", sessionTimeHandler(store, true))
		r.Post("/sessions/{code}/confirm", sessionTimeHandler(store, false))
	})

	r.Route("/earnings", func(r chi.Router) {
		r.Post("/calculate", calculateHandler(store))
		r.Post("/appointments/{id}/apply", applyHandler(store))
		r.Get("/configs", listConfigsHandler(store))
		r.Post("/configs", createConfigHandler(store))
		r.Get("/configs/{id}", getConfigHandler(store))
		r.Put("/configs/{id}", updateConfigHandler(store))
		r.Get("/summary", summariesHandler(store))
	})

	r.Route("/attendance", func(r chi.Router) {
		r.Get("/records/pending", pendingRecordsHandler(store))
		r.Post("/records", submitRecordHandler(store))
		r.Post("/records/{id}/approve", approveRecordHandler(store))
		r.Delete("/records/{id}", deleteRecordHandler(store))

		r.Get("/change-requests", changeRequestsHandler(store))
		r.Post("/change-requests", createChangeRequestHandler(store))
		r.Post("/change-requests/{id}/approve", approveChangeRequestHandler(store))
		r.Post("/change-requests/{id}/reject", rejectChangeRequestHandler(store))

		r.Get("/leaves", leavesHandler(store))
		r.Post("/leaves", createLeaveHandler(store))
		r.Post("/leaves/{id}/approve", approveLeaveHandler(store))
		r.Post("/leaves/{id}/reject", rejectLeaveHandler(store))

		r.Get("/discrepancies", discrepanciesHandler(store))
		r.Post("/discrepancies/{id}/resolve", resolveDiscrepancyHandler(store))

		r.Get("/summary", monthlySummaryHandler(store))
	})

	return r
}
