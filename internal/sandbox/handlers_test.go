package sandbox

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codekarmatech/healthyphysio-sub004/internal/earnings"
)

func TestSummariesEndpointHonorsPeriod(t *testing.T) {
	store := newTestStore()
	addAppointment(store, "appt-1", "PT-0001", "th-1", "2026-08-25")
	addAppointment(store, "appt-2", "PT-0002", "th-1", "2026-08-26")

	result, err := store.Calculate(earnings.CalculationInput{
		AppointmentID: "appt-1",
		Fee:           1200,
		Manual: &earnings.PercentSplit{
			AdminPct: 34.36, TherapistPct: 38.66, DoctorPct: 26.98, PlatformFeePct: 3,
		},
	})
	require.NoError(t, err)
	require.NoError(t, store.Apply("appt-1", result))
	require.NoError(t, store.Apply("appt-2", result))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(NewRouter(store, "test", "test", logger))
	defer srv.Close()

	fetch := func(rawQuery string) []earnings.EarningsSummary {
		t.Helper()
		resp, err := http.Get(srv.URL + "/earnings/summary" + rawQuery)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var envelope struct {
			Results []earnings.EarningsSummary `json:"results"`
			Count   int                        `json:"count"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
		return envelope.Results
	}

	all := fetch("")
	require.Len(t, all, 1)
	assert.Equal(t, 2, all[0].Sessions)

	scoped := fetch("?from=2026-08-26&to=2026-08-26")
	require.Len(t, scoped, 1)
	assert.Equal(t, 1, scoped[0].Sessions)
	assert.Equal(t, 1200.0, scoped[0].GrossFees)

	assert.Empty(t, fetch("?from=2026-09-01"))
}
