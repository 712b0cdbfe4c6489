package earnings

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codekarmatech/healthyphysio-sub004/internal/restclient"
)

type fakeGateway struct {
	calculateCalls int
	applyCalls     int
	applyErr       error
	configs        map[string]DistributionConfig
	minimumFee     float64
}

func (f *fakeGateway) Calculate(ctx context.Context, input CalculationInput) (DistributionResult, error) {
	f.calculateCalls++

	split := f.configs[input.ConfigID].PercentSplit
	if input.Manual != nil {
		split = *input.Manual
	}
	return Compute(input.Fee, split, f.minimumFee)
}

func (f *fakeGateway) Apply(ctx context.Context, appointmentID string, result DistributionResult) error {
	f.applyCalls++
	return f.applyErr
}

func (f *fakeGateway) Configs(ctx context.Context) ([]DistributionConfig, error) {
	out := make([]DistributionConfig, 0, len(f.configs))
	for _, cfg := range f.configs {
		out = append(out, cfg)
	}
	return out, nil
}

func (f *fakeGateway) Config(ctx context.Context, id string) (DistributionConfig, error) {
	cfg, ok := f.configs[id]
	if !ok {
		return DistributionConfig{}, &restclient.APIError{Status: 404, Message: "config not found"}
	}
	return cfg, nil
}

func (f *fakeGateway) CreateConfig(ctx context.Context, cfg DistributionConfig) (DistributionConfig, error) {
	cfg.ID = "cfg-new"
	f.configs[cfg.ID] = cfg
	return cfg, nil
}

func (f *fakeGateway) UpdateConfig(ctx context.Context, cfg DistributionConfig) (DistributionConfig, error) {
	f.configs[cfg.ID] = cfg
	return cfg, nil
}

func (f *fakeGateway) Summaries(ctx context.Context, from, to string) ([]EarningsSummary, error) {
	return nil, nil
}

type staticSettings struct {
	minimumFee float64
}

func (s staticSettings) MinimumSessionFee(ctx context.Context) (float64, error) {
	return s.minimumFee, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(gw *fakeGateway) *Service {
	gw.minimumFee = 300
	if gw.configs == nil {
		gw.configs = map[string]DistributionConfig{
			"cfg-1": {ID: "cfg-1", Name: "standard", PercentSplit: standardSplit},
		}
	}
	return NewService(gw, staticSettings{minimumFee: 300}, testLogger())
}

func TestCalculateWithSavedConfig(t *testing.T) {
	gw := &fakeGateway{}
	svc := newTestService(gw)

	result, err := svc.Calculate(context.Background(), CalculationInput{
		AppointmentID: "appt-1",
		Fee:           1200,
		ConfigID:      "cfg-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 450.00, result.TherapistAmount)
	assert.Equal(t, 1, gw.calculateCalls)
}

func TestCalculateManualSplitSumRejectedBeforeNetwork(t *testing.T) {
	gw := &fakeGateway{}
	svc := newTestService(gw)

	_, err := svc.Calculate(context.Background(), CalculationInput{
		AppointmentID: "appt-1",
		Fee:           1200,
		Manual:        &PercentSplit{AdminPct: 40, TherapistPct: 40, DoctorPct: 40},
	})
	assert.ErrorIs(t, err, ErrSplitSumNotHundred)
	assert.Zero(t, gw.calculateCalls, "a bad split must never reach the API")
}

func TestCalculateValidatesInput(t *testing.T) {
	gw := &fakeGateway{}
	svc := newTestService(gw)

	// Missing appointment and non-positive fee.
	_, err := svc.Calculate(context.Background(), CalculationInput{Fee: -5, ConfigID: "cfg-1"})
	require.Error(t, err)
	assert.Zero(t, gw.calculateCalls)
}

func TestCalculateUnknownConfig(t *testing.T) {
	gw := &fakeGateway{}
	svc := newTestService(gw)

	_, err := svc.Calculate(context.Background(), CalculationInput{
		AppointmentID: "appt-1",
		Fee:           1200,
		ConfigID:      "missing",
	})
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestApplyConflictSurfacesAsAlreadyApplied(t *testing.T) {
	gw := &fakeGateway{applyErr: &restclient.APIError{Status: 409, Message: "already applied"}}
	svc := newTestService(gw)

	err := svc.Apply(context.Background(), "appt-1", DistributionResult{Total: 1200})
	assert.ErrorIs(t, err, ErrAlreadyApplied)
}

func TestSaveConfigValidatesSplit(t *testing.T) {
	gw := &fakeGateway{}
	svc := newTestService(gw)

	_, err := svc.SaveConfig(context.Background(), DistributionConfig{
		Name:         "broken",
		PercentSplit: PercentSplit{AdminPct: 10, TherapistPct: 10, DoctorPct: 10},
	})
	assert.ErrorIs(t, err, ErrSplitSumNotHundred)

	saved, err := svc.SaveConfig(context.Background(), DistributionConfig{
		Name:         "even",
		PercentSplit: PercentSplit{AdminPct: 30, TherapistPct: 40, DoctorPct: 30, PlatformFeePct: 2},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
}
