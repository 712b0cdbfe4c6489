package earnings

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var standardSplit = PercentSplit{
	AdminPct:       34.36,
	TherapistPct:   38.66,
	DoctorPct:      26.98,
	PlatformFeePct: 3,
}

func TestComputeObservedFixture(t *testing.T) {
	result, err := Compute(1200, standardSplit, 300)
	require.NoError(t, err)

	assert.Equal(t, 1200.0, result.Total)
	assert.Equal(t, 36.0, result.PlatformFee)
	assert.Equal(t, 1164.0, result.DistributableAmount)
	assert.Equal(t, 399.95, result.AdminAmount)
	assert.Equal(t, 450.00, result.TherapistAmount)
	assert.Equal(t, 314.05, result.DoctorAmount)
	assert.False(t, result.BelowThreshold)
	assert.Equal(t, 34.36, result.AdminPct)
}

func TestComputeSumIdentity(t *testing.T) {
	splits := []PercentSplit{
		standardSplit,
		{AdminPct: 25, TherapistPct: 55, DoctorPct: 20, PlatformFeePct: 5},
		{AdminPct: 33.33, TherapistPct: 33.33, DoctorPct: 33.34, PlatformFeePct: 0},
		{AdminPct: 0, TherapistPct: 100, DoctorPct: 0, PlatformFeePct: 10},
		{AdminPct: 50, TherapistPct: 25, DoctorPct: 25, PlatformFeePct: 7.5},
	}
	fees := []float64{350, 499.99, 800, 1200, 1333.33, 9999}

	for _, split := range splits {
		for _, fee := range fees {
			result, err := Compute(fee, split, 300)
			require.NoError(t, err)
			if result.BelowThreshold {
				continue
			}

			// Platform fee plus distributable reconstructs the total exactly.
			assert.InDelta(t, result.Total, result.PlatformFee+result.DistributableAmount, 0.001,
				"fee=%v split=%+v", fee, split)

			// Party amounts sum to the distributable amount modulo independent
			// per-party rounding.
			partySum := result.AdminAmount + result.TherapistAmount + result.DoctorAmount
			assert.LessOrEqual(t, math.Abs(partySum-result.DistributableAmount), 0.02,
				"fee=%v split=%+v", fee, split)
		}
	}
}

func TestComputeBelowThreshold(t *testing.T) {
	result, err := Compute(250, standardSplit, 300)
	require.NoError(t, err)

	assert.True(t, result.BelowThreshold)
	assert.Equal(t, 0.0, result.PlatformFee)
	assert.Equal(t, 0.0, result.AdminAmount)
	assert.Equal(t, 0.0, result.DoctorAmount)
	assert.Equal(t, 250.0, result.TherapistAmount)
	assert.Equal(t, 250.0, result.DistributableAmount)
}

func TestComputeRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		fee     float64
		split   PercentSplit
		wantErr error
	}{
		{"zero fee", 0, standardSplit, ErrFeeNotPositive},
		{"negative fee", -100, standardSplit, ErrFeeNotPositive},
		{"percent above 100", 500, PercentSplit{AdminPct: 120, TherapistPct: -10, DoctorPct: -10}, ErrPercentOutOfRange},
		{"negative percent", 500, PercentSplit{AdminPct: -1, TherapistPct: 61, DoctorPct: 40}, ErrPercentOutOfRange},
		{"sum under 100", 500, PercentSplit{AdminPct: 30, TherapistPct: 30, DoctorPct: 30}, ErrSplitSumNotHundred},
		{"sum over 100", 500, PercentSplit{AdminPct: 40, TherapistPct: 40, DoctorPct: 40}, ErrSplitSumNotHundred},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.fee, tt.split, 300)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestComputeToleratesFloatNoiseInSum(t *testing.T) {
	split := PercentSplit{AdminPct: 33.33, TherapistPct: 33.33, DoctorPct: 33.34}
	_, err := Compute(1000, split, 0)
	assert.NoError(t, err)
}
