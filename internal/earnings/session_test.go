package earnings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionForwardTransitions(t *testing.T) {
	svc := newTestService(&fakeGateway{})
	sess := NewSession(svc)
	ctx := context.Background()

	assert.Equal(t, StateIdle, sess.State())

	_, err := sess.Calculate(ctx, "cfg-1", nil)
	assert.ErrorIs(t, err, ErrNoAppointmentSelected)

	err = sess.SelectAppointment("appt-1", 1200)
	assert.ErrorIs(t, err, ErrNoPatientSelected)

	require.NoError(t, sess.SelectPatient("pat-1"))
	assert.Equal(t, StatePatientSelected, sess.State())

	require.NoError(t, sess.SelectAppointment("appt-1", 1200))
	assert.Equal(t, StateAppointmentSelected, sess.State())

	err = sess.Apply(ctx)
	assert.ErrorIs(t, err, ErrNotCalculated)

	result, err := sess.Calculate(ctx, "cfg-1", nil)
	require.NoError(t, err)
	assert.Equal(t, StateCalculated, sess.State())
	assert.Equal(t, 1200.0, result.Total)

	require.NoError(t, sess.Apply(ctx))
	assert.Equal(t, StateApplied, sess.State())
}

func TestSessionSecondApplyRejected(t *testing.T) {
	gw := &fakeGateway{}
	sess := NewSession(newTestService(gw))
	ctx := context.Background()

	require.NoError(t, sess.SelectPatient("pat-1"))
	require.NoError(t, sess.SelectAppointment("appt-1", 800))
	_, err := sess.Calculate(ctx, "cfg-1", nil)
	require.NoError(t, err)

	require.NoError(t, sess.Apply(ctx))
	assert.Equal(t, 1, gw.applyCalls)

	err = sess.Apply(ctx)
	assert.ErrorIs(t, err, ErrAlreadyApplied)
	assert.Equal(t, 1, gw.applyCalls, "second click must not re-submit")
}

func TestSessionReselectDiscardsDownstream(t *testing.T) {
	sess := NewSession(newTestService(&fakeGateway{}))
	ctx := context.Background()

	require.NoError(t, sess.SelectPatient("pat-1"))
	require.NoError(t, sess.SelectAppointment("appt-1", 800))
	_, err := sess.Calculate(ctx, "cfg-1", nil)
	require.NoError(t, err)

	// Reselecting a patient resets the appointment and the calculated result.
	require.NoError(t, sess.SelectPatient("pat-2"))
	assert.Equal(t, StatePatientSelected, sess.State())

	err = sess.Apply(ctx)
	assert.ErrorIs(t, err, ErrNotCalculated)
}

func TestSessionManualSplit(t *testing.T) {
	sess := NewSession(newTestService(&fakeGateway{}))
	ctx := context.Background()

	require.NoError(t, sess.SelectPatient("pat-1"))
	require.NoError(t, sess.SelectAppointment("appt-1", 1000))

	result, err := sess.Calculate(ctx, "", &PercentSplit{
		AdminPct: 20, TherapistPct: 60, DoctorPct: 20, PlatformFeePct: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, 100.0, result.PlatformFee)
	assert.Equal(t, 540.0, result.TherapistAmount)
}

func TestSessionReset(t *testing.T) {
	sess := NewSession(newTestService(&fakeGateway{}))

	require.NoError(t, sess.SelectPatient("pat-1"))
	sess.Reset()
	assert.Equal(t, StateIdle, sess.State())
}
