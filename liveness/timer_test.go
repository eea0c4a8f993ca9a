package liveness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pmbackend/models"
)

func activeSession(startedAt time.Time) models.Session {
	return models.Session{
		ID:         "s_01G0EZ1XTM37C5X11SQTDNCTM1",
		ComputerID: "c_01G0EZ1XTM37C5X11SQTDNCTM1",
		StartedAt:  startedAt,
		RunState:   models.SessionRunStateActive,
	}
}

func TestElapsedMonotonicWhileActive(t *testing.T) {
	startedAt := testNow.Add(-10 * time.Minute)

	t1 := testNow
	t2 := testNow.Add(42 * time.Second)

	assert.GreaterOrEqual(t,
		Elapsed(startedAt, nil, t2),
		Elapsed(startedAt, nil, t1))
	assert.Equal(t, 10*time.Minute, Elapsed(startedAt, nil, t1))
}

func TestElapsedFrozenWhilePaused(t *testing.T) {
	startedAt := testNow.Add(-10 * time.Minute)
	pausedAt := testNow.Add(-4 * time.Minute)

	// Query at wildly different times - a paused session never advances.
	for _, queryAt := range []time.Time{testNow, testNow.Add(time.Hour), testNow.Add(240 * time.Hour)} {
		_ = queryAt // Elapsed does not consult "now" when pausedAt is set
		assert.Equal(t, 6*time.Minute, Elapsed(startedAt, &pausedAt, queryAt))
	}
}

func TestElapsedClampsNegative(t *testing.T) {
	startedAt := testNow
	pausedAt := testNow.Add(-time.Minute) // bad data: paused before it started

	assert.Equal(t, time.Duration(0), Elapsed(startedAt, &pausedAt, testNow))

	// Same clamp for a start time in the future.
	assert.Equal(t, time.Duration(0), Elapsed(testNow.Add(time.Hour), nil, testNow))
}

func TestElapsedMissingStartedAt(t *testing.T) {
	// Malformed record: no start time. Must render as zero, never panic -
	// this feeds a live UI countdown.
	assert.Equal(t, time.Duration(0), Elapsed(time.Time{}, nil, testNow))
}

func TestPauseRecordsBothFields(t *testing.T) {
	session := activeSession(testNow.Add(-15 * time.Minute))

	paused := Pause(session, testNow)

	assert.Equal(t, models.SessionRunStatePaused, paused.RunState)
	require.NotNil(t, paused.PausedAt)
	require.NotNil(t, paused.ElapsedAtPauseMS)
	assert.Equal(t, testNow, *paused.PausedAt)
	assert.Equal(t, (15 * time.Minute).Milliseconds(), *paused.ElapsedAtPauseMS)

	// The input is untouched - the engine returns new derived values.
	assert.Equal(t, models.SessionRunStateActive, session.RunState)
	assert.Nil(t, session.PausedAt)
}

func TestPauseIdempotent(t *testing.T) {
	session := activeSession(testNow.Add(-15 * time.Minute))

	paused := Pause(session, testNow)
	pausedAgain := Pause(paused, testNow.Add(time.Hour))

	assert.Equal(t, paused, pausedAgain)
}

func TestResumeRequiresPaused(t *testing.T) {
	session := activeSession(testNow.Add(-time.Minute))

	_, err := Resume(session, testNow)
	assert.ErrorIs(t, err, ErrNotPaused)
}

func TestPauseResumeRoundTripPreservesElapsed(t *testing.T) {
	const active = 20 * time.Minute
	session := activeSession(testNow.Add(-active))

	paused := Pause(session, testNow)

	// Sit paused for a while, then resume.
	resumeAt := testNow.Add(3 * time.Hour)
	resumed, err := Resume(paused, resumeAt)
	require.NoError(t, err)

	assert.Equal(t, models.SessionRunStateActive, resumed.RunState)
	assert.Nil(t, resumed.PausedAt)
	assert.Nil(t, resumed.ElapsedAtPauseMS)
	assert.Equal(t, active, Elapsed(resumed.StartedAt, nil, resumeAt))
	assert.False(t, resumed.StartedAt.After(resumeAt), "StartedAt must never land in the future")
}

func TestResumeFallsBackToPausedAtForOldRecords(t *testing.T) {
	// Records written before elapsed-at-pause existed only carry pausedAt.
	startedAt := testNow.Add(-30 * time.Minute)
	pausedAt := testNow.Add(-10 * time.Minute)
	session := models.Session{
		StartedAt: startedAt,
		PausedAt:  &pausedAt,
		RunState:  models.SessionRunStatePaused,
	}

	resumed, err := Resume(session, testNow)
	require.NoError(t, err)

	assert.Equal(t, 20*time.Minute, Elapsed(resumed.StartedAt, nil, testNow))
}

func TestResumeClampsFutureStartedAt(t *testing.T) {
	// Clock-skewed record claims more elapsed time than physically possible
	// relative to the resuming clock - negative elapsed must clamp.
	negative := int64(-5000)
	pausedAt := testNow.Add(-time.Minute)
	session := models.Session{
		StartedAt:        testNow.Add(time.Hour), // started "in the future"
		PausedAt:         &pausedAt,
		ElapsedAtPauseMS: &negative,
		RunState:         models.SessionRunStatePaused,
	}

	resumed, err := Resume(session, testNow)
	require.NoError(t, err)

	assert.False(t, resumed.StartedAt.After(testNow))
	assert.Equal(t, time.Duration(0), Elapsed(resumed.StartedAt, nil, testNow))
}
