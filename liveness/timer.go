package liveness

import (
	"errors"
	"time"

	"pmbackend/models"
)

// ErrNotPaused is returned when resuming a session that is not paused.
var ErrNotPaused = errors.New("session is not paused")

// Elapsed computes how long a session has been running. A paused session is
// frozen at pausedAt - startedAt; a running one keeps counting against now.
// The result is clamped to zero: clock skew or malformed records must never
// surface as negative time, this feeds a live UI countdown.
func Elapsed(startedAt time.Time, pausedAt *time.Time, now time.Time) time.Duration {
	if startedAt.IsZero() {
		return 0
	}

	end := now
	if pausedAt != nil && !pausedAt.IsZero() {
		end = *pausedAt
	}

	elapsed := end.Sub(startedAt)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// SessionElapsed is Elapsed applied to a session record.
func SessionElapsed(session models.Session, now time.Time) time.Duration {
	return Elapsed(session.StartedAt, session.PausedAt, now)
}

// Pause freezes a session at now. It records both the pause timestamp and
// the elapsed duration at that moment so resume can survive records whose
// clocks disagree. Pausing an already-paused session is a no-op.
func Pause(session models.Session, now time.Time) models.Session {
	if session.RunState == models.SessionRunStatePaused {
		return session
	}

	elapsedMS := Elapsed(session.StartedAt, nil, now).Milliseconds()
	pausedAt := now

	session.RunState = models.SessionRunStatePaused
	session.PausedAt = &pausedAt
	session.ElapsedAtPauseMS = &elapsedMS
	return session
}

// Resume restarts a paused session, rewriting StartedAt to now minus the
// elapsed time accumulated before the pause. That rewrite is what lets a
// single Elapsed formula work uniformly for active and resumed sessions
// without a separate cumulative-duration field.
func Resume(session models.Session, now time.Time) (models.Session, error) {
	if session.RunState != models.SessionRunStatePaused {
		return session, ErrNotPaused
	}

	priorElapsed := resumePriorElapsed(session)

	startedAt := now.Add(-priorElapsed)
	if startedAt.After(now) {
		// Clock skew produced a negative prior elapsed - never place the
		// start time in the future.
		startedAt = now
	}

	session.StartedAt = startedAt
	session.PausedAt = nil
	session.ElapsedAtPauseMS = nil
	session.RunState = models.SessionRunStateActive
	return session, nil
}

// resumePriorElapsed prefers the recorded elapsed-at-pause duration and falls
// back to pausedAt - startedAt for older records that never wrote it.
func resumePriorElapsed(session models.Session) time.Duration {
	if session.ElapsedAtPauseMS != nil && *session.ElapsedAtPauseMS >= 0 {
		return time.Duration(*session.ElapsedAtPauseMS) * time.Millisecond
	}
	if session.PausedAt != nil {
		return Elapsed(session.StartedAt, session.PausedAt, *session.PausedAt)
	}
	return 0
}
