// Package liveness is the deterministic engine behind the dashboard: it
// decides whether a computer is online, computes session elapsed time across
// pause/resume cycles, filters sessions down to the user-visible set and
// aggregates everything into dashboard counters. It is pure - every function
// takes its inputs and "now" explicitly and performs no I/O, so callers
// re-evaluate it on their own polling cadence.
package liveness

import (
	"time"

	"pmbackend/models"
)

// Status is the derived liveness state of a computer.
type Status string

const (
	StatusOnline      Status = "online"
	StatusOffline     Status = "offline"
	StatusMaintenance Status = "maintenance"
)

// DefaultOnlineThreshold is how stale a heartbeat may be before a computer
// counts as offline. Chosen to exceed the slowest configured agent sync
// interval with margin.
const DefaultOnlineThreshold = 90 * time.Second

// Evaluator holds the liveness tuning. The zero value uses
// DefaultOnlineThreshold.
type Evaluator struct {
	OnlineThreshold time.Duration
}

func NewEvaluator(onlineThreshold time.Duration) Evaluator {
	return Evaluator{OnlineThreshold: onlineThreshold}
}

func (e Evaluator) threshold() time.Duration {
	if e.OnlineThreshold <= 0 {
		return DefaultOnlineThreshold
	}
	return e.OnlineThreshold
}

// IsOnline reports whether a computer counts as online given its last
// heartbeat and explicitly reported status. An explicit offline report is
// authoritative: it is never overridden by a heartbeat that arrived late.
// Maintenance is not a boolean concern - callers that care about it must use
// ComputeStatus; IsOnline falls through to heartbeat age for it.
func (e Evaluator) IsOnline(lastSeenAt time.Time, explicit models.ComputerStatus, now time.Time) bool {
	if explicit == models.ComputerStatusOffline {
		return false
	}
	if lastSeenAt.IsZero() {
		// Never seen a heartbeat - fail closed.
		return false
	}
	return now.Sub(lastSeenAt) <= e.threshold()
}

// ComputeStatus derives the effective ternary status of a computer.
// Maintenance always wins, an explicit offline is returned verbatim,
// everything else defers to the heartbeat-age check.
func (e Evaluator) ComputeStatus(explicit models.ComputerStatus, lastSeenAt time.Time, now time.Time) Status {
	switch explicit {
	case models.ComputerStatusMaintenance:
		return StatusMaintenance
	case models.ComputerStatusOffline:
		return StatusOffline
	}
	if e.IsOnline(lastSeenAt, explicit, now) {
		return StatusOnline
	}
	return StatusOffline
}
