package liveness

import (
	"time"

	"pmbackend/models"
)

// TenantSnapshot is the raw material for one tenant's dashboard counters:
// the current active sessions, the computers they run on, today's slice of
// session history and the open notifications.
type TenantSnapshot struct {
	Sessions      []*models.Session
	Computers     []*models.Computer
	History       []*models.HistorySession
	Notifications []*models.Notification
}

// Counters are the derived dashboard numbers. They are a projection,
// recomputed from snapshots on every evaluation - never persisted.
type Counters struct {
	ActiveComputers int `json:"active_computers"`
	ActiveUsers     int `json:"active_users"`
	TodaySessions   int `json:"today_sessions"`
	OpenAlerts      int `json:"open_alerts"`
}

// Add folds another tenant's counters in. The admin view is exactly this:
// the same Aggregate run per tenant, summed - never a second algorithm.
func (c Counters) Add(other Counters) Counters {
	return Counters{
		ActiveComputers: c.ActiveComputers + other.ActiveComputers,
		ActiveUsers:     c.ActiveUsers + other.ActiveUsers,
		TodaySessions:   c.TodaySessions + other.TodaySessions,
		OpenAlerts:      c.OpenAlerts + other.OpenAlerts,
	}
}

// DayOf renders the day key used by session history records.
func DayOf(t time.Time) string {
	return t.Format("2006-01-02")
}

// Aggregate folds a tenant snapshot into dashboard counters.
//
//   - ActiveComputers: distinct computers among visible, non-paused sessions.
//   - ActiveUsers: count of visible, non-paused sessions (one per logged-in
//     user session, not deduplicated by user identity).
//   - TodaySessions: history sessions dated today plus every currently
//     visible session, regardless of its stored date.
//   - OpenAlerts: unacknowledged notifications. Legacy string-typed booleans
//     were normalized at the store boundary, so a plain check suffices here.
func (e Evaluator) Aggregate(snapshot TenantSnapshot, today string, now time.Time) Counters {
	visible := e.VisibleSessions(snapshot.Sessions, snapshot.Computers, now)

	var counters Counters
	activeComputerIDs := make(map[string]struct{})
	for _, session := range visible {
		if session.RunState == models.SessionRunStatePaused {
			continue
		}
		counters.ActiveUsers++
		activeComputerIDs[session.ComputerID] = struct{}{}
	}
	counters.ActiveComputers = len(activeComputerIDs)

	counters.TodaySessions = len(visible)
	for _, history := range snapshot.History {
		if history.Day == today {
			counters.TodaySessions++
		}
	}

	for _, notification := range snapshot.Notifications {
		if !notification.Acknowledged.Bool() {
			counters.OpenAlerts++
		}
	}

	return counters
}
