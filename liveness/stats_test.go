package liveness

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pmbackend/models"
)

func TestAggregateSingleTenant(t *testing.T) {
	e := NewEvaluator(90 * time.Second)
	today := DayOf(testNow)

	snapshot := TenantSnapshot{
		Computers: []*models.Computer{
			testComputer("c_1", "PC-1", testNow.Add(-5*time.Second), models.ComputerStatusOnline),
			testComputer("c_2", "PC-2", testNow.Add(-300*time.Second), models.ComputerStatusOnline),
		},
		Sessions: []*models.Session{
			testSession("s_1", "c_1", "PC-1", models.SessionRunStateActive),
			testSession("s_2", "c_1", "PC-1", models.SessionRunStateIdle),
			testSession("s_3", "c_2", "PC-2", models.SessionRunStateActive), // stale computer
			testSession("s_4", "c_2", "PC-2", models.SessionRunStatePaused),
		},
		History: []*models.HistorySession{
			{ID: "h_1", Day: today},
			{ID: "h_2", Day: "2026-03-13"},
		},
		Notifications: []*models.Notification{
			{ID: "n_1", Acknowledged: false},
			{ID: "n_2", Acknowledged: true},
		},
	}

	counters := e.Aggregate(snapshot, today, testNow)

	// Visible: s_1, s_2 (online computer), s_4 (paused). Non-paused visible
	// sessions: s_1, s_2, both on c_1.
	assert.Equal(t, 1, counters.ActiveComputers)
	assert.Equal(t, 2, counters.ActiveUsers)
	// 1 history row today + 3 visible sessions.
	assert.Equal(t, 4, counters.TodaySessions)
	assert.Equal(t, 1, counters.OpenAlerts)
}

func TestAggregateMultiTenantFold(t *testing.T) {
	e := NewEvaluator(90 * time.Second)
	today := DayOf(testNow)

	// Tenant A: one visible active session on one computer.
	tenantA := TenantSnapshot{
		Computers: []*models.Computer{
			testComputer("c_a", "A-PC", testNow, models.ComputerStatusOnline),
		},
		Sessions: []*models.Session{
			testSession("s_a", "c_a", "A-PC", models.SessionRunStateActive),
		},
	}
	// Tenant B: no visible sessions, two unacknowledged notifications.
	tenantB := TenantSnapshot{
		Notifications: []*models.Notification{
			{ID: "n_1", Acknowledged: false},
			{ID: "n_2", Acknowledged: false},
		},
	}

	combined := e.Aggregate(tenantA, today, testNow).
		Add(e.Aggregate(tenantB, today, testNow))

	assert.Equal(t, 1, combined.ActiveComputers)
	assert.Equal(t, 1, combined.ActiveUsers)
	assert.Equal(t, 2, combined.OpenAlerts)
}

func TestAggregateFoldMatchesSumOfParts(t *testing.T) {
	e := NewEvaluator(0)
	today := DayOf(testNow)

	snapshots := []TenantSnapshot{
		{
			Computers: []*models.Computer{testComputer("c_1", "PC", testNow, models.ComputerStatusOnline)},
			Sessions:  []*models.Session{testSession("s_1", "c_1", "PC", models.SessionRunStateActive)},
			History:   []*models.HistorySession{{ID: "h_1", Day: today}},
		},
		{
			Notifications: []*models.Notification{{ID: "n_1", Acknowledged: false}},
		},
		{
			Computers: []*models.Computer{testComputer("c_2", "PC2", testNow, models.ComputerStatusOnline)},
			Sessions:  []*models.Session{testSession("s_2", "c_2", "PC2", models.SessionRunStatePaused)},
		},
	}

	var folded Counters
	for _, snapshot := range snapshots {
		folded = folded.Add(e.Aggregate(snapshot, today, testNow))
	}

	assert.Equal(t, Counters{
		ActiveComputers: 1,
		ActiveUsers:     1,
		TodaySessions:   3, // h_1 + s_1 + s_2(paused but visible)
		OpenAlerts:      1,
	}, folded)
}

func TestAggregateCountsLegacyStringBooleansIdentically(t *testing.T) {
	e := NewEvaluator(0)

	// One notification deserialized from a legacy row with a string-typed
	// boolean, one from a modern row. Both acknowledged - neither counts.
	var legacy, modern models.Notification
	require.NoError(t, json.Unmarshal([]byte(`{"id":"n_1","acknowledged":"true"}`), &legacy))
	require.NoError(t, json.Unmarshal([]byte(`{"id":"n_2","acknowledged":true}`), &modern))

	legacyCounters := e.Aggregate(TenantSnapshot{
		Notifications: []*models.Notification{&legacy},
	}, DayOf(testNow), testNow)
	modernCounters := e.Aggregate(TenantSnapshot{
		Notifications: []*models.Notification{&modern},
	}, DayOf(testNow), testNow)

	assert.Equal(t, modernCounters.OpenAlerts, legacyCounters.OpenAlerts)
	assert.Equal(t, 0, legacyCounters.OpenAlerts)
}

func TestDayOf(t *testing.T) {
	assert.Equal(t, "2026-03-14", DayOf(testNow))
}
