package liveness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pmbackend/models"
)

func testComputer(id, name string, lastSeen time.Time, status models.ComputerStatus) *models.Computer {
	return &models.Computer{
		ID:             id,
		Name:           name,
		LastSeenAt:     lastSeen,
		ExplicitStatus: status,
	}
}

func testSession(id, computerID, computerName string, runState models.SessionRunState) *models.Session {
	return &models.Session{
		ID:           id,
		ComputerID:   computerID,
		ComputerName: computerName,
		StartedAt:    testNow.Add(-time.Hour),
		RunState:     runState,
	}
}

func sessionIDs(sessions []*models.Session) []string {
	ids := make([]string, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.ID)
	}
	return ids
}

func TestVisibleSessionsLivenessScenario(t *testing.T) {
	e := NewEvaluator(90 * time.Second)

	computers := []*models.Computer{
		testComputer("c_1", "OFFICE-PC-1", testNow.Add(-5*time.Second), models.ComputerStatusOnline),
		testComputer("c_2", "OFFICE-PC-2", testNow.Add(-200*time.Second), models.ComputerStatusOnline),
	}
	sessions := []*models.Session{
		testSession("s_1", "c_1", "OFFICE-PC-1", models.SessionRunStateActive),
		testSession("s_2", "c_2", "OFFICE-PC-2", models.SessionRunStateActive),
		testSession("s_3", "c_2", "OFFICE-PC-2", models.SessionRunStatePaused),
	}

	visible := e.VisibleSessions(sessions, computers, testNow)

	// s_1 backed by a fresh computer: visible. s_2 backed by a stale one:
	// excluded. s_3 is paused: visible despite the stale computer.
	assert.ElementsMatch(t, []string{"s_1", "s_3"}, sessionIDs(visible))
}

func TestVisibleSessionsNoMatchingComputerFailsClosed(t *testing.T) {
	e := NewEvaluator(0)

	sessions := []*models.Session{
		testSession("s_1", "c_gone", "VANISHED-PC", models.SessionRunStateActive),
	}

	visible := e.VisibleSessions(sessions, nil, testNow)
	assert.Empty(t, visible)
}

func TestVisibleSessionsNameFallback(t *testing.T) {
	e := NewEvaluator(0)

	// Legacy session with no usable computer ID; the computer record's name
	// contains the session's computer name.
	computers := []*models.Computer{
		testComputer("c_1", "DESKTOP-4F2K - mlopez", testNow, models.ComputerStatusOnline),
	}
	session := testSession("s_1", "", "desktop-4f2k - mlopez", models.SessionRunStateActive)
	session2 := testSession("s_2", "", "desktop-4f2k", models.SessionRunStateActive)

	visible := e.VisibleSessions([]*models.Session{session, session2}, computers, testNow)
	assert.ElementsMatch(t, []string{"s_1", "s_2"}, sessionIDs(visible))
}

func TestVisibleSessionsIDMatchWinsOverName(t *testing.T) {
	e := NewEvaluator(0)

	// The session's ID resolves to a stale computer; another computer with a
	// matching name is online. The ID match must win: the session stays
	// excluded rather than being misattributed by name.
	computers := []*models.Computer{
		testComputer("c_1", "SHARED-PC", testNow.Add(-time.Hour), models.ComputerStatusOnline),
		testComputer("c_2", "SHARED-PC", testNow, models.ComputerStatusOnline),
	}
	session := testSession("s_1", "c_1", "SHARED-PC", models.SessionRunStateActive)

	visible := e.VisibleSessions([]*models.Session{session}, computers, testNow)
	assert.Empty(t, visible)
}

func TestVisibleSessionsMaintenanceComputerHidesActiveSessions(t *testing.T) {
	e := NewEvaluator(0)

	computers := []*models.Computer{
		testComputer("c_1", "LAB-PC", testNow, models.ComputerStatusMaintenance),
	}
	sessions := []*models.Session{
		testSession("s_1", "c_1", "LAB-PC", models.SessionRunStateActive),
		testSession("s_2", "c_1", "LAB-PC", models.SessionRunStatePaused),
	}

	visible := e.VisibleSessions(sessions, computers, testNow)

	// Maintenance is not online, so the active session hides; the paused
	// session stays visible as always.
	require.Len(t, visible, 1)
	assert.Equal(t, "s_2", visible[0].ID)
}
