package liveness

import (
	"strings"
	"time"

	"pmbackend/models"
	"pmbackend/utils"
)

// VisibleSessions filters raw session records down to the set the dashboard
// should show. A paused session is always visible - the user explicitly
// paused it and should keep seeing it until they resume or close it. Any
// other session is visible only while its owning computer is online. A
// session whose computer cannot be resolved at all is stale and excluded.
func (e Evaluator) VisibleSessions(
	sessions []*models.Session,
	computers []*models.Computer,
	now time.Time,
) []*models.Session {
	byID := make(map[string]*models.Computer, len(computers))
	for _, computer := range computers {
		byID[computer.ID] = computer
	}

	visible := make([]*models.Session, 0, len(sessions))
	for _, session := range sessions {
		if session.RunState == models.SessionRunStatePaused {
			visible = append(visible, session)
			continue
		}

		computer := resolveComputer(session, byID, computers)
		if computer == nil {
			continue
		}
		if e.ComputeStatus(computer.ExplicitStatus, computer.LastSeenAt, now) != StatusOnline {
			continue
		}
		visible = append(visible, session)
	}
	return visible
}

// resolveComputer matches a session to its computer by ID, falling back to a
// name-based match only when no ID match exists. The name fallback is a
// compatibility shim for legacy records that predate normalized computer IDs;
// it deliberately stays as loose equals-or-contains and is not generalized.
func resolveComputer(
	session *models.Session,
	byID map[string]*models.Computer,
	computers []*models.Computer,
) *models.Computer {
	if computer, ok := byID[session.ComputerID]; ok {
		return computer
	}

	sessionName := utils.NormalizeComputerName(session.ComputerName)
	if sessionName == "" {
		return nil
	}
	for _, computer := range computers {
		computerName := utils.NormalizeComputerName(computer.Name)
		if computerName == sessionName || strings.Contains(computerName, sessionName) {
			return computer
		}
	}
	return nil
}
