package models

import (
	"time"
)

// Message types exchanged with monitoring agents over the socket connection.
const (
	// Inbound (agent -> backend)
	MessageTypeComputerStatus  = "computer_status_v1"
	MessageTypeSessionStarted  = "session_started_v1"
	MessageTypeSessionActivity = "session_activity_v1"
	MessageTypeSessionEnded    = "session_ended_v1"

	// Outbound (backend -> agent)
	MessageTypeStartMonitoring = "start_monitoring_v1"
	MessageTypeStopMonitoring  = "stop_monitoring_v1"
)

type BaseMessage struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// ComputerStatusPayload is the agent's heartbeat-with-status report.
// Status is one of online/offline/maintenance; an explicit offline report is
// authoritative and must not be overridden by a late-arriving heartbeat.
type ComputerStatusPayload struct {
	ComputerID string `json:"computer_id"`
	Name       string `json:"name"`
	IPAddress  string `json:"ip_address"`
	Status     string `json:"status"`
}

type SessionStartedPayload struct {
	SessionID       string    `json:"session_id"`
	ComputerID      string    `json:"computer_id"`
	ComputerName    string    `json:"computer_name"`
	UserName        string    `json:"user_name"`
	StartedAt       time.Time `json:"started_at"`
	CurrentActivity string    `json:"current_activity"`
}

type SessionActivityPayload struct {
	SessionID       string `json:"session_id"`
	CurrentActivity string `json:"current_activity"`
}

type SessionEndedPayload struct {
	SessionID string    `json:"session_id"`
	EndedAt   time.Time `json:"ended_at"`
}

// StartMonitoringPayload and StopMonitoringPayload carry the queued command
// to the agent. The agent deletes the command row once applied.
type StartMonitoringPayload struct {
	CommandID  string    `json:"command_id"`
	ComputerID string    `json:"computer_id"`
	IssuedAt   time.Time `json:"issued_at"`
}

type StopMonitoringPayload struct {
	CommandID  string    `json:"command_id"`
	ComputerID string    `json:"computer_id"`
	IssuedAt   time.Time `json:"issued_at"`
}
