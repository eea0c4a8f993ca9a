package models

import (
	"time"
)

type CommandType string

const (
	CommandTypeStartMonitoring CommandType = "start_monitoring"
	CommandTypeStopMonitoring  CommandType = "stop_monitoring"
)

// Command is an append-only queue row for a remote agent. It is created by a
// dashboard action and deleted when the agent consumes it; there is no
// acknowledgement channel and no retry state - delivery is best-effort.
type Command struct {
	ID             string      `db:"id"              json:"id"`
	OrganizationID string      `db:"organization_id" json:"organization_id"`
	ComputerID     string      `db:"computer_id"     json:"computer_id"`
	Type           CommandType `db:"type"            json:"type"`
	IssuedAt       time.Time   `db:"issued_at"       json:"issued_at"`
}
