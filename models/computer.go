package models

import (
	"time"
)

// ComputerStatus is the status a computer's agent explicitly reports.
// The effective status shown to users is derived by the liveness package,
// which also folds in heartbeat age.
type ComputerStatus string

const (
	ComputerStatusOnline      ComputerStatus = "online"
	ComputerStatusOffline     ComputerStatus = "offline"
	ComputerStatusMaintenance ComputerStatus = "maintenance"
	ComputerStatusUnset       ComputerStatus = ""
)

type Computer struct {
	ID             string         `db:"id"              json:"id"`
	OrganizationID string         `db:"organization_id" json:"organization_id"`
	Name           string         `db:"name"            json:"name"`
	IPAddress      string         `db:"ip_address"      json:"ip_address"`
	ExplicitStatus ComputerStatus `db:"status"          json:"status"`
	LastSeenAt     time.Time      `db:"last_seen_at"    json:"last_seen_at"`
	RegisteredAt   time.Time      `db:"registered_at"   json:"registered_at"`
	CreatedAt      time.Time      `db:"created_at"      json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"      json:"updated_at"`
}
