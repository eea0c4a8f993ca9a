package models

import (
	"time"
)

type NotificationType string

const (
	NotificationTypeComputerOffline NotificationType = "computer_offline"
	NotificationTypeSessionBlocked  NotificationType = "session_blocked"
	NotificationTypeAgentLinked     NotificationType = "agent_linked"
	NotificationTypeGeneric         NotificationType = "generic"
)

// Notification rows written by old agent versions may carry string-typed
// booleans in acknowledged/read, hence LegacyBool.
type Notification struct {
	ID             string           `db:"id"              json:"id"`
	OrganizationID string           `db:"organization_id" json:"organization_id"`
	Type           NotificationType `db:"type"            json:"type"`
	Message        string           `db:"message"         json:"message"`
	ComputerID     *string          `db:"computer_id"     json:"computer_id,omitempty"`
	Acknowledged   LegacyBool       `db:"acknowledged"    json:"acknowledged"`
	Read           LegacyBool       `db:"read"            json:"read"`
	CreatedAt      time.Time        `db:"created_at"      json:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at"      json:"updated_at"`
}
