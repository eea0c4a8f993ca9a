package api

import (
	"time"
)

// UserModel represents the user data returned by the API
type UserModel struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	OrganizationID string    `json:"organization_id"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ComputerModel is a computer with its derived liveness status folded in -
// the stored explicit status alone is not what users should see.
type ComputerModel struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	IPAddress    string    `json:"ip_address"`
	Status       string    `json:"status"`
	LastSeenAt   time.Time `json:"last_seen_at"`
	RegisteredAt time.Time `json:"registered_at"`
}

// SessionModel is a visible session with its elapsed time computed at
// response time. ElapsedMS is frozen while the session is paused.
type SessionModel struct {
	ID              string    `json:"id"`
	ComputerID      string    `json:"computer_id"`
	ComputerName    string    `json:"computer_name"`
	UserName        string    `json:"user_name"`
	StartedAt       time.Time `json:"started_at"`
	CurrentActivity string    `json:"current_activity"`
	RunState        string    `json:"run_state"`
	ElapsedMS       int64     `json:"elapsed_ms"`
}

// HistorySessionModel represents a completed session returned by the API
type HistorySessionModel struct {
	ID                   string    `json:"id"`
	ComputerID           string    `json:"computer_id"`
	ComputerName         string    `json:"computer_name"`
	UserName             string    `json:"user_name"`
	StartedAt            time.Time `json:"started_at"`
	EndedAt              time.Time `json:"ended_at"`
	TotalDurationMinutes int       `json:"total_duration_minutes"`
	Day                  string    `json:"day"`
}

// NotificationModel represents a notification returned by the API
type NotificationModel struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Message      string    `json:"message"`
	ComputerID   *string   `json:"computer_id,omitempty"`
	Acknowledged bool      `json:"acknowledged"`
	Read         bool      `json:"read"`
	CreatedAt    time.Time `json:"created_at"`
}

// DashboardStatsModel carries the aggregated dashboard counters
type DashboardStatsModel struct {
	ActiveComputers int `json:"active_computers"`
	ActiveUsers     int `json:"active_users"`
	TodaySessions   int `json:"today_sessions"`
	OpenAlerts      int `json:"open_alerts"`
}
