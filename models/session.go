package models

import (
	"time"
)

type SessionRunState string

const (
	SessionRunStateActive SessionRunState = "active"
	SessionRunStateIdle   SessionRunState = "idle"
	SessionRunStatePaused SessionRunState = "paused"
)

// Session is a live monitoring session reported by a computer's agent.
// PausedAt and ElapsedAtPauseMS are set together when the session is paused
// and cleared together on resume - the resume path rewrites StartedAt so a
// single elapsed formula works for both active and resumed sessions.
type Session struct {
	ID               string          `db:"id"                  json:"id"`
	OrganizationID   string          `db:"organization_id"     json:"organization_id"`
	ComputerID       string          `db:"computer_id"         json:"computer_id"`
	ComputerName     string          `db:"computer_name"       json:"computer_name"`
	UserName         string          `db:"user_name"           json:"user_name"`
	StartedAt        time.Time       `db:"started_at"          json:"started_at"`
	CurrentActivity  string          `db:"current_activity"    json:"current_activity"`
	RunState         SessionRunState `db:"run_state"           json:"run_state"`
	PausedAt         *time.Time      `db:"paused_at"           json:"paused_at,omitempty"`
	ElapsedAtPauseMS *int64          `db:"elapsed_at_pause_ms" json:"elapsed_at_pause_ms,omitempty"`
	CreatedAt        time.Time       `db:"created_at"          json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"          json:"updated_at"`
}

// HistorySession is a completed session. EndedAt and TotalDurationMinutes
// are fixed when the agent reports session end and never mutated afterwards.
type HistorySession struct {
	ID                   string    `db:"id"                     json:"id"`
	OrganizationID       string    `db:"organization_id"        json:"organization_id"`
	ComputerID           string    `db:"computer_id"            json:"computer_id"`
	ComputerName         string    `db:"computer_name"          json:"computer_name"`
	UserName             string    `db:"user_name"              json:"user_name"`
	StartedAt            time.Time `db:"started_at"             json:"started_at"`
	EndedAt              time.Time `db:"ended_at"               json:"ended_at"`
	TotalDurationMinutes int       `db:"total_duration_minutes" json:"total_duration_minutes"`
	Day                  string    `db:"day"                    json:"day"`
	CreatedAt            time.Time `db:"created_at"             json:"created_at"`
}
