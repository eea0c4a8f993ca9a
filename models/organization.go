package models

import (
	"time"
)

type Organization struct {
	ID                        string     `db:"id"                            json:"id"`
	AgentSecretKey            *string    `db:"agent_secret_key"              json:"-"`
	AgentSecretKeyGeneratedAt *time.Time `db:"agent_secret_key_generated_at" json:"agent_secret_key_generated_at"`
	CreatedAt                 time.Time  `db:"created_at"                    json:"created_at"`
	UpdatedAt                 time.Time  `db:"updated_at"                    json:"updated_at"`
}
