package models

import (
	"time"
)

type UserRole string

const (
	UserRoleMember UserRole = "member"
	UserRoleAdmin  UserRole = "admin"
)

type User struct {
	ID             string    `db:"id"               json:"id"`
	AuthProvider   string    `db:"auth_provider"    json:"auth_provider"`
	AuthProviderID string    `db:"auth_provider_id" json:"auth_provider_id"`
	Email          string    `db:"email"            json:"email"`
	OrganizationID string    `db:"organization_id"  json:"organization_id"`
	Role           UserRole  `db:"role"             json:"role"`
	CreatedAt      time.Time `db:"created_at"       json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"       json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
