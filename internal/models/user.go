package models

import "time"

// UserRole represents the available roles for the RBAC system. A user holds exactly one.
type UserRole string

const (
	RoleAdmin       UserRole = "ADMIN"
	RolePastor      UserRole = "PASTOR"
	RoleTreasury    UserRole = "TESOURARIA"
	RoleGroupLeader UserRole = "COORD_GRUPOS"
	RoleReception   UserRole = "RECEPCAO"
	RoleMember      UserRole = "MEMBRO"
)

// Roles lists every declared role in display order.
var Roles = []UserRole{RoleAdmin, RolePastor, RoleTreasury, RoleGroupLeader, RoleReception, RoleMember}

// User represents an application user stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         UserRole   `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
