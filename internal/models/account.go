package models

import "time"

// Role identifies which partition an account belongs to. Resolution
// priority is admin > academic admin > department admin > researcher.
type Role string

const (
	RoleAdmin           Role = "ADMIN"
	RoleAcademicAdmin   Role = "ACADEMIC_ADMIN"
	RoleDepartmentAdmin Role = "DEPARTMENT_ADMIN"
	RoleResearcher      Role = "RESEARCHER"
)

// RolePriority lists partitions in resolution order, highest first.
var RolePriority = []Role{RoleAdmin, RoleAcademicAdmin, RoleDepartmentAdmin, RoleResearcher}

// PartitionTable maps a role to its partition table name.
func PartitionTable(role Role) string {
	switch role {
	case RoleAdmin:
		return "admins"
	case RoleAcademicAdmin:
		return "academic_admins"
	case RoleDepartmentAdmin:
		return "department_admins"
	case RoleResearcher:
		return "researchers"
	default:
		return ""
	}
}

// Account is the normalized record shared by all four partitions. Role is
// derived from partition membership, never stored redundantly. ScholarID is
// the canonical scholar identifier; legacy rows carrying only the old
// column are normalized at the repository boundary.
type Account struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	DisplayName  string     `db:"display_name" json:"display_name"`
	College      string     `db:"college" json:"college"`
	Department   string     `db:"department" json:"department"`
	ScholarID    string     `db:"scholar_id" json:"scholar_id"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`

	// Role is populated by the resolver, not by table scans.
	Role Role `db:"-" json:"role,omitempty"`
}

// Identity is the resolver output consumed by every protected view.
type Identity struct {
	AccountID   string `json:"account_id"`
	Role        Role   `json:"role"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	College     string `json:"college"`
	Department  string `json:"department"`
	ScholarID   string `json:"scholar_id"`
}

// AccountFilter captures filtering criteria for listing accounts.
type AccountFilter struct {
	Role       *Role
	Department string
	Search     string
	Page       int
	PageSize   int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
