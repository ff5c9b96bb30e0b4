package models

import "time"

// UserRole is the closed set of roles recognised by the portal.
type UserRole string

const (
	RoleMentor   UserRole = "Mentor"
	RoleEmployee UserRole = "Employee"
)

// Valid reports whether the role is one of the recognised literals.
func (r UserRole) Valid() bool {
	return r == RoleMentor || r == RoleEmployee
}

// User represents an application user stored in the users table.
// The role is fixed at registration; there is no promotion path.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         UserRole  `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// UserInfo describes a user in API responses.
type UserInfo struct {
	ID       int64    `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Role     UserRole `json:"role"`
}

// EmployeeSummary is the mentor dashboard view of a paired employee.
type EmployeeSummary struct {
	ID         int64  `db:"id" json:"id"`
	Email      string `db:"email" json:"email"`
	FullName   string `db:"full_name" json:"full_name"`
	TotalGoals int    `db:"total_goals" json:"total_goals"`
	// ActiveGoals counts goals still in Draft or InProgress.
	ActiveGoals int `db:"active_goals" json:"active_goals"`
}
