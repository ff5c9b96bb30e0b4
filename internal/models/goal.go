package models

import "time"

// GoalStatus enumerates the lifecycle states of a goal. No transition graph
// is enforced: any permitted caller may set any status.
type GoalStatus string

const (
	GoalDraft      GoalStatus = "Draft"
	GoalInProgress GoalStatus = "InProgress"
	GoalCompleted  GoalStatus = "Completed"
	GoalCancelled  GoalStatus = "Cancelled"
)

// Valid reports whether the status is a recognised literal.
func (s GoalStatus) Valid() bool {
	switch s {
	case GoalDraft, GoalInProgress, GoalCompleted, GoalCancelled:
		return true
	}
	return false
}

// Goal is a development goal owned by exactly one employee.
type Goal struct {
	ID          int64      `db:"id" json:"id"`
	EmployeeID  int64      `db:"employee_id" json:"employee_id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Status      GoalStatus `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// GoalWithProgress augments a goal with task completion aggregates.
type GoalWithProgress struct {
	Goal
	TotalTasks     int `db:"total_tasks" json:"total_tasks"`
	CompletedTasks int `db:"completed_tasks" json:"completed_tasks"`
}

// CreateGoalRequest is the payload for creating a goal.
type CreateGoalRequest struct {
	Title       string `json:"title" validate:"required,max=500"`
	Description string `json:"description" validate:"max=2000"`
}

// UpdateGoalRequest is the payload for updating a goal.
type UpdateGoalRequest struct {
	Title       string     `json:"title" validate:"required,max=500"`
	Description string     `json:"description" validate:"max=2000"`
	Status      GoalStatus `json:"status" validate:"required"`
}
