package models

import "time"

// TaskStatus enumerates the lifecycle states of a task.
type TaskStatus string

const (
	TaskNotStarted TaskStatus = "NotStarted"
	TaskInProgress TaskStatus = "InProgress"
	TaskCompleted  TaskStatus = "Completed"
	TaskBlocked    TaskStatus = "Blocked"
)

// Valid reports whether the status is a recognised literal.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskNotStarted, TaskInProgress, TaskCompleted, TaskBlocked:
		return true
	}
	return false
}

// Task is an ordered step within a goal. CompletedAt is non-nil exactly when
// Status is Completed; the task service maintains this on every status write.
type Task struct {
	ID          int64      `db:"id" json:"id"`
	GoalID      int64      `db:"goal_id" json:"goal_id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Status      TaskStatus `db:"status" json:"status"`
	SortOrder   int        `db:"sort_order" json:"order"`
	DueDate     *time.Time `db:"due_date" json:"due_date,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// CreateTaskRequest is the payload for creating a task. DueDate accepts
// RFC 3339 timestamps as well as timezone-less values, which are read as UTC
// wall-clock time.
type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required,max=500"`
	Description string `json:"description" validate:"max=2000"`
	DueDate     string `json:"due_date" validate:"omitempty"`
}

// UpdateTaskRequest is the payload for updating a task.
type UpdateTaskRequest struct {
	Title       string     `json:"title" validate:"required,max=500"`
	Description string     `json:"description" validate:"max=2000"`
	Status      TaskStatus `json:"status" validate:"required"`
	DueDate     string     `json:"due_date" validate:"omitempty"`
}

// ReorderTasksRequest carries the caller-supplied task id sequence.
type ReorderTasksRequest struct {
	TaskIDs []int64 `json:"task_ids" validate:"required"`
}
