package models

import "time"

// Pairing links a mentor to an employee. The existence of a pairing row is
// the sole grant allowing a mentor to act on that employee's goals and tasks.
type Pairing struct {
	MentorID   int64     `db:"mentor_id" json:"mentor_id"`
	EmployeeID int64     `db:"employee_id" json:"employee_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
