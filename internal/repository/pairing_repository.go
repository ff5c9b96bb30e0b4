package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mentorportal/mentorportal-api/internal/models"
)

// PairingRepository reads the mentor-employee pairing table. Pairings are
// seeded externally; no create or delete path exists in the API.
type PairingRepository struct {
	db *sqlx.DB
}

// NewPairingRepository creates a new instance of PairingRepository.
func NewPairingRepository(db *sqlx.DB) *PairingRepository {
	return &PairingRepository{db: db}
}

// IsPaired reports whether the mentor is paired with the employee.
func (r *PairingRepository) IsPaired(ctx context.Context, mentorID, employeeID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM mentor_employees WHERE mentor_id = $1 AND employee_id = $2)`
	var paired bool
	if err := r.db.GetContext(ctx, &paired, query, mentorID, employeeID); err != nil {
		return false, fmt.Errorf("check pairing: %w", err)
	}
	return paired, nil
}

// EmployeeIDs returns the ids of all employees paired with the mentor.
func (r *PairingRepository) EmployeeIDs(ctx context.Context, mentorID int64) ([]int64, error) {
	const query = `SELECT employee_id FROM mentor_employees WHERE mentor_id = $1`
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, mentorID); err != nil {
		return nil, fmt.Errorf("list paired employee ids: %w", err)
	}
	return ids, nil
}

// MentorIDs returns the ids of all mentors paired with the employee.
func (r *PairingRepository) MentorIDs(ctx context.Context, employeeID int64) ([]int64, error) {
	const query = `SELECT mentor_id FROM mentor_employees WHERE employee_id = $1`
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, employeeID); err != nil {
		return nil, fmt.Errorf("list paired mentor ids: %w", err)
	}
	return ids, nil
}

// EmployeeSummaries returns dashboard summaries for the mentor's employees,
// including total and active (Draft or InProgress) goal counts.
func (r *PairingRepository) EmployeeSummaries(ctx context.Context, mentorID int64) ([]models.EmployeeSummary, error) {
	const query = `
SELECT
	u.id,
	u.email,
	u.full_name,
	COUNT(g.id) AS total_goals,
	COUNT(g.id) FILTER (WHERE g.status IN ('Draft', 'InProgress')) AS active_goals
FROM mentor_employees me
JOIN users u ON u.id = me.employee_id
LEFT JOIN goals g ON g.employee_id = u.id
WHERE me.mentor_id = $1
GROUP BY u.id, u.email, u.full_name
ORDER BY u.full_name ASC`
	var summaries []models.EmployeeSummary
	if err := r.db.SelectContext(ctx, &summaries, query, mentorID); err != nil {
		return nil, fmt.Errorf("list employee summaries: %w", err)
	}
	return summaries, nil
}
