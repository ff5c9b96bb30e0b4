package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mentorportal/mentorportal-api/internal/models"
)

// GoalRepository provides database access for goals.
type GoalRepository struct {
	db *sqlx.DB
}

// NewGoalRepository creates a new instance of GoalRepository.
func NewGoalRepository(db *sqlx.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

const goalProgressColumns = `
	g.id,
	g.employee_id,
	g.title,
	g.description,
	g.status,
	g.created_at,
	g.updated_at,
	COUNT(t.id) AS total_tasks,
	COUNT(t.id) FILTER (WHERE t.status = 'Completed') AS completed_tasks`

// ListByEmployee returns the employee's goals newest first, with task
// completion aggregates.
func (r *GoalRepository) ListByEmployee(ctx context.Context, employeeID int64) ([]models.GoalWithProgress, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM goals g
LEFT JOIN tasks t ON t.goal_id = g.id
WHERE g.employee_id = $1
GROUP BY g.id
ORDER BY g.created_at DESC`, goalProgressColumns)

	var goals []models.GoalWithProgress
	if err := r.db.SelectContext(ctx, &goals, query, employeeID); err != nil {
		return nil, fmt.Errorf("list goals by employee: %w", err)
	}
	return goals, nil
}

// FindByID returns a goal by identifier.
func (r *GoalRepository) FindByID(ctx context.Context, id int64) (*models.Goal, error) {
	const query = `SELECT id, employee_id, title, description, status, created_at, updated_at FROM goals WHERE id = $1 LIMIT 1`
	var goal models.Goal
	if err := r.db.GetContext(ctx, &goal, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find goal by id: %w", err)
	}
	return &goal, nil
}

// FindByIDWithProgress returns a goal with its task aggregates.
func (r *GoalRepository) FindByIDWithProgress(ctx context.Context, id int64) (*models.GoalWithProgress, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM goals g
LEFT JOIN tasks t ON t.goal_id = g.id
WHERE g.id = $1
GROUP BY g.id`, goalProgressColumns)

	var goal models.GoalWithProgress
	if err := r.db.GetContext(ctx, &goal, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find goal with progress: %w", err)
	}
	return &goal, nil
}

// Create inserts a new goal and fills in the store-assigned id.
func (r *GoalRepository) Create(ctx context.Context, goal *models.Goal) error {
	now := time.Now().UTC()
	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = now
	}
	goal.UpdatedAt = now

	const query = `INSERT INTO goals (employee_id, title, description, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := r.db.GetContext(ctx, &goal.ID, query, goal.EmployeeID, goal.Title, goal.Description, goal.Status, goal.CreatedAt, goal.UpdatedAt); err != nil {
		return fmt.Errorf("create goal: %w", err)
	}
	return nil
}

// Update persists mutable goal fields.
func (r *GoalRepository) Update(ctx context.Context, goal *models.Goal) error {
	goal.UpdatedAt = time.Now().UTC()
	const query = `UPDATE goals SET title = :title, description = :description, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, goal); err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return nil
}

// Delete removes a goal. Tasks cascade at the database level.
func (r *GoalRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM goals WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return nil
}
