package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mentorportal/mentorportal-api/internal/models"
)

// TaskRepository provides database access for tasks.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new instance of TaskRepository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, goal_id, title, description, status, sort_order, due_date, completed_at, created_at`

// ListByGoal returns the goal's tasks in manual order.
func (r *TaskRepository) ListByGoal(ctx context.Context, goalID int64) ([]models.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE goal_id = $1 ORDER BY sort_order ASC`, taskColumns)
	var tasks []models.Task
	if err := r.db.SelectContext(ctx, &tasks, query, goalID); err != nil {
		return nil, fmt.Errorf("list tasks by goal: %w", err)
	}
	return tasks, nil
}

// FindByID returns a task by identifier.
func (r *TaskRepository) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE id = $1 LIMIT 1`, taskColumns)
	var task models.Task
	if err := r.db.GetContext(ctx, &task, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find task by id: %w", err)
	}
	return &task, nil
}

// MaxSortOrder returns the highest order value among the goal's tasks, or
// zero when the goal has none. Deleted tasks' values are never reused.
func (r *TaskRepository) MaxSortOrder(ctx context.Context, goalID int64) (int, error) {
	const query = `SELECT COALESCE(MAX(sort_order), 0) FROM tasks WHERE goal_id = $1`
	var max int
	if err := r.db.GetContext(ctx, &max, query, goalID); err != nil {
		return 0, fmt.Errorf("max sort order: %w", err)
	}
	return max, nil
}

// Create inserts a new task and fills in the store-assigned id.
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO tasks (goal_id, title, description, status, sort_order, due_date, completed_at, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	if err := r.db.GetContext(ctx, &task.ID, query, task.GoalID, task.Title, task.Description, task.Status, task.SortOrder, task.DueDate, task.CompletedAt, task.CreatedAt); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// Update persists mutable task fields.
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	const query = `UPDATE tasks SET title = :title, description = :description, status = :status, due_date = :due_date, completed_at = :completed_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, task); err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// UpdateSortOrder writes a single task's order value. Reorder applies these
// per row; concurrent reorders resolve last-write-wins per task, never as a
// grouped rollback.
func (r *TaskRepository) UpdateSortOrder(ctx context.Context, taskID int64, order int) error {
	const query = `UPDATE tasks SET sort_order = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, taskID, order); err != nil {
		return fmt.Errorf("update sort order: %w", err)
	}
	return nil
}

// Delete removes a task.
func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
