package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mentorportal/mentorportal-api/internal/models"
	appErrors "github.com/mentorportal/mentorportal-api/pkg/errors"
)

type taskRepository interface {
	ListByGoal(ctx context.Context, goalID int64) ([]models.Task, error)
	FindByID(ctx context.Context, id int64) (*models.Task, error)
	MaxSortOrder(ctx context.Context, goalID int64) (int, error)
	Create(ctx context.Context, task *models.Task) error
	Update(ctx context.Context, task *models.Task) error
	UpdateSortOrder(ctx context.Context, taskID int64, order int) error
	Delete(ctx context.Context, id int64) error
}

type taskGoalRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Goal, error)
}

// dueDateLayouts are tried in order when parsing incoming due dates.
// Timezone-less values are read as UTC wall-clock, never local time.
var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// TaskService implements the task lifecycle: per-goal ordering, manual
// reordering, and the completed-at timestamp invariant. Access resolves
// transitively through the parent goal.
type TaskService struct {
	repo      taskRepository
	goals     taskGoalRepository
	access    goalAccessEvaluator
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewTaskService constructs a TaskService instance.
func NewTaskService(repo taskRepository, goals taskGoalRepository, access goalAccessEvaluator, validate *validator.Validate, logger *zap.Logger) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &TaskService{
		repo:      repo,
		goals:     goals,
		access:    access,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ListByGoal returns the goal's tasks in manual order.
func (s *TaskService) ListByGoal(ctx context.Context, caller Caller, goalID int64) ([]models.Task, error) {
	if _, err := s.authorizeGoal(ctx, caller, goalID); err != nil {
		return nil, err
	}

	tasks, err := s.repo.ListByGoal(ctx, goalID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tasks")
	}
	return tasks, nil
}

// Get returns a single task.
func (s *TaskService) Get(ctx context.Context, caller Caller, id int64) (*models.Task, error) {
	task, err := s.findTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizeGoal(ctx, caller, task.GoalID); err != nil {
		return nil, err
	}
	return task, nil
}

// Create appends a new task to the goal. The order value is one past the
// highest existing order for that goal; deleted order values are not reused.
func (s *TaskService) Create(ctx context.Context, caller Caller, goalID int64, req models.CreateTaskRequest) (*models.Task, error) {
	if _, err := s.authorizeGoal(ctx, caller, goalID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid task payload")
	}

	dueDate, err := normalizeDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	maxOrder, err := s.repo.MaxSortOrder(ctx, goalID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve task order")
	}

	task := &models.Task{
		GoalID:      goalID,
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskNotStarted,
		SortOrder:   maxOrder + 1,
		DueDate:     dueDate,
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create task")
	}

	s.logger.Info("task created", zap.Int64("task_id", task.ID), zap.Int64("goal_id", goalID), zap.Int("order", task.SortOrder))

	return task, nil
}

// Update rewrites the task's mutable fields and maintains the completed-at
// invariant: entering Completed stamps the time once (idempotent on repeat),
// leaving Completed always clears it.
func (s *TaskService) Update(ctx context.Context, caller Caller, id int64, req models.UpdateTaskRequest) (*models.Task, error) {
	task, err := s.findTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizeGoal(ctx, caller, task.GoalID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid task payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unrecognised task status")
	}

	dueDate, err := normalizeDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	task.Title = req.Title
	task.Description = req.Description
	task.Status = req.Status
	task.DueDate = dueDate

	if req.Status == models.TaskCompleted {
		if task.CompletedAt == nil {
			completedAt := s.now()
			task.CompletedAt = &completedAt
		}
	} else {
		task.CompletedAt = nil
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update task")
	}
	return task, nil
}

// Delete removes a task. Its order value is retired, not reused.
func (s *TaskService) Delete(ctx context.Context, caller Caller, id int64) error {
	task, err := s.findTask(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.authorizeGoal(ctx, caller, task.GoalID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete task")
	}
	return nil
}

// Reorder assigns order = position+1 to each supplied task id that belongs
// to the goal. Ids outside the goal are silently ignored; tasks omitted from
// the sequence keep their prior order, so duplicate or gapped values can
// result. Rows update independently: concurrent reorders settle per task,
// last write wins.
func (s *TaskService) Reorder(ctx context.Context, caller Caller, goalID int64, req models.ReorderTasksRequest) error {
	if _, err := s.authorizeGoal(ctx, caller, goalID); err != nil {
		return err
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reorder payload")
	}

	tasks, err := s.repo.ListByGoal(ctx, goalID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tasks")
	}

	byID := make(map[int64]struct{}, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = struct{}{}
	}

	for i, taskID := range req.TaskIDs {
		if _, ok := byID[taskID]; !ok {
			continue
		}
		if err := s.repo.UpdateSortOrder(ctx, taskID, i+1); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reorder tasks")
		}
	}

	return nil
}

func (s *TaskService) findTask(ctx context.Context, id int64) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load task")
	}
	return task, nil
}

func (s *TaskService) authorizeGoal(ctx context.Context, caller Caller, goalID int64) (*models.Goal, error) {
	goal, err := s.goals.FindByID(ctx, goalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "goal not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load goal")
	}
	if err := s.access.CanAccessGoal(ctx, caller, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

// normalizeDueDate parses an incoming due date into a UTC instant. Input
// carrying an offset is converted; input without one is taken as UTC
// wall-clock. An empty string clears the due date.
func normalizeDueDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}

	for _, layout := range dueDateLayouts {
		parsed, err := time.ParseInLocation(layout, raw, time.UTC)
		if err != nil {
			continue
		}
		utc := parsed.UTC()
		return &utc, nil
	}

	return nil, appErrors.Clone(appErrors.ErrValidation, "invalid due date format")
}
