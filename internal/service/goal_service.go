package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mentorportal/mentorportal-api/internal/models"
	appErrors "github.com/mentorportal/mentorportal-api/pkg/errors"
)

type goalRepository interface {
	ListByEmployee(ctx context.Context, employeeID int64) ([]models.GoalWithProgress, error)
	FindByID(ctx context.Context, id int64) (*models.Goal, error)
	FindByIDWithProgress(ctx context.Context, id int64) (*models.GoalWithProgress, error)
	Create(ctx context.Context, goal *models.Goal) error
	Update(ctx context.Context, goal *models.Goal) error
	Delete(ctx context.Context, id int64) error
}

type goalAccessEvaluator interface {
	CanAccessGoal(ctx context.Context, caller Caller, goal *models.Goal) error
	CanCreateGoal(caller Caller) error
}

type goalDashboardInvalidator interface {
	InvalidateEmployeeSummaries(ctx context.Context, employeeID int64)
}

// GoalService implements the goal lifecycle. Every operation consults the
// access evaluator before touching the store.
type GoalService struct {
	repo       goalRepository
	access     goalAccessEvaluator
	dashboards goalDashboardInvalidator
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewGoalService constructs a GoalService instance. The dashboard
// invalidator may be nil when no cache is in play.
func NewGoalService(repo goalRepository, access goalAccessEvaluator, dashboards goalDashboardInvalidator, validate *validator.Validate, logger *zap.Logger) *GoalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &GoalService{repo: repo, access: access, dashboards: dashboards, validator: validate, logger: logger}
}

// goal counts feed the mentor dashboard summaries, so every goal write
// stales them
func (s *GoalService) invalidateDashboards(ctx context.Context, employeeID int64) {
	if s.dashboards != nil {
		s.dashboards.InvalidateEmployeeSummaries(ctx, employeeID)
	}
}

// ListOwn returns the caller's goals, newest first. Only employees have an
// own-goal listing; mentors go through the employee-scoped listing instead.
func (s *GoalService) ListOwn(ctx context.Context, caller Caller) ([]models.GoalWithProgress, error) {
	if caller.Role != models.RoleEmployee {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only employees can view their own goals")
	}
	goals, err := s.repo.ListByEmployee(ctx, caller.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list goals")
	}
	return goals, nil
}

// Get returns a single goal with task aggregates.
func (s *GoalService) Get(ctx context.Context, caller Caller, id int64) (*models.GoalWithProgress, error) {
	goal, err := s.findGoal(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.access.CanAccessGoal(ctx, caller, goal); err != nil {
		return nil, err
	}

	withProgress, err := s.repo.FindByIDWithProgress(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load goal")
	}
	return withProgress, nil
}

// Create makes a new Draft goal owned by the caller.
func (s *GoalService) Create(ctx context.Context, caller Caller, req models.CreateGoalRequest) (*models.GoalWithProgress, error) {
	if err := s.access.CanCreateGoal(caller); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid goal payload")
	}

	goal := &models.Goal{
		EmployeeID:  caller.ID,
		Title:       req.Title,
		Description: req.Description,
		Status:      models.GoalDraft,
	}

	if err := s.repo.Create(ctx, goal); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create goal")
	}

	s.logger.Info("goal created", zap.Int64("goal_id", goal.ID), zap.Int64("employee_id", goal.EmployeeID))
	s.invalidateDashboards(ctx, goal.EmployeeID)

	return &models.GoalWithProgress{Goal: *goal}, nil
}

// Update rewrites the goal's title, description, and status. Status is a
// free transition: any recognised value may follow any other.
func (s *GoalService) Update(ctx context.Context, caller Caller, id int64, req models.UpdateGoalRequest) error {
	goal, err := s.findGoal(ctx, id)
	if err != nil {
		return err
	}
	if err := s.access.CanAccessGoal(ctx, caller, goal); err != nil {
		return err
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid goal payload")
	}
	if !req.Status.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unrecognised goal status")
	}

	goal.Title = req.Title
	goal.Description = req.Description
	goal.Status = req.Status

	if err := s.repo.Update(ctx, goal); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update goal")
	}
	s.invalidateDashboards(ctx, goal.EmployeeID)
	return nil
}

// Delete hard-deletes the goal; its tasks cascade.
func (s *GoalService) Delete(ctx context.Context, caller Caller, id int64) error {
	goal, err := s.findGoal(ctx, id)
	if err != nil {
		return err
	}
	if err := s.access.CanAccessGoal(ctx, caller, goal); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete goal")
	}

	s.logger.Info("goal deleted", zap.Int64("goal_id", id), zap.Int64("caller_id", caller.ID))
	s.invalidateDashboards(ctx, goal.EmployeeID)
	return nil
}

func (s *GoalService) findGoal(ctx context.Context, id int64) (*models.Goal, error) {
	goal, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "goal not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load goal")
	}
	return goal, nil
}
