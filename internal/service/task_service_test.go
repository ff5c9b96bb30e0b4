package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorportal/mentorportal-api/internal/models"
	appErrors "github.com/mentorportal/mentorportal-api/pkg/errors"
)

type taskRepoStub struct {
	tasks      map[int64]*models.Task
	listed     []models.Task
	maxOrder   int
	created    *models.Task
	updated    *models.Task
	reordered  [][2]int64 // (taskID, order) in call order
	deleted    []int64
	listErr    error
	createErr  error
	updateErr  error
	reorderErr error
}

func (s *taskRepoStub) ListByGoal(ctx context.Context, goalID int64) ([]models.Task, error) {
	return s.listed, s.listErr
}

func (s *taskRepoStub) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	if task, ok := s.tasks[id]; ok {
		copied := *task
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *taskRepoStub) MaxSortOrder(ctx context.Context, goalID int64) (int, error) {
	return s.maxOrder, nil
}

func (s *taskRepoStub) Create(ctx context.Context, task *models.Task) error {
	if s.createErr != nil {
		return s.createErr
	}
	task.ID = 50
	s.created = task
	return nil
}

func (s *taskRepoStub) Update(ctx context.Context, task *models.Task) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updated = task
	return nil
}

func (s *taskRepoStub) UpdateSortOrder(ctx context.Context, taskID int64, order int) error {
	if s.reorderErr != nil {
		return s.reorderErr
	}
	s.reordered = append(s.reordered, [2]int64{taskID, int64(order)})
	return nil
}

func (s *taskRepoStub) Delete(ctx context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type taskGoalStub struct {
	goals map[int64]*models.Goal
}

func (s *taskGoalStub) FindByID(ctx context.Context, id int64) (*models.Goal, error) {
	if goal, ok := s.goals[id]; ok {
		return goal, nil
	}
	return nil, sql.ErrNoRows
}

func newTaskService(repo *taskRepoStub, goals *taskGoalStub, pairs map[[2]int64]bool) *TaskService {
	return NewTaskService(repo, goals, NewAccessService(&pairingStub{pairs: pairs}), nil, nil)
}

func ownedGoal() *taskGoalStub {
	return &taskGoalStub{goals: map[int64]*models.Goal{10: {ID: 10, EmployeeID: 7}}}
}

var employee = Caller{ID: 7, Role: models.RoleEmployee}

func TestTaskServiceCreateAppendsOrder(t *testing.T) {
	repo := &taskRepoStub{maxOrder: 3}
	svc := newTaskService(repo, ownedGoal(), nil)

	task, err := svc.Create(context.Background(), employee, 10, models.CreateTaskRequest{Title: "Read chapter"})
	require.NoError(t, err)
	assert.Equal(t, 4, task.SortOrder)
	assert.Equal(t, models.TaskNotStarted, task.Status)
	assert.Nil(t, task.CompletedAt)
}

func TestTaskServiceCreateFirstTask(t *testing.T) {
	repo := &taskRepoStub{maxOrder: 0}
	svc := newTaskService(repo, ownedGoal(), nil)

	task, err := svc.Create(context.Background(), employee, 10, models.CreateTaskRequest{Title: "Read chapter"})
	require.NoError(t, err)
	assert.Equal(t, 1, task.SortOrder)
}

func TestTaskServiceCreateGoalNotFound(t *testing.T) {
	svc := newTaskService(&taskRepoStub{}, &taskGoalStub{}, nil)

	_, err := svc.Create(context.Background(), employee, 99, models.CreateTaskRequest{Title: "Read chapter"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTaskServiceCreateDeniedThroughGoal(t *testing.T) {
	svc := newTaskService(&taskRepoStub{}, ownedGoal(), nil)

	_, err := svc.Create(context.Background(), Caller{ID: 8, Role: models.RoleEmployee}, 10, models.CreateTaskRequest{Title: "Read chapter"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestTaskServiceUpdateStampsCompletedAt(t *testing.T) {
	repo := &taskRepoStub{tasks: map[int64]*models.Task{50: {ID: 50, GoalID: 10, Status: models.TaskInProgress}}}
	svc := newTaskService(repo, ownedGoal(), nil)
	stamp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return stamp }

	task, err := svc.Update(context.Background(), employee, 50, models.UpdateTaskRequest{Title: "T", Status: models.TaskCompleted})
	require.NoError(t, err)
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, stamp, *task.CompletedAt)
}

func TestTaskServiceUpdateCompletedAtIdempotent(t *testing.T) {
	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &taskRepoStub{tasks: map[int64]*models.Task{50: {ID: 50, GoalID: 10, Status: models.TaskCompleted, CompletedAt: &first}}}
	svc := newTaskService(repo, ownedGoal(), nil)
	svc.now = func() time.Time { return first.Add(time.Hour) }

	task, err := svc.Update(context.Background(), employee, 50, models.UpdateTaskRequest{Title: "T", Status: models.TaskCompleted})
	require.NoError(t, err)
	require.NotNil(t, task.CompletedAt)
	// remaining Completed must keep the original stamp
	assert.Equal(t, first, *task.CompletedAt)
}

func TestTaskServiceUpdateClearsCompletedAtOnReopen(t *testing.T) {
	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &taskRepoStub{tasks: map[int64]*models.Task{50: {ID: 50, GoalID: 10, Status: models.TaskCompleted, CompletedAt: &first}}}
	svc := newTaskService(repo, ownedGoal(), nil)

	task, err := svc.Update(context.Background(), employee, 50, models.UpdateTaskRequest{Title: "T", Status: models.TaskInProgress})
	require.NoError(t, err)
	assert.Nil(t, task.CompletedAt)
}

func TestTaskServiceUpdateRoundTripGetsNewStamp(t *testing.T) {
	repo := &taskRepoStub{tasks: map[int64]*models.Task{50: {ID: 50, GoalID: 10, Status: models.TaskInProgress}}}
	svc := newTaskService(repo, ownedGoal(), nil)
	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return first }

	task, err := svc.Update(context.Background(), employee, 50, models.UpdateTaskRequest{Title: "T", Status: models.TaskCompleted})
	require.NoError(t, err)
	repo.tasks[50] = task

	task, err = svc.Update(context.Background(), employee, 50, models.UpdateTaskRequest{Title: "T", Status: models.TaskBlocked})
	require.NoError(t, err)
	assert.Nil(t, task.CompletedAt)
	repo.tasks[50] = task

	second := first.Add(2 * time.Hour)
	svc.now = func() time.Time { return second }
	task, err = svc.Update(context.Background(), employee, 50, models.UpdateTaskRequest{Title: "T", Status: models.TaskCompleted})
	require.NoError(t, err)
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, second, *task.CompletedAt)
}

func TestTaskServiceUpdateRejectsUnknownStatus(t *testing.T) {
	repo := &taskRepoStub{tasks: map[int64]*models.Task{50: {ID: 50, GoalID: 10, Status: models.TaskNotStarted}}}
	svc := newTaskService(repo, ownedGoal(), nil)

	_, err := svc.Update(context.Background(), employee, 50, models.UpdateTaskRequest{Title: "T", Status: models.TaskStatus("Done")})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTaskServiceDueDateNaiveIsUTC(t *testing.T) {
	repo := &taskRepoStub{}
	svc := newTaskService(repo, ownedGoal(), nil)

	task, err := svc.Create(context.Background(), employee, 10, models.CreateTaskRequest{Title: "T", DueDate: "2026-05-01T09:30:00"})
	require.NoError(t, err)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC), *task.DueDate)
}

func TestTaskServiceDueDateOffsetConverted(t *testing.T) {
	repo := &taskRepoStub{}
	svc := newTaskService(repo, ownedGoal(), nil)

	task, err := svc.Create(context.Background(), employee, 10, models.CreateTaskRequest{Title: "T", DueDate: "2026-05-01T09:30:00+02:00"})
	require.NoError(t, err)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, time.Date(2026, 5, 1, 7, 30, 0, 0, time.UTC), *task.DueDate)
}

func TestTaskServiceDueDateDateOnly(t *testing.T) {
	repo := &taskRepoStub{}
	svc := newTaskService(repo, ownedGoal(), nil)

	task, err := svc.Create(context.Background(), employee, 10, models.CreateTaskRequest{Title: "T", DueDate: "2026-05-01"})
	require.NoError(t, err)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), *task.DueDate)
}

func TestTaskServiceDueDateInvalid(t *testing.T) {
	svc := newTaskService(&taskRepoStub{}, ownedGoal(), nil)

	_, err := svc.Create(context.Background(), employee, 10, models.CreateTaskRequest{Title: "T", DueDate: "05/01/2026"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTaskServiceReorderAssignsPositions(t *testing.T) {
	repo := &taskRepoStub{listed: []models.Task{
		{ID: 1, GoalID: 10, SortOrder: 1},
		{ID: 2, GoalID: 10, SortOrder: 2},
		{ID: 3, GoalID: 10, SortOrder: 3},
	}}
	svc := newTaskService(repo, ownedGoal(), nil)

	err := svc.Reorder(context.Background(), employee, 10, models.ReorderTasksRequest{TaskIDs: []int64{3, 1, 2}})
	require.NoError(t, err)
	assert.Equal(t, [][2]int64{{3, 1}, {1, 2}, {2, 3}}, repo.reordered)
}

func TestTaskServiceReorderIgnoresForeignIDs(t *testing.T) {
	repo := &taskRepoStub{listed: []models.Task{
		{ID: 1, GoalID: 10, SortOrder: 1},
		{ID: 2, GoalID: 10, SortOrder: 2},
	}}
	svc := newTaskService(repo, ownedGoal(), nil)

	// 99 is not in the goal; its position still counts toward later indices
	err := svc.Reorder(context.Background(), employee, 10, models.ReorderTasksRequest{TaskIDs: []int64{99, 2, 1}})
	require.NoError(t, err)
	assert.Equal(t, [][2]int64{{2, 2}, {1, 3}}, repo.reordered)
}

func TestTaskServiceReorderPartialLeavesRest(t *testing.T) {
	repo := &taskRepoStub{listed: []models.Task{
		{ID: 1, GoalID: 10, SortOrder: 1},
		{ID: 2, GoalID: 10, SortOrder: 2},
		{ID: 3, GoalID: 10, SortOrder: 3},
	}}
	svc := newTaskService(repo, ownedGoal(), nil)

	// task 2 is omitted: it keeps order 2, duplicating the new order of task 1
	err := svc.Reorder(context.Background(), employee, 10, models.ReorderTasksRequest{TaskIDs: []int64{3, 1}})
	require.NoError(t, err)
	assert.Equal(t, [][2]int64{{3, 1}, {1, 2}}, repo.reordered)
}

func TestTaskServiceDeleteRetiresOrder(t *testing.T) {
	repo := &taskRepoStub{
		tasks:    map[int64]*models.Task{50: {ID: 50, GoalID: 10, SortOrder: 2}},
		maxOrder: 3,
	}
	svc := newTaskService(repo, ownedGoal(), nil)

	require.NoError(t, svc.Delete(context.Background(), employee, 50))
	assert.Equal(t, []int64{50}, repo.deleted)

	// next create still appends past the historical maximum
	task, err := svc.Create(context.Background(), employee, 10, models.CreateTaskRequest{Title: "T"})
	require.NoError(t, err)
	assert.Equal(t, 4, task.SortOrder)
}

func TestTaskServiceGetMentorThroughPairing(t *testing.T) {
	repo := &taskRepoStub{tasks: map[int64]*models.Task{50: {ID: 50, GoalID: 10}}}
	svc := newTaskService(repo, ownedGoal(), map[[2]int64]bool{{1, 7}: true})

	task, err := svc.Get(context.Background(), Caller{ID: 1, Role: models.RoleMentor}, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(50), task.ID)

	_, err = svc.Get(context.Background(), Caller{ID: 2, Role: models.RoleMentor}, 50)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
