package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mentorportal/mentorportal-api/internal/models"
	"github.com/mentorportal/mentorportal-api/internal/service"
	appErrors "github.com/mentorportal/mentorportal-api/pkg/errors"
	"github.com/mentorportal/mentorportal-api/pkg/response"
)

type taskService interface {
	ListByGoal(ctx context.Context, caller service.Caller, goalID int64) ([]models.Task, error)
	Get(ctx context.Context, caller service.Caller, id int64) (*models.Task, error)
	Create(ctx context.Context, caller service.Caller, goalID int64, req models.CreateTaskRequest) (*models.Task, error)
	Update(ctx context.Context, caller service.Caller, id int64, req models.UpdateTaskRequest) (*models.Task, error)
	Delete(ctx context.Context, caller service.Caller, id int64) error
	Reorder(ctx context.Context, caller service.Caller, goalID int64, req models.ReorderTasksRequest) error
}

// TaskHandler exposes task endpoints nested under goals plus direct task access.
type TaskHandler struct {
	service taskService
}

// NewTaskHandler builds a new handler.
func NewTaskHandler(service taskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// ListByGoal godoc
// @Summary List tasks of a goal in display order
// @Tags Tasks
// @Produce json
// @Param goalId path int true "Goal ID"
// @Success 200 {object} response.Envelope
// @Router /tasks/goals/{goalId} [get]
func (h *TaskHandler) ListByGoal(c *gin.Context) {
	caller, err := callerFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	goalID, err := idParam(c, "goalId")
	if err != nil {
		response.Error(c, err)
		return
	}

	tasks, err := h.service.ListByGoal(c.Request.Context(), caller, goalID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tasks)
}

// Get godoc
// @Summary Get a task
// @Tags Tasks
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} response.Envelope
// @Router /tasks/{id} [get]
func (h *TaskHandler) Get(c *gin.Context) {
	caller, err := callerFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	task, err := h.service.Get(c.Request.Context(), caller, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, task)
}

// Create godoc
// @Summary Add a task to a goal
// @Tags Tasks
// @Accept json
// @Produce json
// @Param goalId path int true "Goal ID"
// @Param payload body models.CreateTaskRequest true "Task payload"
// @Success 201 {object} response.Envelope
// @Router /tasks/goals/{goalId} [post]
func (h *TaskHandler) Create(c *gin.Context) {
	caller, err := callerFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	goalID, err := idParam(c, "goalId")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req models.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid task payload"))
		return
	}

	task, err := h.service.Create(c.Request.Context(), caller, goalID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, task)
}

// Update godoc
// @Summary Update a task
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path int true "Task ID"
// @Param payload body models.UpdateTaskRequest true "Task payload"
// @Success 200 {object} response.Envelope
// @Router /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	caller, err := callerFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req models.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid task payload"))
		return
	}

	task, err := h.service.Update(c.Request.Context(), caller, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, task)
}

// Delete godoc
// @Summary Delete a task
// @Tags Tasks
// @Param id path int true "Task ID"
// @Success 204 {object} response.Envelope
// @Router /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	caller, err := callerFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), caller, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Reorder godoc
// @Summary Reorder the tasks of a goal
// @Tags Tasks
// @Accept json
// @Param goalId path int true "Goal ID"
// @Param payload body models.ReorderTasksRequest true "Ordered task IDs"
// @Success 204 {object} response.Envelope
// @Router /tasks/goals/{goalId}/reorder [put]
func (h *TaskHandler) Reorder(c *gin.Context) {
	caller, err := callerFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	goalID, err := idParam(c, "goalId")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req models.ReorderTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reorder payload"))
		return
	}

	if err := h.service.Reorder(c.Request.Context(), caller, goalID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
