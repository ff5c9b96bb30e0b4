package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mentorportal/mentorportal-api/internal/models"
	"github.com/mentorportal/mentorportal-api/internal/service"
	appErrors "github.com/mentorportal/mentorportal-api/pkg/errors"
	"github.com/mentorportal/mentorportal-api/pkg/response"
)

type mentorService interface {
	Employees(ctx context.Context, caller service.Caller) ([]models.EmployeeSummary, error)
	EmployeeGoals(ctx context.Context, caller service.Caller, employeeID int64) ([]models.GoalWithProgress, error)
	ExportEmployeeProgress(ctx context.Context, caller service.Caller, employeeID int64, format string) ([]byte, string, error)
}

type mentorGoalUpdater interface {
	Update(ctx context.Context, caller service.Caller, id int64, req models.UpdateGoalRequest) error
}

type mentorTaskUpdater interface {
	Update(ctx context.Context, caller service.Caller, id int64, req models.UpdateTaskRequest) (*models.Task, error)
}

// MentorHandler exposes the mentor dashboard endpoints.
type MentorHandler struct {
	service mentorService
	goals   mentorGoalUpdater
	tasks   mentorTaskUpdater
}

// NewMentorHandler builds a new handler.
func NewMentorHandler(service mentorService, goals mentorGoalUpdater, tasks mentorTaskUpdater) *MentorHandler {
	return &MentorHandler{service: service, goals: goals, tasks: tasks}
}

// Employees godoc
// @Summary List the caller's paired employees with goal counts
// @Tags Mentors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /mentors/employees [get]
func (h *MentorHandler) Employees(c *gin.Context) {
	caller, err := callerFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	employees, err := h.service.Employees(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employees)
}

// EmployeeGoals godoc
// @Summary List a paired employee's goals
// @Tags Mentors
// @Produce json
// @Param employeeId path int true "Employee ID"
// @Success 200 {object} response.Envelope
// @Router /mentors/employees/{employeeId}/goals [get]
func (h *MentorHandler) EmployeeGoals(c *gin.Context) {
	caller, err := callerFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	employeeID, err := idParam(c, "employeeId")
	if err != nil {
		response.Error(c, err)
		return
	}

	goals, err := h.service.EmployeeGoals(c.Request.Context(), caller, employeeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, goals)
}

// ExportEmployeeProgress godoc
// @Summary Export a paired employee's goal progress as CSV or PDF
// @Tags Mentors
// @Produce octet-stream
// @Param employeeId path int true "Employee ID"
// @Param format query string false "Export format (csv or pdf)" default(csv)
// @Success 200 {file} binary
// @Router /mentors/employees/{employeeId}/export [get]
func (h *MentorHandler) ExportEmployeeProgress(c *gin.Context) {
	caller, err := callerFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	employeeID, err := idParam(c, "employeeId")
	if err != nil {
		response.Error(c, err)
		return
	}

	format := c.DefaultQuery("format", "csv")
	data, contentType, err := h.service.ExportEmployeeProgress(c.Request.Context(), caller, employeeID, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("employee_%d_progress.%s", employeeID, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

// ApproveGoal godoc
// @Summary Update a paired employee's goal as its mentor
// @Tags Mentors
// @Accept json
// @Param id path int true "Goal ID"
// @Param payload body models.UpdateGoalRequest true "Goal payload"
// @Success 204 {object} response.Envelope
// @Router /mentors/goals/{id}/approve [put]
func (h *MentorHandler) ApproveGoal(c *gin.Context) {
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

	var req models.UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid goal payload"))
		return
	}

	if err := h.goals.Update(c.Request.Context(), caller, id, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ApproveTask godoc
// @Summary Update a paired employee's task as its mentor
// @Tags Mentors
// @Accept json
// @Param id path int true "Task ID"
// @Param payload body models.UpdateTaskRequest true "Task payload"
// @Success 204 {object} response.Envelope
// @Router /mentors/tasks/{id}/approve [put]
func (h *MentorHandler) ApproveTask(c *gin.Context) {
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

	if _, err := h.tasks.Update(c.Request.Context(), caller, id, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
