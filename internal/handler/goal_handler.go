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

type goalService interface {
	ListOwn(ctx context.Context, caller service.Caller) ([]models.GoalWithProgress, error)
	Get(ctx context.Context, caller service.Caller, id int64) (*models.GoalWithProgress, error)
	Create(ctx context.Context, caller service.Caller, req models.CreateGoalRequest) (*models.GoalWithProgress, error)
	Update(ctx context.Context, caller service.Caller, id int64, req models.UpdateGoalRequest) error
	Delete(ctx context.Context, caller service.Caller, id int64) error
}

// GoalHandler exposes goal lifecycle endpoints.
type GoalHandler struct {
	service goalService
}

// NewGoalHandler builds a new handler.
func NewGoalHandler(service goalService) *GoalHandler {
	return &GoalHandler{service: service}
}

// List godoc
// @Summary List own goals
// @Tags Goals
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /goals [get]
func (h *GoalHandler) List(c *gin.Context) {
	caller, err := callerFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	goals, err := h.service.ListOwn(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, goals)
}

// Get godoc
// @Summary Get a goal
// @Tags Goals
// @Produce json
// @Param id path int true "Goal ID"
// @Success 200 {object} response.Envelope
// @Router /goals/{id} [get]
func (h *GoalHandler) Get(c *gin.Context) {
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

	goal, err := h.service.Get(c.Request.Context(), caller, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, goal)
}

// Create godoc
// @Summary Create a goal
// @Tags Goals
// @Accept json
// @Produce json
// @Param payload body models.CreateGoalRequest true "Goal payload"
// @Success 201 {object} response.Envelope
// @Router /goals [post]
func (h *GoalHandler) Create(c *gin.Context) {
	caller, err := callerFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req models.CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid goal payload"))
		return
	}

	goal, err := h.service.Create(c.Request.Context(), caller, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, goal)
}

// Update godoc
// @Summary Update a goal
// @Tags Goals
// @Accept json
// @Produce json
// @Param id path int true "Goal ID"
// @Param payload body models.UpdateGoalRequest true "Goal payload"
// @Success 204 {object} response.Envelope
// @Router /goals/{id} [put]
func (h *GoalHandler) Update(c *gin.Context) {
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

	if err := h.service.Update(c.Request.Context(), caller, id, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Delete a goal
// @Tags Goals
// @Param id path int true "Goal ID"
// @Success 204 {object} response.Envelope
// @Router /goals/{id} [delete]
func (h *GoalHandler) Delete(c *gin.Context) {
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
