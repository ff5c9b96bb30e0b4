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

type reviewService interface {
	Create(ctx context.Context, caller service.Caller, req models.CreateReviewRequest) (*models.ReviewDetail, error)
	MentorList(ctx context.Context, caller service.Caller) ([]models.ReviewDetail, error)
	MyList(ctx context.Context, caller service.Caller) ([]models.ReviewDetail, error)
	Get(ctx context.Context, caller service.Caller, id int64) (*models.ReviewDetail, error)
}

// ReviewHandler exposes narrative review endpoints.
type ReviewHandler struct {
	service reviewService
}

// NewReviewHandler builds a new handler.
func NewReviewHandler(service reviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// Create godoc
// @Summary Write a review about another user
// @Tags Reviews
// @Accept json
// @Produce json
// @Param payload body models.CreateReviewRequest true "Review payload"
// @Success 201 {object} response.Envelope
// @Router /reviews [post]
func (h *ReviewHandler) Create(c *gin.Context) {
	caller, err := callerFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req models.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}

	review, err := h.service.Create(c.Request.Context(), caller, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, review)
}

// MentorList godoc
// @Summary List reviews about the caller's paired employees
// @Tags Reviews
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reviews/mentor [get]
func (h *ReviewHandler) MentorList(c *gin.Context) {
	caller, err := callerFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	reviews, err := h.service.MentorList(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reviews)
}

// MyList godoc
// @Summary List reviews written about the caller
// @Tags Reviews
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reviews/my [get]
func (h *ReviewHandler) MyList(c *gin.Context) {
	caller, err := callerFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	reviews, err := h.service.MyList(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reviews)
}

// Get godoc
// @Summary Get a single review
// @Tags Reviews
// @Produce json
// @Param id path int true "Review ID"
// @Success 200 {object} response.Envelope
// @Router /reviews/{id} [get]
func (h *ReviewHandler) Get(c *gin.Context) {
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

	review, err := h.service.Get(c.Request.Context(), caller, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, review)
}
