package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorportal/mentorportal-api/internal/middleware"
	"github.com/mentorportal/mentorportal-api/internal/models"
	"github.com/mentorportal/mentorportal-api/internal/service"
	appErrors "github.com/mentorportal/mentorportal-api/pkg/errors"
)

type mentorServiceMock struct {
	employees []models.EmployeeSummary
	goals     []models.GoalWithProgress
	export    []byte
	lastErr   error
}

func (m *mentorServiceMock) Employees(ctx context.Context, caller service.Caller) ([]models.EmployeeSummary, error) {
	return m.employees, m.lastErr
}

func (m *mentorServiceMock) EmployeeGoals(ctx context.Context, caller service.Caller, employeeID int64) ([]models.GoalWithProgress, error) {
	if m.lastErr != nil {
		return nil, m.lastErr
	}
	return m.goals, nil
}

func (m *mentorServiceMock) ExportEmployeeProgress(ctx context.Context, caller service.Caller, employeeID int64, format string) ([]byte, string, error) {
	if m.lastErr != nil {
		return nil, "", m.lastErr
	}
	return m.export, "text/csv", nil
}

type goalUpdaterMock struct {
	updated int64
	lastErr error
}

func (m *goalUpdaterMock) Update(ctx context.Context, caller service.Caller, id int64, req models.UpdateGoalRequest) error {
	m.updated = id
	return m.lastErr
}

type taskUpdaterMock struct {
	updated int64
	lastErr error
}

func (m *taskUpdaterMock) Update(ctx context.Context, caller service.Caller, id int64, req models.UpdateTaskRequest) (*models.Task, error) {
	if m.lastErr != nil {
		return nil, m.lastErr
	}
	m.updated = id
	return &models.Task{ID: id, Title: req.Title, Status: req.Status}, nil
}

func mentorClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: 1, Role: models.RoleMentor}
}

func TestMentorHandlerEmployees(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &mentorServiceMock{employees: []models.EmployeeSummary{{ID: 7, FullName: "Dewi Lestari"}}}
	handler := NewMentorHandler(svc, &goalUpdaterMock{}, &taskUpdaterMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/mentors/employees", nil)
	c.Set(middleware.ContextUserKey, mentorClaims())

	handler.Employees(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Dewi Lestari")
}

func TestMentorHandlerExportSetsAttachment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &mentorServiceMock{export: []byte("title,status\n")}
	handler := NewMentorHandler(svc, &goalUpdaterMock{}, &taskUpdaterMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/mentors/employees/7/export", nil)
	c.Params = gin.Params{{Key: "employeeId", Value: "7"}}
	c.Set(middleware.ContextUserKey, mentorClaims())

	handler.ExportEmployeeProgress(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "employee_7_progress.csv")
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
}

func TestMentorHandlerApproveGoal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	goals := &goalUpdaterMock{}
	handler := NewMentorHandler(&mentorServiceMock{}, goals, &taskUpdaterMock{})
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(middleware.ContextUserKey, mentorClaims()) })
	r.PUT("/mentors/goals/:id/approve", handler.ApproveGoal)

	w := httptest.NewRecorder()
	body := strings.NewReader(`{"title":"Speak at a meetup","status":"Completed"}`)
	req, _ := http.NewRequest(http.MethodPut, "/mentors/goals/10/approve", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, int64(10), goals.updated)
}

func TestMentorHandlerApproveTaskUnpaired(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tasks := &taskUpdaterMock{lastErr: appErrors.ErrForbidden}
	handler := NewMentorHandler(&mentorServiceMock{}, &goalUpdaterMock{}, tasks)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := strings.NewReader(`{"title":"Draft outline","status":"InProgress"}`)
	c.Request, _ = http.NewRequest(http.MethodPut, "/mentors/tasks/3/approve", body)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "3"}}
	c.Set(middleware.ContextUserKey, mentorClaims())

	handler.ApproveTask(c)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")
}
