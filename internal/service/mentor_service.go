package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mentorportal/mentorportal-api/internal/models"
	appErrors "github.com/mentorportal/mentorportal-api/pkg/errors"
	"github.com/mentorportal/mentorportal-api/pkg/export"
)

type mentorPairingRepository interface {
	IsPaired(ctx context.Context, mentorID, employeeID int64) (bool, error)
	MentorIDs(ctx context.Context, employeeID int64) ([]int64, error)
	EmployeeSummaries(ctx context.Context, mentorID int64) ([]models.EmployeeSummary, error)
}

type mentorGoalLister interface {
	ListByEmployee(ctx context.Context, employeeID int64) ([]models.GoalWithProgress, error)
}

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// MentorConfig tunes the mentor dashboard behaviour.
type MentorConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// MentorService serves the mentor-side dashboard: paired employee summaries,
// their goal listings, and progress exports. Pairing is the sole grant for
// every operation here.
type MentorService struct {
	pairings mentorPairingRepository
	goals    mentorGoalLister
	cache    dashboardCache
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
	config   MentorConfig
}

// NewMentorService constructs a MentorService instance.
func NewMentorService(pairings mentorPairingRepository, goals mentorGoalLister, cache dashboardCache, logger *zap.Logger, config MentorConfig) *MentorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MentorService{
		pairings: pairings,
		goals:    goals,
		cache:    cache,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
		config:   config,
	}
}

// Employees returns dashboard summaries for the mentor's paired employees.
// Results may be served from cache within the configured TTL.
func (s *MentorService) Employees(ctx context.Context, caller Caller) ([]models.EmployeeSummary, error) {
	cacheKey := employeesCacheKey(caller.ID)

	if s.config.CacheEnabled && s.cache != nil {
		var cached []models.EmployeeSummary
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
	}

	summaries, err := s.pairings.EmployeeSummaries(ctx, caller.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}

	if s.config.CacheEnabled && s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, summaries, s.config.CacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}

	return summaries, nil
}

// InvalidateEmployeeSummaries drops the cached dashboard summaries of every
// mentor paired with the employee. Called after goal writes, which move the
// goal counts the summaries carry. Best effort: a failed delete only ages
// the cache out through its TTL.
func (s *MentorService) InvalidateEmployeeSummaries(ctx context.Context, employeeID int64) {
	if !s.config.CacheEnabled || s.cache == nil {
		return
	}

	mentorIDs, err := s.pairings.MentorIDs(ctx, employeeID)
	if err != nil {
		s.logger.Warn("dashboard cache invalidation skipped", zap.Int64("employee_id", employeeID), zap.Error(err))
		return
	}
	for _, mentorID := range mentorIDs {
		if err := s.cache.Delete(ctx, employeesCacheKey(mentorID)); err != nil {
			s.logger.Warn("dashboard cache delete failed", zap.Int64("mentor_id", mentorID), zap.Error(err))
		}
	}
}

func employeesCacheKey(mentorID int64) string {
	return fmt.Sprintf("mentor:%d:employees", mentorID)
}

// EmployeeGoals returns the employee's goals for a paired mentor.
func (s *MentorService) EmployeeGoals(ctx context.Context, caller Caller, employeeID int64) ([]models.GoalWithProgress, error) {
	if err := s.requirePairing(ctx, caller.ID, employeeID); err != nil {
		return nil, err
	}
	return s.goals.ListByEmployee(ctx, employeeID)
}

// ExportEmployeeProgress renders the employee's goal progress as CSV or PDF.
func (s *MentorService) ExportEmployeeProgress(ctx context.Context, caller Caller, employeeID int64, format string) ([]byte, string, error) {
	if err := s.requirePairing(ctx, caller.ID, employeeID); err != nil {
		return nil, "", err
	}

	goals, err := s.goals.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, "", err
	}

	table := export.Table{
		Title:   fmt.Sprintf("Progress Report - Employee %d", employeeID),
		Columns: []string{"Goal", "Status", "Tasks Completed", "Tasks Total", "Updated"},
	}
	for _, g := range goals {
		table.Rows = append(table.Rows, []string{
			g.Title,
			string(g.Status),
			strconv.Itoa(g.CompletedTasks),
			strconv.Itoa(g.TotalTasks),
			g.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}

	switch format {
	case "", "csv":
		payload, err := s.csv.Render(table)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return payload, "text/csv", nil
	case "pdf":
		payload, err := s.pdf.Render(table)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func (s *MentorService) requirePairing(ctx context.Context, mentorID, employeeID int64) error {
	paired, err := s.pairings.IsPaired(ctx, mentorID, employeeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve pairing")
	}
	if !paired {
		return appErrors.Clone(appErrors.ErrForbidden, "you are not paired with this employee")
	}
	return nil
}
