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

type reviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	FindByID(ctx context.Context, id int64) (*models.Review, error)
	FindDetailByID(ctx context.Context, id int64) (*models.ReviewDetail, error)
	ListVisibleForReviewees(ctx context.Context, revieweeIDs []int64) ([]models.ReviewDetail, error)
	ListForReviewee(ctx context.Context, revieweeID int64) ([]models.ReviewDetail, error)
}

type reviewUserRepository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

type reviewPairingRepository interface {
	EmployeeIDs(ctx context.Context, mentorID int64) ([]int64, error)
}

type reviewAccessEvaluator interface {
	CanCreateReview(caller Caller, revieweeID int64) error
	CanReadReview(ctx context.Context, caller Caller, review *models.Review) error
}

// ReviewService implements the append-only review ledger. Reviews are
// immutable once written; the mentor-visibility flag is fixed true at
// creation and no operation flips it.
type ReviewService struct {
	repo      reviewRepository
	users     reviewUserRepository
	pairings  reviewPairingRepository
	access    reviewAccessEvaluator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReviewService constructs a ReviewService instance.
func NewReviewService(repo reviewRepository, users reviewUserRepository, pairings reviewPairingRepository, access reviewAccessEvaluator, validate *validator.Validate, logger *zap.Logger) *ReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ReviewService{repo: repo, users: users, pairings: pairings, access: access, validator: validate, logger: logger}
}

// Create appends a review of another user and returns it joined with both
// parties' display names.
func (s *ReviewService) Create(ctx context.Context, caller Caller, req models.CreateReviewRequest) (*models.ReviewDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	if _, err := s.users.FindByID(ctx, req.RevieweeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "reviewee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reviewee")
	}

	if err := s.access.CanCreateReview(caller, req.RevieweeID); err != nil {
		return nil, err
	}

	review := &models.Review{
		ReviewerID:        caller.ID,
		RevieweeID:        req.RevieweeID,
		Content:           req.Content,
		IsVisibleToMentor: true,
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create review")
	}

	s.logger.Info("review created", zap.Int64("review_id", review.ID), zap.Int64("reviewer_id", caller.ID), zap.Int64("reviewee_id", req.RevieweeID))

	detail, err := s.repo.FindDetailByID(ctx, review.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load review")
	}
	return detail, nil
}

// MentorList returns mentor-visible reviews of the mentor's paired
// employees, newest first. Reviews outside the pairing set never appear,
// whatever their visibility flag.
func (s *ReviewService) MentorList(ctx context.Context, caller Caller) ([]models.ReviewDetail, error) {
	employeeIDs, err := s.pairings.EmployeeIDs(ctx, caller.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list paired employees")
	}

	reviews, err := s.repo.ListVisibleForReviewees(ctx, employeeIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reviews")
	}
	return reviews, nil
}

// MyList returns all reviews received by the caller regardless of the
// visibility flag.
func (s *ReviewService) MyList(ctx context.Context, caller Caller) ([]models.ReviewDetail, error) {
	reviews, err := s.repo.ListForReviewee(ctx, caller.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reviews")
	}
	return reviews, nil
}

// Get returns a single review after the read rule clears the caller.
func (s *ReviewService) Get(ctx context.Context, caller Caller, id int64) (*models.ReviewDetail, error) {
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "review not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load review")
	}

	if err := s.access.CanReadReview(ctx, caller, review); err != nil {
		return nil, err
	}

	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load review")
	}
	return detail, nil
}
