package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/mentorportal/mentorportal-api/internal/models"
)

// ReviewRepository provides database access for the review ledger.
// Reviews are append-only; no update or delete statements exist here.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository creates a new instance of ReviewRepository.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

const reviewDetailColumns = `
	r.id,
	r.reviewer_id,
	ru.full_name AS reviewer_name,
	r.reviewee_id,
	re.full_name AS reviewee_name,
	r.content,
	r.created_at`

// Create inserts a new review and fills in the store-assigned id.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO reviews (reviewer_id, reviewee_id, content, is_visible_to_mentor, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.GetContext(ctx, &review.ID, query, review.ReviewerID, review.RevieweeID, review.Content, review.IsVisibleToMentor, review.CreatedAt); err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

// FindByID returns a review by identifier.
func (r *ReviewRepository) FindByID(ctx context.Context, id int64) (*models.Review, error) {
	const query = `SELECT id, reviewer_id, reviewee_id, content, is_visible_to_mentor, created_at FROM reviews WHERE id = $1 LIMIT 1`
	var review models.Review
	if err := r.db.GetContext(ctx, &review, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find review by id: %w", err)
	}
	return &review, nil
}

// FindDetailByID returns a review joined with both parties' display names.
func (r *ReviewRepository) FindDetailByID(ctx context.Context, id int64) (*models.ReviewDetail, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM reviews r
JOIN users ru ON ru.id = r.reviewer_id
JOIN users re ON re.id = r.reviewee_id
WHERE r.id = $1`, reviewDetailColumns)

	var detail models.ReviewDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find review detail: %w", err)
	}
	return &detail, nil
}

// ListVisibleForReviewees returns mentor-visible reviews whose reviewee is in
// the given set, newest first. Reviews flagged invisible are excluded here
// rather than in the service so they can never leak through a filter change.
func (r *ReviewRepository) ListVisibleForReviewees(ctx context.Context, revieweeIDs []int64) ([]models.ReviewDetail, error) {
	if len(revieweeIDs) == 0 {
		return []models.ReviewDetail{}, nil
	}

	query := fmt.Sprintf(`
SELECT %s
FROM reviews r
JOIN users ru ON ru.id = r.reviewer_id
JOIN users re ON re.id = r.reviewee_id
WHERE r.reviewee_id = ANY($1) AND r.is_visible_to_mentor = TRUE
ORDER BY r.created_at DESC`, reviewDetailColumns)

	var details []models.ReviewDetail
	if err := r.db.SelectContext(ctx, &details, query, pq.Array(revieweeIDs)); err != nil {
		return nil, fmt.Errorf("list reviews for reviewees: %w", err)
	}
	return details, nil
}

// ListForReviewee returns all reviews received by the user regardless of the
// visibility flag, newest first.
func (r *ReviewRepository) ListForReviewee(ctx context.Context, revieweeID int64) ([]models.ReviewDetail, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM reviews r
JOIN users ru ON ru.id = r.reviewer_id
JOIN users re ON re.id = r.reviewee_id
WHERE r.reviewee_id = $1
ORDER BY r.created_at DESC`, reviewDetailColumns)

	var details []models.ReviewDetail
	if err := r.db.SelectContext(ctx, &details, query, revieweeID); err != nil {
		return nil, fmt.Errorf("list reviews for reviewee: %w", err)
	}
	return details, nil
}
