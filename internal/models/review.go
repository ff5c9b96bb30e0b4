package models

import "time"

// Review is an immutable narrative entry written by one user about another.
// There is no update or delete path once created.
type Review struct {
	ID                int64     `db:"id" json:"id"`
	ReviewerID        int64     `db:"reviewer_id" json:"reviewer_id"`
	RevieweeID        int64     `db:"reviewee_id" json:"reviewee_id"`
	Content           string    `db:"content" json:"content"`
	IsVisibleToMentor bool      `db:"is_visible_to_mentor" json:"is_visible_to_mentor"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// ReviewDetail joins a review with both parties' display names.
type ReviewDetail struct {
	ID           int64     `db:"id" json:"id"`
	ReviewerID   int64     `db:"reviewer_id" json:"reviewer_id"`
	ReviewerName string    `db:"reviewer_name" json:"reviewer_name"`
	RevieweeID   int64     `db:"reviewee_id" json:"reviewee_id"`
	RevieweeName string    `db:"reviewee_name" json:"reviewee_name"`
	Content      string    `db:"content" json:"content"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CreateReviewRequest is the payload for authoring a review.
type CreateReviewRequest struct {
	RevieweeID int64  `json:"reviewee_id" validate:"required"`
	Content    string `json:"content" validate:"required,max=2000"`
}
