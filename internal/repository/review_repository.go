package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	"github.com/noah-isme/course-enrollment-api/pkg/database"
)

// ReviewRepository persists course reviews.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository constructs a ReviewRepository.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// FindTarget loads the application a user wants to review. sql.ErrNoRows is returned when
// the application does not exist or belongs to someone else.
func (r *ReviewRepository) FindTarget(ctx context.Context, applicationID, userID int64) (*models.ReviewTarget, error) {
	const query = `SELECT id, course_id, status FROM applications WHERE id = $1 AND user_id = $2`
	var target models.ReviewTarget
	if err := r.db.GetContext(ctx, &target, query, applicationID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find review target: %w", err)
	}
	return &target, nil
}

// Exists reports whether the user already reviewed the application.
func (r *ReviewRepository) Exists(ctx context.Context, userID, applicationID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM reviews WHERE user_id = $1 AND application_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID, applicationID); err != nil {
		return false, fmt.Errorf("check review: %w", err)
	}
	return exists, nil
}

// Create inserts a visible review and fills in the generated id.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	review.IsVisible = true
	const query = `INSERT INTO reviews (user_id, application_id, rating, is_visible) VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query, review.UserID, review.ApplicationID, review.Rating, review.IsVisible)
	if err := row.Scan(&review.ID, &review.CreatedAt); err != nil {
		return fmt.Errorf("create review: %w", database.Classify(err))
	}
	return nil
}

// ListVisibleByCourse returns the published reviews of a course, newest first.
func (r *ReviewRepository) ListVisibleByCourse(ctx context.Context, courseID int64) ([]models.CourseReview, error) {
	const query = `SELECT rv.id, rv.rating, rv.created_at, u.name AS user_name, u.surname AS user_surname
FROM reviews rv
JOIN applications a ON a.id = rv.application_id
JOIN users u ON u.id = rv.user_id
WHERE a.course_id = $1 AND rv.is_visible = TRUE
ORDER BY rv.created_at DESC, rv.id DESC`
	reviews := make([]models.CourseReview, 0)
	if err := r.db.SelectContext(ctx, &reviews, query, courseID); err != nil {
		return nil, fmt.Errorf("list course reviews: %w", err)
	}
	return reviews, nil
}
