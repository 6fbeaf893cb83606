package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
)

const (
	minRating = 1
	maxRating = 5
)

type reviewRepository interface {
	FindTarget(ctx context.Context, applicationID, userID int64) (*models.ReviewTarget, error)
	Exists(ctx context.Context, userID, applicationID int64) (bool, error)
	Create(ctx context.Context, review *models.Review) error
	ListVisibleByCourse(ctx context.Context, courseID int64) ([]models.CourseReview, error)
}

// ReviewService gates review submission on completed applications.
type ReviewService struct {
	repo      reviewRepository
	cache     *CacheService
	metrics   *MetricsService
	ttl       time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReviewService constructs a ReviewService. cache may be nil.
func NewReviewService(repo reviewRepository, cache *CacheService, metrics *MetricsService, ttl time.Duration, validate *validator.Validate, logger *zap.Logger) *ReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ReviewService{repo: repo, cache: cache, metrics: metrics, ttl: ttl, validator: validate, logger: logger}
}

// Submit records a review for an application the user owns and has completed.
func (s *ReviewService) Submit(ctx context.Context, req models.SubmitReviewRequest) (*models.Review, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "userId and applicationId are required")
	}
	if req.Rating < minRating || req.Rating > maxRating {
		return nil, appErrors.WithField(appErrors.ErrOutOfRange, "rating", "rating must be between 1 and 5")
	}

	target, err := s.repo.FindTarget(ctx, req.ApplicationID, req.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Persistence(err, "failed to load application")
	}
	if target.Status != models.StatusCompleted {
		return nil, appErrors.Clone(appErrors.ErrIneligibleState, "reviews are only accepted for completed courses")
	}

	exists, err := s.repo.Exists(ctx, req.UserID, req.ApplicationID)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to check existing review")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateReview, "")
	}

	review := &models.Review{UserID: req.UserID, ApplicationID: req.ApplicationID, Rating: req.Rating}
	if err := s.repo.Create(ctx, review); err != nil {
		// a concurrent submission can win the race between the check and the insert
		if errors.Is(err, appErrors.ErrAlreadyExists) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateReview, "")
		}
		return nil, appErrors.Persistence(err, "failed to save review")
	}

	_ = s.cache.Delete(ctx, courseReviewsCacheKey(target.CourseID))
	s.metrics.RecordReviewSubmitted()
	s.logger.Info("review submitted",
		zap.Int64("review_id", review.ID),
		zap.Int64("application_id", review.ApplicationID),
		zap.Int("rating", review.Rating),
	)
	return review, nil
}

// ListForCourse returns the visible reviews of a course, newest first.
func (s *ReviewService) ListForCourse(ctx context.Context, courseID int64) ([]models.CourseReview, error) {
	if courseID <= 0 {
		return nil, appErrors.WithField(appErrors.ErrValidation, "courseId", "courseId is required")
	}

	key := courseReviewsCacheKey(courseID)
	var cached []models.CourseReview
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	reviews, err := s.repo.ListVisibleByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to load reviews")
	}
	_ = s.cache.Set(ctx, key, reviews, s.ttl)
	return reviews, nil
}
