package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
)

type courseRepository interface {
	ListActive(ctx context.Context) ([]models.Course, error)
}

// CourseService serves the course catalog.
type CourseService struct {
	repo    courseRepository
	cache   *CacheService
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
}

// NewCourseService constructs a CourseService. cache may be nil.
func NewCourseService(repo courseRepository, cache *CacheService, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, cache: cache, metrics: metrics, ttl: ttl, logger: logger}
}

// ListActive returns courses open for enrollment.
func (s *CourseService) ListActive(ctx context.Context) ([]models.Course, error) {
	var cached []models.Course
	if hit, _ := s.cache.Get(ctx, activeCoursesCacheKey, &cached); hit {
		return cached, nil
	}

	start := time.Now()
	courses, err := s.repo.ListActive(ctx)
	s.metrics.ObserveDBQuery("courses_list_active", time.Since(start))
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to load courses")
	}

	_ = s.cache.Set(ctx, activeCoursesCacheKey, courses, s.ttl)
	return courses, nil
}
