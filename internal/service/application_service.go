package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
)

const startDateLayout = "2006-01-02"

type applicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	TransitionStatus(ctx context.Context, id int64, newStatus models.ApplicationStatus, actor *int64) (*models.StatusTransition, error)
	Exists(ctx context.Context, id int64) (bool, error)
	ListHistory(ctx context.Context, applicationID int64) ([]models.StatusHistoryEntry, error)
	ListByUser(ctx context.Context, userID int64) ([]models.UserApplication, error)
	ListForAdmin(ctx context.Context) ([]models.AdminApplication, error)
}

type applicantLookup interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

type activeCourseLookup interface {
	FindActiveByID(ctx context.Context, id int64) (*models.Course, error)
}

// ApplicationService owns the enrollment application lifecycle.
type ApplicationService struct {
	apps      applicationRepository
	users     applicantLookup
	courses   activeCourseLookup
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	now       func() time.Time
}

// NewApplicationService constructs an ApplicationService.
func NewApplicationService(apps applicationRepository, users applicantLookup, courses activeCourseLookup, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ApplicationService{
		apps:      apps,
		users:     users,
		courses:   courses,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
	}
}

// Create files a new application in status new. Input is checked before any lookup so that
// a rejected request never touches storage.
func (s *ApplicationService) Create(ctx context.Context, req models.CreateApplicationRequest) (*models.Application, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "userId, courseId, startDate and paymentMethod are required")
	}

	method := models.PaymentMethod(strings.TrimSpace(req.PaymentMethod))
	if !method.Valid() {
		return nil, appErrors.WithField(appErrors.ErrInvalidPaymentMethod, "paymentMethod", "payment method must be cash or phone_transfer")
	}

	startDate, err := s.parseStartDate(req.StartDate)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.FindByID(ctx, req.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Persistence(err, "failed to load user")
	}

	if _, err := s.courses.FindActiveByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found or inactive")
		}
		return nil, appErrors.Persistence(err, "failed to load course")
	}

	app := &models.Application{
		UserID:           req.UserID,
		CourseID:         req.CourseID,
		DesiredStartDate: startDate,
		PaymentMethod:    method,
	}
	start := time.Now()
	err = s.apps.Create(ctx, app)
	s.metrics.ObserveDBQuery("applications_create", time.Since(start))
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to create application")
	}

	s.logger.Info("application created",
		zap.Int64("application_id", app.ID),
		zap.Int64("user_id", app.UserID),
		zap.Int64("course_id", app.CourseID),
	)
	return app, nil
}

// parseStartDate accepts YYYY-MM-DD dates not earlier than today's server calendar date.
func (s *ApplicationService) parseStartDate(raw string) (time.Time, error) {
	now := s.now()
	date, err := time.ParseInLocation(startDateLayout, strings.TrimSpace(raw), now.Location())
	if err != nil {
		return time.Time{}, appErrors.WithField(appErrors.ErrValidation, "startDate", "startDate must use the YYYY-MM-DD format")
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if date.Before(today) {
		return time.Time{}, appErrors.WithField(appErrors.ErrInvalidDate, "startDate", "start date cannot be in the past")
	}
	return date, nil
}

// TransitionStatus moves an application to a new status. Requesting the current status is a
// successful no-op that records no history.
func (s *ApplicationService) TransitionStatus(ctx context.Context, req models.TransitionStatusRequest) (*models.StatusTransition, error) {
	if req.ApplicationID <= 0 {
		return nil, appErrors.WithField(appErrors.ErrValidation, "id", "invalid application id")
	}
	status := models.ApplicationStatus(strings.TrimSpace(req.NewStatus))
	if !status.Valid() {
		return nil, appErrors.WithField(appErrors.ErrInvalidStatus, "newStatus", "status must be one of new, in_progress, completed")
	}

	start := time.Now()
	result, err := s.apps.TransitionStatus(ctx, req.ApplicationID, status, req.AdminID)
	s.metrics.ObserveDBQuery("applications_transition_status", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		s.logger.Error("status transition failed", zap.Int64("application_id", req.ApplicationID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to update application status")
	}

	fields := []zap.Field{
		zap.Int64("application_id", result.ApplicationID),
		zap.String("from", string(result.OldStatus)),
		zap.String("to", string(result.NewStatus)),
	}
	if req.AdminID != nil {
		fields = append(fields, zap.Int64("actor_id", *req.AdminID))
	}
	if !result.Changed {
		s.logger.Debug("application status unchanged", fields...)
		return result, nil
	}

	s.metrics.RecordStatusTransition(string(result.OldStatus), string(result.NewStatus))
	s.logger.Info("application status changed", fields...)
	return result, nil
}

// History returns the audit trail of an application, oldest first.
func (s *ApplicationService) History(ctx context.Context, applicationID int64) ([]models.StatusHistoryEntry, error) {
	if applicationID <= 0 {
		return nil, appErrors.WithField(appErrors.ErrValidation, "id", "invalid application id")
	}
	exists, err := s.apps.Exists(ctx, applicationID)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to load application")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
	}
	entries, err := s.apps.ListHistory(ctx, applicationID)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to load status history")
	}
	return entries, nil
}

// ListForUser returns the applications of a user, newest first.
func (s *ApplicationService) ListForUser(ctx context.Context, userID int64) ([]models.UserApplication, error) {
	if userID <= 0 {
		return nil, appErrors.WithField(appErrors.ErrValidation, "userId", "userId is required")
	}
	items, err := s.apps.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to load applications")
	}
	return items, nil
}

// ListForAdmin returns every application ordered for triage.
func (s *ApplicationService) ListForAdmin(ctx context.Context) ([]models.AdminApplication, error) {
	items, err := s.apps.ListForAdmin(ctx)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to load applications")
	}
	return items, nil
}
